package ledger

import (
	"slices"
	"strings"

	"dompet/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Bucket is the total for one calendar day.
type Bucket struct {
	Date   core.Date       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthBucket is the total for one calendar month, Month in 1..12.
type MonthBucket struct {
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// YearOverYearPoint pairs a month's total with the same month a year earlier.
type YearOverYearPoint struct {
	Month    int             `json:"month"`
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
}

// CategoryShare is one slice of a category breakdown.
type CategoryShare struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
	Percentage   float64         `json:"percentage"`
}

// Comparison is this month against last month.
type Comparison struct {
	Current    decimal.Decimal `json:"current"`
	Previous   decimal.Decimal `json:"previous"`
	Percentage float64         `json:"percentage"`
}

// Summarize totals income and expense. The balance is always income minus
// expense, zero for an empty collection.
func Summarize(ts []core.Transaction) core.Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range ts {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return core.Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		TotalBalance: income.Sub(expense),
	}
}

// SummarizeRange is Summarize restricted to [from, to]. A zero bound is open.
func SummarizeRange(ts []core.Transaction, from, to core.Date) core.Summary {
	return Summarize(inRange(ts, from, to))
}

// WalletBalances derives each wallet's balance from its initial balance and
// the transactions against it. Transactions without a wallet count against
// the default wallet. Transactions naming a wallet that is not in wallets
// still get their own entry rather than being dropped.
func WalletBalances(ts []core.Transaction, wallets []core.Wallet) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(wallets)+1)
	for _, w := range wallets {
		balances[w.ID] = w.InitialBalance
	}
	for _, t := range ts {
		id := t.ResolvedWalletID()
		balances[id] = balances[id].Add(t.Signed())
	}
	return balances
}

// WalletBalance is the derived balance of a single wallet.
func WalletBalance(ts []core.Transaction, wallets []core.Wallet, walletID string) decimal.Decimal {
	return WalletBalances(ts, wallets)[walletID]
}

// DailyBuckets returns exactly windowDays buckets ending at ref inclusive,
// oldest first. Days without matching transactions are present with zero.
func DailyBuckets(ts []core.Transaction, typ core.TransactionType, windowDays int, ref core.Date) []Bucket {
	if windowDays <= 0 {
		return []Bucket{}
	}
	buckets := make([]Bucket, windowDays)
	index := make(map[string]int, windowDays)
	start := ref.AddDays(-(windowDays - 1))
	for i := range buckets {
		d := start.AddDays(i)
		buckets[i] = Bucket{Date: d, Amount: decimal.Zero}
		index[d.String()] = i
	}
	for _, t := range ts {
		if t.Type != typ {
			continue
		}
		if i, ok := index[t.Date.String()]; ok {
			buckets[i].Amount = buckets[i].Amount.Add(t.Amount)
		}
	}
	return buckets
}

// MonthlyBuckets returns twelve buckets, January first, for year.
func MonthlyBuckets(ts []core.Transaction, typ core.TransactionType, year int) []MonthBucket {
	buckets := make([]MonthBucket, 12)
	for i := range buckets {
		buckets[i] = MonthBucket{Month: i + 1, Amount: decimal.Zero}
	}
	for _, t := range ts {
		if t.Type != typ || t.Date.IsZero() || t.Date.Year() != year {
			continue
		}
		m := int(t.Date.Month()) - 1
		buckets[m].Amount = buckets[m].Amount.Add(t.Amount)
	}
	return buckets
}

// YearOverYear lines up each month of year with the same month of year-1.
func YearOverYear(ts []core.Transaction, typ core.TransactionType, year int) []YearOverYearPoint {
	current := MonthlyBuckets(ts, typ, year)
	previous := MonthlyBuckets(ts, typ, year-1)
	points := make([]YearOverYearPoint, 12)
	for i := range points {
		points[i] = YearOverYearPoint{
			Month:    i + 1,
			Current:  current[i].Amount,
			Previous: previous[i].Amount,
		}
	}
	return points
}

// CategorySpend sums expenses in a category dated on or after since. The
// category is matched case-insensitively on id or label so both record shapes
// resolve to the same budget.
func CategorySpend(ts []core.Transaction, categoryID string, since core.Date) decimal.Decimal {
	total := decimal.Zero
	for _, t := range ts {
		if t.Type != core.Expense || t.Date.Before(since) {
			continue
		}
		if strings.EqualFold(t.CategoryID, categoryID) || strings.EqualFold(t.CategoryName, categoryID) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// CategoryBreakdown groups transactions of typ within [from, to] by category,
// largest first. Uncategorized transactions share one bucket. Percentages are
// zero when the total is zero.
func CategoryBreakdown(ts []core.Transaction, typ core.TransactionType, from, to core.Date) []CategoryShare {
	byID := make(map[string]*CategoryShare)
	var order []string
	total := decimal.Zero
	for _, t := range inRange(ts, from, to) {
		if t.Type != typ {
			continue
		}
		id, name := t.CategoryID, t.CategoryName
		if id == "" {
			id, name = core.UncategorizedID, core.UncategorizedLabel
		}
		if name == "" {
			name = id
		}
		share, ok := byID[id]
		if !ok {
			share = &CategoryShare{CategoryID: id, CategoryName: name, Amount: decimal.Zero}
			byID[id] = share
			order = append(order, id)
		}
		share.Amount = share.Amount.Add(t.Amount)
		total = total.Add(t.Amount)
	}

	out := make([]CategoryShare, 0, len(order))
	for _, id := range order {
		share := *byID[id]
		share.Percentage = percentOf(share.Amount, total)
		out = append(out, share)
	}
	slices.SortStableFunc(out, func(a, b CategoryShare) int {
		return b.Amount.Cmp(a.Amount)
	})
	return out
}

// MonthComparison compares ref's month with the month before it. With nothing
// last month the change is 100% if anything happened this month, else 0.
func MonthComparison(ts []core.Transaction, typ core.TransactionType, ref core.Date) Comparison {
	thisMonth := ref.FirstOfMonth()
	lastMonth := thisMonth.AddDays(-1).FirstOfMonth()
	cur, prev := decimal.Zero, decimal.Zero
	for _, t := range ts {
		if t.Type != typ {
			continue
		}
		switch {
		case t.Date.SameMonth(thisMonth):
			cur = cur.Add(t.Amount)
		case t.Date.SameMonth(lastMonth):
			prev = prev.Add(t.Amount)
		}
	}

	c := Comparison{Current: cur, Previous: prev}
	switch {
	case prev.IsPositive():
		c.Percentage = cur.Sub(prev).Div(prev).Mul(hundred).InexactFloat64()
	case cur.IsPositive():
		c.Percentage = 100
	}
	return c
}

// RecentTransactions returns the n newest transactions.
func RecentTransactions(ts []core.Transaction, n int) []core.Transaction {
	out := slices.Clone(ts)
	Sort(out, SortNewest)
	return out[:min(n, len(out))]
}

func inRange(ts []core.Transaction, from, to core.Date) []core.Transaction {
	if from.IsZero() && to.IsZero() {
		return ts
	}
	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		if !from.IsZero() && t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && t.Date.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// percentOf returns part/total*100, or 0 when total is not positive.
func percentOf(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	return part.Div(total).Mul(hundred).InexactFloat64()
}
