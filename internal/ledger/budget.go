package ledger

import (
	"slices"
	"strings"

	"dompet/internal/core"

	"github.com/shopspring/decimal"
)

// BudgetStatus is a budget with its consumption derived for the current cycle.
type BudgetStatus struct {
	core.Budget
	EffectiveStart core.Date       `json:"effective_start"`
	Spent          decimal.Decimal `json:"spent"`
	Percentage     float64         `json:"percentage"`
	Remaining      decimal.Decimal `json:"remaining"`
	IsOver         bool            `json:"is_over"`
}

// BudgetTotals rolls every budget up into one figure. Its percentage is not
// capped, unlike the per-budget one.
type BudgetTotals struct {
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// EffectiveCycleStart is the date spending is counted from. A stored start in
// today's month is honored as is; anything older (or unset) rolls forward to
// the first of today's month. The stored value is never rewritten here.
func EffectiveCycleStart(stored, today core.Date) core.Date {
	if !stored.IsZero() && stored.SameMonth(today) {
		return stored
	}
	return today.FirstOfMonth()
}

// BudgetStatuses derives consumption for each budget, most consumed first.
func BudgetStatuses(budgets []core.Budget, ts []core.Transaction, today core.Date) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		start := EffectiveCycleStart(b.CycleStart, today)
		spent := CategorySpend(ts, b.CategoryID, start)
		pct := 0.0
		if b.Limit.IsPositive() {
			pct = min(spent.Div(b.Limit).Mul(hundred).InexactFloat64(), 100)
		}
		if b.CategoryName == "" {
			b.CategoryName = categoryLabel(ts, b.CategoryID)
		}
		out = append(out, BudgetStatus{
			Budget:         b,
			EffectiveStart: start,
			Spent:          spent,
			Percentage:     pct,
			Remaining:      b.Limit.Sub(spent),
			IsOver:         spent.GreaterThan(b.Limit),
		})
	}
	slices.SortStableFunc(out, func(a, b BudgetStatus) int {
		switch {
		case a.Percentage > b.Percentage:
			return -1
		case a.Percentage < b.Percentage:
			return 1
		}
		return 0
	})
	return out
}

// Totals sums limits and spending across statuses.
func Totals(statuses []BudgetStatus) BudgetTotals {
	t := BudgetTotals{Limit: decimal.Zero, Spent: decimal.Zero}
	for _, s := range statuses {
		t.Limit = t.Limit.Add(s.Limit)
		t.Spent = t.Spent.Add(s.Spent)
	}
	t.Remaining = t.Limit.Sub(t.Spent)
	t.Percentage = percentOf(t.Spent, t.Limit)
	return t
}

// UnbudgetedCategories lists the expense categories that can still get a
// budget. A category carries at most one budget.
func UnbudgetedCategories(categories []core.Category, budgets []core.Budget) []core.Category {
	taken := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		taken[strings.ToLower(b.CategoryID)] = true
	}
	out := make([]core.Category, 0, len(categories))
	for _, c := range categories {
		if c.Type == core.Expense && !taken[strings.ToLower(c.ID)] && !core.IsAdjustmentCategory(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// HasBudget reports whether categoryID already has a budget.
func HasBudget(budgets []core.Budget, categoryID string) bool {
	for _, b := range budgets {
		if strings.EqualFold(b.CategoryID, categoryID) {
			return true
		}
	}
	return false
}

// ResetCycles restarts every budget's cycle at today. Unlike the read-time
// rollover this is meant to be persisted.
func ResetCycles(budgets []core.Budget, today core.Date) []core.Budget {
	out := slices.Clone(budgets)
	for i := range out {
		out[i].CycleStart = today
	}
	return out
}

func categoryLabel(ts []core.Transaction, categoryID string) string {
	for _, t := range ts {
		if strings.EqualFold(t.CategoryID, categoryID) && t.CategoryName != "" {
			return t.CategoryName
		}
	}
	return categoryID
}
