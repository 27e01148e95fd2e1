package services

import (
	"github.com/shopspring/decimal"

	"dompet/internal/core"
	"dompet/internal/ledger"
)

const (
	chartDays   = 7
	recentCount = 5
)

// WalletBalance pairs a wallet with its derived balance.
type WalletBalance struct {
	core.Wallet
	Balance decimal.Decimal `json:"balance"`
}

// Dashboard is the home screen read model.
type Dashboard struct {
	Summary       core.Summary           `json:"summary"`
	MonthSummary  core.Summary           `json:"month_summary"`
	Wallets       []WalletBalance        `json:"wallets"`
	Budgets       []ledger.BudgetStatus  `json:"budgets"`
	BudgetTotals  ledger.BudgetTotals    `json:"budget_totals"`
	ExpenseChart  []ledger.Bucket        `json:"expense_chart"`
	IncomeChange  ledger.Comparison      `json:"income_change"`
	ExpenseChange ledger.Comparison      `json:"expense_change"`
	Categories    []ledger.CategoryShare `json:"categories"`
	Recent        []core.Transaction     `json:"recent"`
	ActiveGoals   []core.Goal            `json:"active_goals"`
}

// BuildDashboard derives the dashboard from a snapshot as of today.
func BuildDashboard(s Snapshot, today core.Date) Dashboard {
	balances := ledger.WalletBalances(s.Transactions, s.Wallets)
	wallets := make([]WalletBalance, 0, len(s.Wallets))
	for _, w := range s.Wallets {
		wallets = append(wallets, WalletBalance{Wallet: w, Balance: balances[w.ID]})
	}

	monthStart := today.FirstOfMonth()
	statuses := ledger.BudgetStatuses(s.Budgets, s.Transactions, today)

	return Dashboard{
		Summary:       ledger.Summarize(s.Transactions),
		MonthSummary:  ledger.SummarizeRange(s.Transactions, monthStart, today),
		Wallets:       wallets,
		Budgets:       statuses,
		BudgetTotals:  ledger.Totals(statuses),
		ExpenseChart:  ledger.DailyBuckets(s.Transactions, core.Expense, chartDays, today),
		IncomeChange:  ledger.MonthComparison(s.Transactions, core.Income, today),
		ExpenseChange: ledger.MonthComparison(s.Transactions, core.Expense, today),
		Categories:    ledger.CategoryBreakdown(s.Transactions, core.Expense, monthStart, today),
		Recent:        ledger.RecentTransactions(s.Transactions, recentCount),
		ActiveGoals:   ledger.FilterGoals(s.Goals, core.GoalActive),
	}
}
