package core

import "github.com/shopspring/decimal"

// Summary is the income/expense/balance triple shown on the dashboard.
type Summary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// Entity names used in change notifications.
const (
	EntityTransaction = "transaction"
	EntityWallet      = "wallet"
	EntityCategory    = "category"
	EntityBudget      = "budget"
	EntityGoal        = "goal"
)

// ChangeEvent tells watchers that one of a user's collections changed. It
// carries no diff; watchers refetch the whole collection.
type ChangeEvent struct {
	UserID string
	Entity string
	Op     string
	ID     string
}
