package ledger

import (
	"dompet/internal/core"

	"github.com/shopspring/decimal"
)

// Reconcile builds the transaction that moves a wallet's derived balance from
// current to target. It reports false when the two already agree.
func Reconcile(walletID string, current, target decimal.Decimal, today core.Date) (core.Transaction, bool) {
	delta := target.Sub(current)
	if delta.IsZero() {
		return core.Transaction{}, false
	}
	typ, category := core.Income, core.AdjustmentIncomeID
	if delta.IsNegative() {
		typ, category = core.Expense, core.AdjustmentExpenseID
	}
	return core.Transaction{
		Type:         typ,
		Amount:       delta.Abs(),
		Date:         today,
		CategoryID:   category,
		CategoryName: core.AdjustmentLabel,
		WalletID:     walletID,
		Note:         core.ReconciliationNote,
	}, true
}
