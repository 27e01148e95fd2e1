package ledger

import (
	"dompet/internal/core"

	"github.com/shopspring/decimal"
)

func tx(id string, typ core.TransactionType, amount int64, date string) core.Transaction {
	return core.Transaction{
		ID:         id,
		Type:       typ,
		Amount:     decimal.NewFromInt(amount),
		Date:       core.MustParseDate(date),
		CategoryID: "lainnya",
		WalletID:   core.DefaultWalletID,
	}
}

func ids(ts []core.Transaction) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func nullDec(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}
