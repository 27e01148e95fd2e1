// Package export turns transactions into tabular rows for CSV files and
// spreadsheets, and reads such files back for import.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"dompet/internal/core"
	"dompet/internal/format"
)

// Fallbacks for cells the transaction leaves empty.
const (
	FallbackCategory = core.UncategorizedLabel
	FallbackNote     = "-"
	FallbackWallet   = "Tunai"
)

// Row is one exported transaction.
type Row struct {
	Date     string `csv:"Tanggal"`
	Category string `csv:"Kategori"`
	Note     string `csv:"Catatan"`
	Type     string `csv:"Tipe"`
	Wallet   string `csv:"Dompet"`
	Amount   string `csv:"Jumlah"`
}

// Header is the column order of Row.
var Header = []string{"Tanggal", "Kategori", "Catatan", "Tipe", "Dompet", "Jumlah"}

func NewRow(t core.Transaction) Row {
	r := Row{
		Date:     t.Date.String(),
		Category: t.DisplayCategory(),
		Note:     strings.TrimSpace(t.Note),
		Type:     format.TypeLabel(t.Type),
		Wallet:   t.WalletName,
		Amount:   t.Amount.String(),
	}
	if r.Category == "" {
		r.Category = FallbackCategory
	}
	if r.Note == "" {
		r.Note = FallbackNote
	}
	if r.Wallet == "" {
		r.Wallet = FallbackWallet
		if id := t.ResolvedWalletID(); id != core.DefaultWalletID {
			r.Wallet = id
		}
	}
	return r
}

// Rows converts transactions in order.
func Rows(ts []core.Transaction) []Row {
	out := make([]Row, 0, len(ts))
	for _, t := range ts {
		out = append(out, NewRow(t))
	}
	return out
}

// Values renders rows as a cell matrix, header first.
func Values(rows []Row) [][]any {
	out := make([][]any, 0, len(rows)+1)
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	out = append(out, header)
	for _, r := range rows {
		out = append(out, []any{r.Date, r.Category, r.Note, r.Type, r.Wallet, r.Amount})
	}
	return out
}

// WriteCSV writes the transactions with a header row.
func WriteCSV(w io.Writer, ts []core.Transaction) error {
	rows := Rows(ts)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadCSV reads a file written by WriteCSV (or by hand in the same layout)
// into raw records. Wallet cells are matched against wallets by id or name;
// the default wallet label maps to the default wallet.
func ReadCSV(r io.Reader, wallets []core.Wallet) ([]core.RawTransaction, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	out := make([]core.RawTransaction, 0, len(rows))
	for _, row := range rows {
		note := strings.TrimSpace(row.Note)
		if note == FallbackNote {
			note = ""
		}
		out = append(out, core.RawTransaction{
			Type:     parseType(row.Type),
			Amount:   strings.TrimSpace(row.Amount),
			Date:     strings.TrimSpace(row.Date),
			Category: strings.TrimSpace(row.Category),
			WalletID: walletID(strings.TrimSpace(row.Wallet), wallets),
			Note:     note,
		})
	}
	return out, nil
}

func parseType(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, format.TypeLabel(core.Income)):
		return string(core.Income)
	case strings.EqualFold(s, format.TypeLabel(core.Expense)):
		return string(core.Expense)
	}
	return strings.ToLower(s)
}

func walletID(cell string, wallets []core.Wallet) string {
	if cell == "" {
		return core.DefaultWalletID
	}
	for _, w := range wallets {
		if strings.EqualFold(w.ID, cell) || strings.EqualFold(w.Name, cell) {
			return w.ID
		}
	}
	if strings.EqualFold(cell, FallbackWallet) {
		return core.DefaultWalletID
	}
	return cell
}
