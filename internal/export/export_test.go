package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dompet/internal/core"
	"dompet/internal/store"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{
			Type: core.Expense, Amount: decimal.NewFromInt(25000), Date: core.NewDate(2024, 5, 20),
			CategoryID: "makan", CategoryName: "Makanan", WalletID: "bank", WalletName: "Bank", Note: "Bakso",
		},
		{
			Type: core.Income, Amount: decimal.RequireFromString("1500000.50"), Date: core.NewDate(2024, 5, 1),
			WalletID: "cash",
		},
	}
}

func TestRowsApplyFallbacks(t *testing.T) {
	rows := Rows(sample())
	require.Len(t, rows, 2)

	assert.Equal(t, Row{Date: "2024-05-20", Category: "Makanan", Note: "Bakso", Type: "Pengeluaran", Wallet: "Bank", Amount: "25000"}, rows[0])
	assert.Equal(t, core.UncategorizedLabel, rows[1].Category)
	assert.Equal(t, FallbackNote, rows[1].Note)
	assert.Equal(t, FallbackWallet, rows[1].Wallet)
	assert.Equal(t, "Pemasukan", rows[1].Type)
	assert.Equal(t, "1500000.5", rows[1].Amount)

	unnamed := NewRow(core.Transaction{Type: core.Expense, WalletID: "ewallet"})
	assert.Equal(t, "ewallet", unnamed.Wallet)
}

func TestValuesStartWithHeader(t *testing.T) {
	v := Values(Rows(sample()))
	require.Len(t, v, 3)
	assert.Equal(t, "Tanggal", v[0][0])
	assert.Equal(t, "Jumlah", v[0][5])
	assert.Equal(t, "Bakso", v[1][2])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Tanggal,Kategori,Catatan,Tipe,Dompet,Jumlah", strings.TrimSpace(lines[0]))
	assert.Equal(t, "2024-05-20,Makanan,Bakso,Pengeluaran,Bank,25000", strings.TrimSpace(lines[1]))
}

func TestCSVRoundTripThroughNormalizer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	raws, err := ReadCSV(&buf, store.DefaultWallets("u1"))
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "bank", raws[0].WalletID)
	assert.Equal(t, core.DefaultWalletID, raws[1].WalletID)
	assert.Empty(t, raws[1].Note)

	txs, errs := core.NewNormalizer(store.DefaultCategories()).NormalizeAll(raws)
	require.Empty(t, errs)
	assert.Equal(t, core.Expense, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, core.NewDate(2024, 5, 20), txs[0].Date)
	assert.Equal(t, core.Income, txs[1].Type)
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("1500000.5")))
}

func TestReadCSVHandWritten(t *testing.T) {
	in := "Tanggal,Kategori,Catatan,Tipe,Dompet,Jumlah\n" +
		"2024-06-01,Transportasi,Ojek,expense,E-Wallet,Rp 12.000\n"

	raws, err := ReadCSV(strings.NewReader(in), store.DefaultWallets("u1"))
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "expense", raws[0].Type)
	assert.Equal(t, "ewallet", raws[0].WalletID)

	txs, errs := core.NewNormalizer(store.DefaultCategories()).NormalizeAll(raws)
	require.Empty(t, errs)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(12000)))
}
