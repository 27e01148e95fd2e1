// Package format renders amounts and dates for display in id-ID conventions:
// "Rp 1.500.000", "05 Mei 2024".
package format

import (
	"fmt"

	"dompet/internal/core"
	"dompet/internal/ledger"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Indonesian)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var weekdayShort = [...]string{"Min", "Sen", "Sel", "Rab", "Kam", "Jum", "Sab"}

// Number groups the integer part of d with dots, rounding to whole rupiah.
func Number(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.Round(0).Abs().IntPart())
}

// Currency renders d as rupiah with no decimals. Negative amounts get a
// leading minus before the symbol.
func Currency(d decimal.Decimal) string {
	rounded := d.Round(0)
	if rounded.IsNegative() {
		return "-Rp " + Number(rounded)
	}
	return "Rp " + Number(rounded)
}

// Date renders a day as "05 Mei 2024". The zero date renders empty.
func Date(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d %s %d", d.Day(), monthNames[d.Month()-1], d.Year())
}

// ShortDate renders a day as "05/05/2024".
func ShortDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

// MonthYear renders "Mei 2024".
func MonthYear(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %d", monthNames[d.Month()-1], d.Year())
}

// MonthName returns the Indonesian name of month m (1..12).
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

func WeekdayShort(d core.Date) string {
	return weekdayShort[d.Weekday()]
}

// DayLabel is the heading of a date group: today and yesterday get their own
// label, every other day its calendar date.
func DayLabel(d, today core.Date) string {
	switch ledger.RelativeDay(d, today) {
	case ledger.Today:
		return "Hari Ini"
	case ledger.Yesterday:
		return "Kemarin"
	default:
		return Date(d)
	}
}

// TypeLabel names a transaction type.
func TypeLabel(t core.TransactionType) string {
	if t == core.Income {
		return "Pemasukan"
	}
	return "Pengeluaran"
}
