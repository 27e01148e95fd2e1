// Package ledger derives everything the display layer shows from a snapshot
// of transactions: filtered and sorted views, totals, per-wallet balances,
// trend buckets, and budget consumption. Every function here is pure and
// recomputed from scratch on each call.
package ledger

import (
	"slices"
	"strings"

	"dompet/internal/core"

	"github.com/shopspring/decimal"
)

// All is the wildcard value for the type and wallet filters.
const All = "all"

// AdvancedCriteria is the alternate filtering path. When Active it replaces
// the simple day/month/year filter and enables an explicit sort.
type AdvancedCriteria struct {
	Active     bool
	StartDate  core.Date
	EndDate    core.Date
	MinAmount  decimal.NullDecimal
	MaxAmount  decimal.NullDecimal
	Categories []string
	Wallets    []string
	SortBy     SortPolicy
}

// Criteria is the full set of filters a user can apply to the transaction list.
type Criteria struct {
	Search   string
	Type     string
	Wallet   string
	Day      string
	Month    string
	Year     string
	Advanced AdvancedCriteria
}

// Normalize trims free-text input and folds the wildcard spellings so that
// "", "ALL" and "all" behave the same.
func (c Criteria) Normalize() Criteria {
	c.Search = strings.TrimSpace(c.Search)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.Type == "" {
		c.Type = All
	}
	c.Wallet = strings.TrimSpace(c.Wallet)
	if c.Wallet == "" || strings.EqualFold(c.Wallet, All) {
		c.Wallet = All
	}
	c.Day = strings.TrimSpace(c.Day)
	c.Month = strings.TrimSpace(c.Month)
	c.Year = strings.TrimSpace(c.Year)
	return c
}

// Policy is the sort order the view is rendered in.
func (c Criteria) Policy() SortPolicy {
	if c.Advanced.Active && c.Advanced.SortBy.Valid() {
		return c.Advanced.SortBy
	}
	return SortNewest
}

// Matches reports whether t passes every active filter in c.
func Matches(t core.Transaction, c Criteria) bool {
	return matchesDate(t, c) &&
		matchesType(t, c.Type) &&
		matchesWallet(t, c.Wallet) &&
		matchesAdvanced(t, c.Advanced) &&
		matchesSearch(t, c.Search)
}

// Filter returns the transactions that match c, in input order.
func Filter(ts []core.Transaction, c Criteria) []core.Transaction {
	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		if Matches(t, c) {
			out = append(out, t)
		}
	}
	return out
}

func matchesDate(t core.Transaction, c Criteria) bool {
	if c.Advanced.Active {
		if !c.Advanced.StartDate.IsZero() && t.Date.Before(c.Advanced.StartDate) {
			return false
		}
		if !c.Advanced.EndDate.IsZero() && t.Date.After(c.Advanced.EndDate) {
			return false
		}
		return true
	}

	// Components compare as strings so "05" never matches "5".
	year, month, day := t.Date.Parts()
	if c.Year != "" && c.Year != year {
		return false
	}
	if c.Month != "" && c.Month != month {
		return false
	}
	if c.Day != "" && c.Day != day {
		return false
	}
	return true
}

func matchesType(t core.Transaction, want string) bool {
	return want == "" || want == All || want == string(t.Type)
}

func matchesWallet(t core.Transaction, want string) bool {
	return want == "" || want == All || want == t.ResolvedWalletID()
}

func matchesAdvanced(t core.Transaction, a AdvancedCriteria) bool {
	if !a.Active {
		return true
	}
	if len(a.Categories) > 0 && !slices.Contains(a.Categories, t.CategoryID) {
		return false
	}
	if len(a.Wallets) > 0 && !slices.Contains(a.Wallets, t.ResolvedWalletID()) {
		return false
	}
	if a.MinAmount.Valid && t.Amount.LessThan(a.MinAmount.Decimal) {
		return false
	}
	if a.MaxAmount.Valid && t.Amount.GreaterThan(a.MaxAmount.Decimal) {
		return false
	}
	return true
}

func matchesSearch(t core.Transaction, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Note), q) ||
		strings.Contains(strings.ToLower(t.DisplayCategory()), q) ||
		strings.Contains(t.Amount.String(), q)
}
