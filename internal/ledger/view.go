package ledger

import (
	"slices"

	"dompet/internal/core"
)

// DefaultPageSize is how many more transactions each "load more" reveals.
const DefaultPageSize = 10

// DateGroup holds the visible transactions of one calendar day.
type DateGroup struct {
	Date         core.Date          `json:"date"`
	Transactions []core.Transaction `json:"transactions"`
}

// View is what the transaction list renders: either Flat (amount sorts) or
// Groups keyed by day. Total counts every match, Visible only the rendered ones.
type View struct {
	Grouped bool               `json:"grouped"`
	Flat    []core.Transaction `json:"flat,omitempty"`
	Groups  []DateGroup        `json:"groups,omitempty"`
	Total   int                `json:"total"`
	Visible int                `json:"visible"`
	HasMore bool               `json:"has_more"`
}

// ComposeView filters ts with c, sorts when an advanced sort is active, cuts
// the result to the first visible entries (visible <= 0 means no cut) and then
// either returns it flat or grouped by day. Grouping only sees the visible
// slice, so a day at the page boundary may be partial until more is loaded.
// The same inputs always produce the same view.
func ComposeView(ts []core.Transaction, c Criteria, visible int) View {
	filtered := Filter(ts, c)
	policy := c.Policy()
	if c.Advanced.Active && c.Advanced.SortBy.Valid() {
		Sort(filtered, policy)
	}

	shown := filtered
	if visible > 0 && visible < len(filtered) {
		shown = filtered[:visible]
	}
	v := View{
		Total:   len(filtered),
		Visible: len(shown),
		HasMore: len(shown) < len(filtered),
	}

	if policy.AmountBased() {
		v.Flat = shown
		if v.Flat == nil {
			v.Flat = []core.Transaction{}
		}
		return v
	}
	v.Grouped = true
	v.Groups = groupByDate(shown, policy == SortOldest)
	return v
}

func groupByDate(ts []core.Transaction, ascending bool) []DateGroup {
	index := make(map[string]int)
	groups := make([]DateGroup, 0)
	for _, t := range ts {
		key := t.Date.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{Date: t.Date})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	slices.SortStableFunc(groups, func(a, b DateGroup) int {
		if ascending {
			return a.Date.Compare(b.Date)
		}
		return b.Date.Compare(a.Date)
	})
	return groups
}

// Cursor is the pagination state of a transaction list. Visible only grows
// until Reset.
type Cursor struct {
	PageSize int
	Visible  int
}

func NewCursor(pageSize int) *Cursor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cursor{PageSize: pageSize, Visible: pageSize}
}

// LoadMore reveals one more page and returns the new visible count.
func (c *Cursor) LoadMore() int {
	c.Visible += c.PageSize
	return c.Visible
}

// Reset goes back to the first page, as happens when filters change.
func (c *Cursor) Reset() {
	c.Visible = c.PageSize
}

// DayKind classifies a date relative to today for labeling.
type DayKind int

const (
	OtherDay DayKind = iota
	Today
	Yesterday
)

// RelativeDay reports whether d is exactly today or yesterday.
func RelativeDay(d, today core.Date) DayKind {
	switch {
	case d.Equal(today):
		return Today
	case d.Equal(today.AddDays(-1)):
		return Yesterday
	default:
		return OtherDay
	}
}
