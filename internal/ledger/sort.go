package ledger

import (
	"slices"

	"dompet/internal/core"
)

type SortPolicy string

const (
	SortNewest  SortPolicy = "newest"
	SortOldest  SortPolicy = "oldest"
	SortHighest SortPolicy = "highest"
	SortLowest  SortPolicy = "lowest"
)

func (p SortPolicy) Valid() bool {
	switch p {
	case SortNewest, SortOldest, SortHighest, SortLowest:
		return true
	}
	return false
}

// AmountBased reports whether the policy orders by amount. Amount-ordered
// results are not date-contiguous, so views built from them stay flat.
func (p SortPolicy) AmountBased() bool {
	return p == SortHighest || p == SortLowest
}

// Compare orders a before b under p. Unknown policies treat everything as
// equal, which leaves a stable sort's input untouched.
func Compare(a, b core.Transaction, p SortPolicy) int {
	switch p {
	case SortNewest:
		return b.Date.Compare(a.Date)
	case SortOldest:
		return a.Date.Compare(b.Date)
	case SortHighest:
		return b.Amount.Cmp(a.Amount)
	case SortLowest:
		return a.Amount.Cmp(b.Amount)
	default:
		return 0
	}
}

// Sort orders ts in place. Ties keep their input order.
func Sort(ts []core.Transaction, p SortPolicy) {
	slices.SortStableFunc(ts, func(a, b core.Transaction) int {
		return Compare(a, b, p)
	})
}
