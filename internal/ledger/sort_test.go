package ledger

import (
	"testing"

	"dompet/internal/core"

	"github.com/stretchr/testify/assert"
)

func sortFixture() []core.Transaction {
	return []core.Transaction{
		tx("a", core.Expense, 100, "2024-01-02"),
		tx("b", core.Expense, 50, "2024-01-01"),
		tx("c", core.Expense, 200, "2024-01-03"),
	}
}

func amounts(ts []core.Transaction) []int64 {
	out := make([]int64, len(ts))
	for i, t := range ts {
		out[i] = t.Amount.IntPart()
	}
	return out
}

func TestSortPolicies(t *testing.T) {
	tests := []struct {
		policy SortPolicy
		want   []string
	}{
		{SortNewest, []string{"c", "a", "b"}},
		{SortOldest, []string{"b", "a", "c"}},
		{SortHighest, []string{"c", "a", "b"}},
		{SortLowest, []string{"b", "a", "c"}},
		{"bogus", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			ts := sortFixture()
			Sort(ts, tt.policy)
			assert.Equal(t, tt.want, ids(ts))
		})
	}
}

func TestSortByAmount(t *testing.T) {
	ts := sortFixture()
	Sort(ts, SortHighest)
	assert.Equal(t, []int64{200, 100, 50}, amounts(ts))
	Sort(ts, SortLowest)
	assert.Equal(t, []int64{50, 100, 200}, amounts(ts))
}

func TestSortIsStable(t *testing.T) {
	ts := []core.Transaction{
		tx("first", core.Expense, 10, "2024-01-01"),
		tx("second", core.Income, 10, "2024-01-01"),
	}
	Sort(ts, SortNewest)
	assert.Equal(t, []string{"first", "second"}, ids(ts))
	Sort(ts, SortHighest)
	assert.Equal(t, []string{"first", "second"}, ids(ts))
}

func TestSortPolicyAmountBased(t *testing.T) {
	assert.True(t, SortHighest.AmountBased())
	assert.True(t, SortLowest.AmountBased())
	assert.False(t, SortNewest.AmountBased())
	assert.False(t, SortOldest.AmountBased())
	assert.False(t, SortPolicy("").Valid())
}
