package ledger

import (
	"fmt"
	"testing"

	"dompet/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupKeys(v View) []string {
	out := make([]string, len(v.Groups))
	for i, g := range v.Groups {
		out[i] = g.Date.String()
	}
	return out
}

func TestComposeViewDefaultGrouping(t *testing.T) {
	v := ComposeView(scenario(), Criteria{}, DefaultPageSize)
	require.True(t, v.Grouped)
	assert.Nil(t, v.Flat)
	assert.Equal(t, []string{"2024-05-02", "2024-05-01"}, groupKeys(v))
	assert.Equal(t, []string{"1", "2"}, ids(v.Groups[1].Transactions))
	assert.Equal(t, 3, v.Total)
	assert.False(t, v.HasMore)
}

func TestComposeViewExpenseGroup(t *testing.T) {
	v := ComposeView(scenario(), Criteria{Type: "expense"}, 0)
	assert.Equal(t, []string{"2024-05-02", "2024-05-01"}, groupKeys(v))
	assert.Equal(t, []string{"2"}, ids(v.Groups[1].Transactions))
}

func TestComposeViewOldestAscending(t *testing.T) {
	c := Criteria{Advanced: AdvancedCriteria{Active: true, SortBy: SortOldest}}
	v := ComposeView(scenario(), c, 0)
	require.True(t, v.Grouped)
	assert.Equal(t, []string{"2024-05-01", "2024-05-02"}, groupKeys(v))
}

func TestComposeViewAmountSortIsFlat(t *testing.T) {
	for _, p := range []SortPolicy{SortHighest, SortLowest} {
		t.Run(string(p), func(t *testing.T) {
			c := Criteria{Advanced: AdvancedCriteria{Active: true, SortBy: p}}
			v := ComposeView(scenario(), c, 0)
			assert.False(t, v.Grouped)
			assert.Nil(t, v.Groups)
			require.Len(t, v.Flat, 3)
			if p == SortHighest {
				assert.Equal(t, []string{"1", "2", "3"}, ids(v.Flat))
			} else {
				assert.Equal(t, []string{"3", "2", "1"}, ids(v.Flat))
			}
		})
	}
}

func TestComposeViewSortIgnoredWhenNotAdvanced(t *testing.T) {
	c := Criteria{Advanced: AdvancedCriteria{SortBy: SortHighest}}
	v := ComposeView(scenario(), c, 0)
	assert.True(t, v.Grouped)
}

func TestComposeViewPagination(t *testing.T) {
	var ts []core.Transaction
	for i := 0; i < 25; i++ {
		ts = append(ts, tx(fmt.Sprintf("t%02d", i), core.Expense, int64(i+1), fmt.Sprintf("2024-05-%02d", 25-i/2)))
	}

	cur := NewCursor(0)
	assert.Equal(t, DefaultPageSize, cur.Visible)

	v := ComposeView(ts, Criteria{}, cur.Visible)
	assert.Equal(t, 10, v.Visible)
	assert.Equal(t, 25, v.Total)
	assert.True(t, v.HasMore)
	count := 0
	for _, g := range v.Groups {
		count += len(g.Transactions)
	}
	assert.Equal(t, 10, count)

	assert.Equal(t, 20, cur.LoadMore())
	assert.Equal(t, 30, cur.LoadMore())
	v = ComposeView(ts, Criteria{}, cur.Visible)
	assert.Equal(t, 25, v.Visible)
	assert.False(t, v.HasMore)

	cur.Reset()
	assert.Equal(t, 10, cur.Visible)
}

func TestComposeViewPaginationSlicesBeforeGrouping(t *testing.T) {
	ts := []core.Transaction{
		tx("a", core.Expense, 1, "2024-05-02"),
		tx("b", core.Expense, 1, "2024-05-01"),
		tx("c", core.Expense, 1, "2024-05-01"),
	}
	v := ComposeView(ts, Criteria{}, 2)
	require.Len(t, v.Groups, 2)
	assert.Equal(t, []string{"b"}, ids(v.Groups[1].Transactions), "boundary group holds only visible entries")
}

func TestComposeViewIdempotent(t *testing.T) {
	ts := append(scenario(), tx("4", core.Income, 300, "2024-05-02"))
	criteria := []Criteria{
		{},
		{Search: "30"},
		{Advanced: AdvancedCriteria{Active: true, SortBy: SortHighest}},
		{Advanced: AdvancedCriteria{Active: true, SortBy: SortOldest, MinAmount: nullDec(200)}},
	}
	for i, c := range criteria {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			assert.Equal(t, ComposeView(ts, c, 2), ComposeView(ts, c, 2))
		})
	}
}

func TestComposeViewDoesNotMutateInput(t *testing.T) {
	ts := scenario()
	ComposeView(ts, Criteria{Advanced: AdvancedCriteria{Active: true, SortBy: SortLowest}}, 0)
	assert.Equal(t, []string{"1", "2", "3"}, ids(ts))
}

func TestComposeViewEmpty(t *testing.T) {
	v := ComposeView(nil, Criteria{}, 10)
	assert.True(t, v.Grouped)
	assert.Empty(t, v.Groups)

	v = ComposeView(nil, Criteria{Advanced: AdvancedCriteria{Active: true, SortBy: SortLowest}}, 10)
	assert.NotNil(t, v.Flat)
	assert.Empty(t, v.Flat)
}

func TestRelativeDay(t *testing.T) {
	today := core.NewDate(2024, 3, 1)
	assert.Equal(t, Today, RelativeDay(today, today))
	assert.Equal(t, Yesterday, RelativeDay(core.NewDate(2024, 2, 29), today))
	assert.Equal(t, OtherDay, RelativeDay(core.NewDate(2024, 2, 28), today))
	assert.Equal(t, OtherDay, RelativeDay(core.NewDate(2024, 3, 2), today))
}
