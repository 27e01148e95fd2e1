package ledger

import (
	"testing"

	"dompet/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySavings(t *testing.T) {
	g := core.Goal{Name: "Laptop", Target: dec(1000), Current: dec(400), Status: core.GoalActive}

	g, err := ApplySavings(g, dec(100))
	require.NoError(t, err)
	assert.True(t, g.Current.Equal(dec(500)))
	assert.Equal(t, core.GoalActive, g.Status)

	_, err = ApplySavings(g, dec(0))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = ApplySavings(g, dec(-5))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	g, err = ApplySavings(g, dec(600))
	require.NoError(t, err)
	assert.True(t, g.Current.Equal(dec(1100)))
	assert.Equal(t, core.GoalCompleted, g.Status)

	_, err = ApplySavings(g, dec(1))
	assert.ErrorIs(t, err, core.ErrGoalCompleted)
}

func TestProgress(t *testing.T) {
	p := Progress(core.Goal{Target: dec(200), Current: dec(50)})
	assert.InDelta(t, 25.0, p.Percentage, 0.0001)
	assert.True(t, p.Remaining.Equal(dec(150)))

	p = Progress(core.Goal{Target: dec(200), Current: dec(500)})
	assert.Equal(t, 100.0, p.Percentage)
	assert.True(t, p.Remaining.IsZero())

	p = Progress(core.Goal{})
	assert.Equal(t, 0.0, p.Percentage)
}

func TestFilterGoals(t *testing.T) {
	goals := []core.Goal{
		{ID: "1", Status: core.GoalActive},
		{ID: "2", Status: core.GoalCompleted},
	}
	assert.Len(t, FilterGoals(goals, ""), 2)
	active := FilterGoals(goals, core.GoalActive)
	require.Len(t, active, 1)
	assert.Equal(t, "1", active[0].ID)
}
