package ledger

import (
	"fmt"

	"dompet/internal/core"

	"github.com/shopspring/decimal"
)

// GoalProgress is the derived state of a savings goal.
type GoalProgress struct {
	Percentage float64         `json:"percentage"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// Progress reports how far a goal is, capped at 100%. Remaining never goes
// below zero.
func Progress(g core.Goal) GoalProgress {
	p := GoalProgress{Remaining: decimal.Max(g.Target.Sub(g.Current), decimal.Zero)}
	if g.Target.IsPositive() {
		p.Percentage = min(g.Current.Div(g.Target).Mul(hundred).InexactFloat64(), 100)
	}
	return p
}

// ApplySavings adds a contribution to a goal. Contributions must be positive,
// so Current never decreases. Reaching the target marks the goal completed.
func ApplySavings(g core.Goal, amount decimal.Decimal) (core.Goal, error) {
	if !amount.IsPositive() {
		return g, fmt.Errorf("%w: contribution must be greater than zero", core.ErrInvalidAmount)
	}
	if g.Status == core.GoalCompleted {
		return g, core.ErrGoalCompleted
	}
	g.Current = g.Current.Add(amount)
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if g.Target.IsPositive() && g.Current.GreaterThanOrEqual(g.Target) {
		g.Status = core.GoalCompleted
	}
	return g, nil
}

// FilterGoals keeps goals with the given status. An empty status keeps all.
func FilterGoals(goals []core.Goal, status core.GoalStatus) []core.Goal {
	out := make([]core.Goal, 0, len(goals))
	for _, g := range goals {
		if status == "" || g.Status == status {
			out = append(out, g)
		}
	}
	return out
}
