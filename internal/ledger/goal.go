package ledger

import (
	"github.com/shopspring/decimal"
)

// Goal is the single savings target. Its zero value is the unset state; the
// first SetGoal call on the Service activates it.
type Goal struct {
	Title       string
	Description string
	Target      decimal.Decimal
	Balance     decimal.Decimal
}

// Set reports whether a goal has been configured.
func (g Goal) Set() bool {
	return g.Title != "" || !g.Target.IsZero()
}

// Contribute adds amount to the balance.
func (g *Goal) Contribute(amount decimal.Decimal) {
	g.Balance = g.Balance.Add(amount)
}

// Deduct subtracts amount from the balance. The balance may go negative;
// that is deliberate domain behavior reported as a warning, not rejected.
func (g *Goal) Deduct(amount decimal.Decimal) {
	g.Balance = g.Balance.Sub(amount)
}

// Overdrawn reports whether deductions have pushed the balance negative.
func (g Goal) Overdrawn() bool {
	return g.Balance.IsNegative()
}

// ProgressRatio returns balance/target clamped to [0, 1].
func (g Goal) ProgressRatio() float64 {
	if !g.Set() || g.Target.IsZero() {
		return 0
	}

	ratio, _ := g.Balance.Div(g.Target).Float64()
	if ratio < 0 {
		return 0
	}

	if ratio > 1 {
		return 1
	}

	return ratio
}

// Achieved reports whether the balance has reached the target.
func (g Goal) Achieved() bool {
	return g.Set() && g.Balance.GreaterThanOrEqual(g.Target)
}
