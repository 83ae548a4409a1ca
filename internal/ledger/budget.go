package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/currency"
)

// Budget caps spend for one category up to an end date. Remaining is always
// derived from the live transaction set, never cached, because transactions
// mutate independently of the budget.
type Budget struct {
	ID       uuid.UUID
	Name     string
	Category Category
	Total    decimal.Decimal
	EndDate  time.Time
}

// Remaining computes Total minus the SGD-normalized spend of non-deleted
// expense entries in the budget's category dated on or before EndDate.
// Undated entries do not count against a budget.
func (b *Budget) Remaining(txs []*Transaction) (decimal.Decimal, error) {
	spent := decimal.Zero

	for _, t := range txs {
		if t.Deleted || t.Category != b.Category || t.Date == nil {
			continue
		}

		if t.Date.After(b.EndDate) || !t.Amount.IsNegative() {
			continue
		}

		base, err := currency.ToBase(t.Amount, t.Currency)
		if err != nil {
			return decimal.Decimal{}, err
		}

		spent = spent.Add(base.Neg())
	}

	return b.Total.Sub(spent), nil
}

// BudgetList is an ordered collection with at most one budget per category.
type BudgetList struct {
	budgets []*Budget
}

// Set inserts a budget, replacing any existing budget for the same category.
func (l *BudgetList) Set(b *Budget) {
	for i, existing := range l.budgets {
		if existing.Category == b.Category {
			l.budgets[i] = b
			return
		}
	}

	l.budgets = append(l.budgets, b)
}

// Get returns the budget at index.
func (l *BudgetList) Get(index int) (*Budget, error) {
	if index < 0 || index >= len(l.budgets) {
		return nil, ErrNotFound
	}

	return l.budgets[index], nil
}

// Remove drops the budget at index.
func (l *BudgetList) Remove(index int) error {
	if index < 0 || index >= len(l.budgets) {
		return ErrNotFound
	}

	l.budgets = append(l.budgets[:index], l.budgets[index+1:]...)

	return nil
}

func (l *BudgetList) Len() int { return len(l.budgets) }

// All returns a copy of the collection in insertion order.
func (l *BudgetList) All() []*Budget {
	out := make([]*Budget, len(l.budgets))
	copy(out, l.budgets)

	return out
}

// BudgetDetail pairs a budget with its live remaining amount.
type BudgetDetail struct {
	Budget    *Budget
	Remaining decimal.Decimal
}

// Details computes the read-only detail view against the given transactions.
func (l *BudgetList) Details(txs []*Transaction) ([]BudgetDetail, error) {
	details := make([]BudgetDetail, 0, len(l.budgets))

	for _, b := range l.budgets {
		remaining, err := b.Remaining(txs)
		if err != nil {
			return nil, err
		}

		details = append(details, BudgetDetail{Budget: b, Remaining: remaining})
	}

	return details, nil
}

// BudgetAlert reports a breached budget. Breaches are valid financial states
// surfaced as data for the caller to render, never as errors.
type BudgetAlert struct {
	Budget    *Budget
	Remaining decimal.Decimal
}
