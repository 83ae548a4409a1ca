package ledger

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/currency"
)

// Category groups transactions for budgeting and reporting.
type Category string

const (
	CategoryFood          Category = "FOOD"
	CategoryTransport     Category = "TRANSPORT"
	CategoryHousing       Category = "HOUSING"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryHealthcare    Category = "HEALTHCARE"
	CategoryEducation     Category = "EDUCATION"
	CategoryShopping      Category = "SHOPPING"
	CategorySalary        Category = "SALARY"
	CategoryOther         Category = "OTHER"
)

// Categories returns all categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryFood, CategoryTransport, CategoryHousing,
		CategoryEntertainment, CategoryHealthcare, CategoryEducation,
		CategoryShopping, CategorySalary, CategoryOther,
	}
}

// ParseCategory maps a user-supplied string onto a Category, ignoring case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if slices.Contains(Categories(), c) {
		return c, nil
	}

	return "", fmt.Errorf("unknown category %q", s)
}

// Priority ranks how urgent a transaction is.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority maps a user-supplied string onto a Priority, ignoring case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}

	return "", fmt.Errorf("unknown priority %q", s)
}

// Status is the lifecycle tag assigned at creation. It is distinct from the
// completion flag and never changes afterwards.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// ParseStatus maps a user-supplied string onto a Status, ignoring case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusCompleted, StatusFailed:
		return st, nil
	}

	return "", fmt.Errorf("unknown status %q", s)
}

// Transaction is a single ledger entry. Entries are owned and mutated only
// by the Service; callers receive copies of query results, not the backing
// slice.
type Transaction struct {
	ID              int
	Amount          decimal.Decimal // negative = expense, positive = income
	Currency        currency.Code
	Category        Category
	Priority        Priority
	Status          Status
	Date            *time.Time // nil = undated; excluded from date views
	Description     string
	Tags            []string
	RecurringPeriod int // repeats every N days, one-time if 0
	Completed       bool
	Deleted         bool
}

// Recurring reports whether the entry regenerates itself. A recurring entry
// is rendered as perpetually pending regardless of Completed.
func (t *Transaction) Recurring() bool {
	return t.RecurringPeriod > 0
}

// AddTag appends a tag if not already present.
func (t *Transaction) AddTag(tag string) {
	if !t.HasTag(tag) {
		t.Tags = append(t.Tags, tag)
	}
}

// RemoveTag drops a tag if present.
func (t *Transaction) RemoveTag(tag string) {
	t.Tags = slices.DeleteFunc(t.Tags, func(s string) bool { return s == tag })
}

// HasTag reports whether the entry carries the tag.
func (t *Transaction) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// clone returns a copy safe to hand to callers. Tags and the date pointee
// are copied so external code cannot reach the engine's own entry.
func (t *Transaction) clone() *Transaction {
	c := *t
	c.Tags = slices.Clone(t.Tags)

	if t.Date != nil {
		d := *t.Date
		c.Date = &d
	}

	return &c
}
