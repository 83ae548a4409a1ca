package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/currency"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger

// Repository persists and restores the full ledger state between runs.
// Restoration is a lossless round trip: historical data is accepted as-is,
// without re-validating past dates against current-day constraints.
type Repository interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}

// State is everything the persistence collaborator needs for a round trip.
type State struct {
	Transactions []*Transaction
	Budgets      []*Budget
	Goal         Goal
	NextID       int
}

// Service owns the transaction collection, the budget list, and the savings
// goal. It is the sole mutator of all three; callers receive copies or
// derived values, never the live backing slices. One Service per session,
// no locking: access is single-threaded by design.
type Service struct {
	repo Repository
	now  func() time.Time

	txs     []*Transaction
	nextID  int
	budgets BudgetList
	goal    Goal
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service's notion of "today". Used by recurring
// and date-sensitive tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds an empty ledger. repo may be nil for a purely in-memory
// session; Hydrate and Flush then become no-ops.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		nextID: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Hydrate replaces the in-memory state with the persisted snapshot.
func (s *Service) Hydrate(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	state, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading ledger state: %w", err)
	}

	s.txs = state.Transactions
	s.goal = state.Goal
	s.budgets = BudgetList{}

	for _, b := range state.Budgets {
		s.budgets.Set(b)
	}

	s.nextID = state.NextID
	if s.nextID < 1 {
		s.nextID = 1
	}

	// Ids are never reused, even if the snapshot's counter lagged.
	for _, t := range s.txs {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}

	return nil
}

// Flush writes the current state through the repository.
func (s *Service) Flush(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	state := &State{
		Transactions: s.txs,
		Budgets:      s.budgets.All(),
		Goal:         s.goal,
		NextID:       s.nextID,
	}

	if err := s.repo.Save(ctx, state); err != nil {
		return fmt.Errorf("saving ledger state: %w", err)
	}

	return nil
}

// active is the one accessor every read path filters through, so soft-delete
// exclusion can never diverge between queries.
func (s *Service) active() []*Transaction {
	out := make([]*Transaction, 0, len(s.txs))

	for _, t := range s.txs {
		if !t.Deleted {
			out = append(out, t)
		}
	}

	return out
}

// find returns the live entry for id, deleted or not.
func (s *Service) find(id int) (*Transaction, error) {
	for _, t := range s.txs {
		if t.ID == id {
			return t, nil
		}
	}

	return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
}

// AddParams carries the fields needed to create a transaction.
type AddParams struct {
	Description string
	Amount      decimal.Decimal
	Currency    currency.Code
	Category    Category
	Date        *time.Time
	Status      Status
}

// Add validates params, assigns the next sequential id and appends the entry.
// Amounts are signed, so no sign check applies; priority defaults to LOW.
func (s *Service) Add(params AddParams) (*Transaction, error) {
	if strings.TrimSpace(params.Description) == "" {
		return nil, validationErr("description", "must not be empty")
	}

	if _, err := currency.Rate(params.Currency); err != nil {
		return nil, validationErr("currency", "%v", err)
	}

	if _, err := ParseCategory(string(params.Category)); err != nil {
		return nil, validationErr("category", "%v", err)
	}

	if _, err := ParseStatus(string(params.Status)); err != nil {
		return nil, validationErr("status", "%v", err)
	}

	t := &Transaction{
		ID:          s.nextID,
		Amount:      params.Amount,
		Currency:    params.Currency,
		Category:    params.Category,
		Priority:    PriorityLow,
		Status:      params.Status,
		Description: params.Description,
	}

	if params.Date != nil {
		d := *params.Date
		t.Date = &d
	}

	s.nextID++
	s.txs = append(s.txs, t)

	return t.clone(), nil
}

// Get returns a copy of the transaction, deleted or not.
func (s *Service) Get(id int) (*Transaction, error) {
	t, err := s.find(id)
	if err != nil {
		return nil, err
	}

	return t.clone(), nil
}

// Delete soft-deletes the entry. Deleting an already-deleted entry is a
// StateError rather than a silent no-op.
func (s *Service) Delete(id int) error {
	t, err := s.find(id)
	if err != nil {
		return err
	}

	if t.Deleted {
		return stateErr("delete", "transaction %d is already deleted", id)
	}

	t.Deleted = true

	return nil
}

// Recover clears the soft-delete flag, restoring the entry to every
// aggregation exactly as before deletion.
func (s *Service) Recover(id int) error {
	t, err := s.find(id)
	if err != nil {
		return err
	}

	if !t.Deleted {
		return stateErr("recover", "transaction %d is not deleted", id)
	}

	t.Deleted = false

	return nil
}

// Editable fields accepted by Edit.
const (
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldCurrency    = "currency"
	FieldDate        = "date"
	FieldPriority    = "priority"
)

// Edit mutates a single field from its textual form. Editing the currency
// only relabels the entry; it never rescales the amount (Convert does that).
func (s *Service) Edit(id int, field, value string) error {
	t, err := s.find(id)
	if err != nil {
		return err
	}

	switch field {
	case FieldDescription:
		if strings.TrimSpace(value) == "" {
			return validationErr("description", "must not be empty")
		}

		t.Description = value
	case FieldCategory:
		c, err := ParseCategory(value)
		if err != nil {
			return validationErr("category", "%v", err)
		}

		t.Category = c
	case FieldAmount:
		amount, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return validationErr("amount", "%q is not a number", value)
		}

		t.Amount = amount
	case FieldCurrency:
		c, err := currency.Parse(value)
		if err != nil {
			return validationErr("currency", "%v", err)
		}

		t.Currency = c
	case FieldDate:
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
		if err != nil {
			return validationErr("date", "%q is not a YYYY-MM-DD date", value)
		}

		t.Date = &d
	case FieldPriority:
		p, err := ParsePriority(value)
		if err != nil {
			return validationErr("priority", "%v", err)
		}

		t.Priority = p
	default:
		return validationErr("field", "unknown field %q", field)
	}

	return nil
}

// SetCompleted toggles the completion flag.
func (s *Service) SetCompleted(id int, completed bool) error {
	t, err := s.find(id)
	if err != nil {
		return err
	}

	t.Completed = completed

	return nil
}

// SetRecurringPeriod sets the recurrence in days. Negative input disables
// recurrence, same as zero.
func (s *Service) SetRecurringPeriod(id, days int) error {
	t, err := s.find(id)
	if err != nil {
		return err
	}

	if days < 0 {
		days = 0
	}

	t.RecurringPeriod = days

	return nil
}

// Tag attaches a tag to the transaction.
func (s *Service) Tag(id int, tag string) error {
	t, err := s.find(id)
	if err != nil {
		return err
	}

	if strings.TrimSpace(tag) == "" {
		return validationErr("tag", "must not be empty")
	}

	t.AddTag(tag)

	return nil
}

// Untag removes a tag from the transaction.
func (s *Service) Untag(id int, tag string) error {
	t, err := s.find(id)
	if err != nil {
		return err
	}

	t.RemoveTag(tag)

	return nil
}

// List returns copies of all non-deleted transactions in insertion order.
func (s *Service) List() []*Transaction {
	return cloneAll(s.active())
}

// Deleted returns copies of soft-deleted transactions in insertion order.
// This is the recovery surface: entries here are candidates for Recover.
func (s *Service) Deleted() []*Transaction {
	var out []*Transaction

	for _, t := range s.txs {
		if t.Deleted {
			out = append(out, t.clone())
		}
	}

	return out
}

// Search matches keyword case-insensitively against descriptions, preserving
// insertion order and skipping deleted entries.
func (s *Service) Search(keyword string) []*Transaction {
	needle := strings.ToLower(keyword)

	var out []*Transaction

	for _, t := range s.active() {
		if strings.Contains(strings.ToLower(t.Description), needle) {
			out = append(out, t.clone())
		}
	}

	return out
}

// HighPriority returns non-deleted entries flagged HIGH, compared
// case-insensitively against the priority name.
func (s *Service) HighPriority() []*Transaction {
	var out []*Transaction

	for _, t := range s.active() {
		if strings.EqualFold(string(t.Priority), string(PriorityHigh)) {
			out = append(out, t.clone())
		}
	}

	return out
}

// FilterByDateRange returns non-deleted entries dated within [start, end],
// bounds inclusive. Undated entries are excluded, not an error.
func (s *Service) FilterByDateRange(start, end time.Time) []*Transaction {
	var out []*Transaction

	for _, t := range s.active() {
		if t.Date == nil {
			continue
		}

		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}

		out = append(out, t.clone())
	}

	return out
}

// Balance sums completed, non-deleted transactions, each normalized to the
// base currency before summing.
func (s *Service) Balance() (decimal.Decimal, error) {
	total := decimal.Zero

	for _, t := range s.active() {
		if !t.Completed {
			continue
		}

		base, err := currency.ToBase(t.Amount, t.Currency)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("balance: %w", err)
		}

		total = total.Add(base)
	}

	return total, nil
}

// CompletionStats counts completed and incomplete non-deleted transactions.
// The two counts always sum to the number of non-deleted entries.
func (s *Service) CompletionStats() (completed, incomplete int) {
	for _, t := range s.active() {
		if t.Completed {
			completed++
		} else {
			incomplete++
		}
	}

	return completed, incomplete
}

// CompletedAmountByCategory sums base-currency amounts of completed,
// non-deleted transactions per category. Categories with no contribution
// are omitted from the map.
func (s *Service) CompletedAmountByCategory() (map[Category]decimal.Decimal, error) {
	sums := make(map[Category]decimal.Decimal)

	for _, t := range s.active() {
		if !t.Completed {
			continue
		}

		base, err := currency.ToBase(t.Amount, t.Currency)
		if err != nil {
			return nil, fmt.Errorf("category totals: %w", err)
		}

		sums[t.Category] = sums[t.Category].Add(base)
	}

	return sums, nil
}

// Convert rescales one transaction into the target currency via the base
// round trip. Amount and currency are rewritten together; converting to the
// current currency is a no-op so the rate is never applied twice.
func (s *Service) Convert(id int, target currency.Code) error {
	t, err := s.find(id)
	if err != nil {
		return err
	}

	if t.Currency == target {
		return nil
	}

	amount, err := currency.Convert(t.Amount, t.Currency, target)
	if err != nil {
		return validationErr("currency", "%v", err)
	}

	t.Amount = amount
	t.Currency = target

	return nil
}

// ConvertAll converts every transaction, including deleted ones so a later
// recover does not resurface a stale currency.
func (s *Service) ConvertAll(target currency.Code) error {
	if _, err := currency.Rate(target); err != nil {
		return validationErr("currency", "%v", err)
	}

	for _, t := range s.txs {
		if err := s.Convert(t.ID, target); err != nil {
			return err
		}
	}

	return nil
}

// SetBudget installs a budget cap for a category, replacing any existing
// budget for that category.
func (s *Service) SetBudget(name string, cat Category, total decimal.Decimal, endDate time.Time) (*Budget, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("name", "must not be empty")
	}

	if _, err := ParseCategory(string(cat)); err != nil {
		return nil, validationErr("category", "%v", err)
	}

	if total.IsNegative() {
		return nil, validationErr("total", "budget cap must not be negative")
	}

	b := &Budget{
		ID:       uuid.New(),
		Name:     name,
		Category: cat,
		Total:    total,
		EndDate:  endDate,
	}

	s.budgets.Set(b)

	return b, nil
}

// RemoveBudget drops the budget at index.
func (s *Service) RemoveBudget(index int) error {
	if err := s.budgets.Remove(index); err != nil {
		return fmt.Errorf("budget %d: %w", index, err)
	}

	return nil
}

// Budgets returns the budget list in insertion order.
func (s *Service) Budgets() []*Budget {
	return s.budgets.All()
}

// BudgetDetails pairs every budget with its live remaining amount.
func (s *Service) BudgetDetails() ([]BudgetDetail, error) {
	return s.budgets.Details(s.txs)
}

// CheckBudgetLimits recomputes remaining for every budget and collects an
// alert per breach. It never aborts on the first breach, and breaches are
// reported as data rather than raised as errors.
func (s *Service) CheckBudgetLimits() ([]BudgetAlert, error) {
	var alerts []BudgetAlert

	for _, b := range s.budgets.All() {
		remaining, err := b.Remaining(s.txs)
		if err != nil {
			return nil, fmt.Errorf("checking budget %q: %w", b.Name, err)
		}

		if remaining.IsNegative() {
			alerts = append(alerts, BudgetAlert{Budget: b, Remaining: remaining})
		}
	}

	return alerts, nil
}

// SetGoal configures the savings goal, activating it on first use.
func (s *Service) SetGoal(title string, target decimal.Decimal, description string) error {
	if strings.TrimSpace(title) == "" {
		return validationErr("title", "must not be empty")
	}

	if !target.IsPositive() {
		return validationErr("target", "must be positive")
	}

	s.goal = Goal{
		Title:       title,
		Description: description,
		Target:      target,
		Balance:     s.goal.Balance,
	}

	return nil
}

// Goal returns a copy of the current goal state.
func (s *Service) Goal() Goal {
	return s.goal
}

// GoalStatus is the view returned by goal mutations. Overdrawn is a warning
// flag, not an error: a negative balance is a valid financial state.
type GoalStatus struct {
	Goal      Goal
	Overdrawn bool
}

// ContributeToGoal adds to the goal balance.
func (s *Service) ContributeToGoal(amount decimal.Decimal) (GoalStatus, error) {
	if !s.goal.Set() {
		return GoalStatus{}, stateErr("contribute", "no savings goal has been set")
	}

	if !amount.IsPositive() {
		return GoalStatus{}, validationErr("amount", "must be positive")
	}

	s.goal.Contribute(amount)

	return GoalStatus{Goal: s.goal, Overdrawn: s.goal.Overdrawn()}, nil
}

// DeductFromGoal subtracts from the goal balance. The balance may go
// negative; the returned status flags it and the caller renders a warning.
func (s *Service) DeductFromGoal(amount decimal.Decimal) (GoalStatus, error) {
	if !s.goal.Set() {
		return GoalStatus{}, stateErr("deduct", "no savings goal has been set")
	}

	if !amount.IsPositive() {
		return GoalStatus{}, validationErr("amount", "must be positive")
	}

	s.goal.Deduct(amount)

	return GoalStatus{Goal: s.goal, Overdrawn: s.goal.Overdrawn()}, nil
}

func cloneAll(txs []*Transaction) []*Transaction {
	out := make([]*Transaction, len(txs))
	for i, t := range txs {
		out[i] = t.clone()
	}

	return out
}
