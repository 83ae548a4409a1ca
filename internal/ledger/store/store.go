package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/ledger"
)

// Store persists ledger snapshots through database/sql. The SQL is kept
// portable ($N placeholders, TEXT-encoded decimals and dates) so one store
// serves both the sqlite and postgres backends.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var (
		t                  ledger.Transaction
		amount, tagsJSON   string
		date               sql.NullString
		completed, deleted int
	)

	if err := s.Scan(
		&t.ID, &amount, &t.Currency, &t.Category, &t.Priority, &t.Status,
		&date, &t.Description, &tagsJSON, &t.RecurringPeriod,
		&completed, &deleted,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
	}

	t.Amount = parsed

	if date.Valid {
		d, err := time.Parse(time.DateOnly, date.String)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", date.String, err)
		}

		t.Date = &d
	}

	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return nil, fmt.Errorf("parsing tags: %w", err)
	}

	t.Completed = completed != 0
	t.Deleted = deleted != 0

	return &t, nil
}

// Load reads the full snapshot. Historical rows are restored verbatim; past
// dates are not re-validated.
func (s *Store) Load(ctx context.Context) (*ledger.State, error) {
	state := &ledger.State{NextID: 1}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, currency, category, priority, status, date,
		       description, tags, recurring_period, completed, deleted
		FROM transactions
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		state.Transactions = append(state.Transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	budgets, err := s.loadBudgets(ctx)
	if err != nil {
		return nil, err
	}

	state.Budgets = budgets

	goal, err := s.loadGoal(ctx)
	if err != nil {
		return nil, err
	}

	state.Goal = goal

	var nextID sql.NullInt64
	err = s.db.QueryRowContext(ctx, `SELECT next_id FROM ledger_meta WHERE id = 1`).Scan(&nextID)

	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("loading meta: %w", err)
	}

	if nextID.Valid {
		state.NextID = int(nextID.Int64)
	}

	return state, nil
}

func (s *Store) loadBudgets(ctx context.Context) ([]*ledger.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, total, end_date
		FROM budgets
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*ledger.Budget

	for rows.Next() {
		var (
			b                 ledger.Budget
			id, total, endDay string
		)

		if err := rows.Scan(&id, &b.Name, &b.Category, &total, &endDay); err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		if b.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing budget id %q: %w", id, err)
		}

		if b.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parsing budget total %q: %w", total, err)
		}

		if b.EndDate, err = time.Parse(time.DateOnly, endDay); err != nil {
			return nil, fmt.Errorf("parsing budget end date %q: %w", endDay, err)
		}

		budgets = append(budgets, &b)
	}

	return budgets, rows.Err()
}

func (s *Store) loadGoal(ctx context.Context) (ledger.Goal, error) {
	var (
		g               ledger.Goal
		target, balance string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT title, description, target, balance FROM goal WHERE id = 1`).
		Scan(&g.Title, &g.Description, &target, &balance)
	if err == sql.ErrNoRows {
		return ledger.Goal{}, nil
	}

	if err != nil {
		return ledger.Goal{}, fmt.Errorf("loading goal: %w", err)
	}

	if g.Target, err = decimal.NewFromString(target); err != nil {
		return ledger.Goal{}, fmt.Errorf("parsing goal target %q: %w", target, err)
	}

	if g.Balance, err = decimal.NewFromString(balance); err != nil {
		return ledger.Goal{}, fmt.Errorf("parsing goal balance %q: %w", balance, err)
	}

	return g, nil
}

// Save replaces the stored snapshot with the given state in one transaction.
func (s *Store) Save(ctx context.Context, state *ledger.State) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot tx: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{"transactions", "budgets", "goal", "ledger_meta"} {
		if _, err := dbTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	insertTx := `
		INSERT INTO transactions
			(id, position, amount, currency, category, priority, status, date,
			 description, tags, recurring_period, completed, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	for i, t := range state.Transactions {
		var date any
		if t.Date != nil {
			date = t.Date.Format(time.DateOnly)
		}

		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}

		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("encoding tags: %w", err)
		}

		_, err = dbTx.ExecContext(ctx, insertTx,
			t.ID, i, t.Amount.String(), string(t.Currency), string(t.Category),
			string(t.Priority), string(t.Status), date, t.Description,
			string(tagsJSON), t.RecurringPeriod, boolToInt(t.Completed), boolToInt(t.Deleted),
		)
		if err != nil {
			return fmt.Errorf("saving transaction %d: %w", t.ID, err)
		}
	}

	insertBudget := `
		INSERT INTO budgets (id, position, name, category, total, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for i, b := range state.Budgets {
		_, err := dbTx.ExecContext(ctx, insertBudget,
			b.ID.String(), i, b.Name, string(b.Category),
			b.Total.String(), b.EndDate.Format(time.DateOnly),
		)
		if err != nil {
			return fmt.Errorf("saving budget %q: %w", b.Name, err)
		}
	}

	if state.Goal.Set() {
		_, err := dbTx.ExecContext(ctx, `
			INSERT INTO goal (id, title, description, target, balance)
			VALUES (1, $1, $2, $3, $4)`,
			state.Goal.Title, state.Goal.Description,
			state.Goal.Target.String(), state.Goal.Balance.String(),
		)
		if err != nil {
			return fmt.Errorf("saving goal: %w", err)
		}
	}

	if _, err := dbTx.ExecContext(ctx,
		`INSERT INTO ledger_meta (id, next_id) VALUES (1, $1)`, state.NextID); err != nil {
		return fmt.Errorf("saving meta: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
