package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ongweikiat/moolah/internal/currency"
	"github.com/ongweikiat/moolah/internal/database"
	"github.com/ongweikiat/moolah/internal/ledger"
	"github.com/ongweikiat/moolah/internal/ledger/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.New(database.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, store.Migrate(db, database.DriverSQLite))

	return store.New(db)
}

func dayOf(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)

	return d
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	date := dayOf(t, "2024-03-01")

	state := &ledger.State{
		Transactions: []*ledger.Transaction{
			{
				ID:          4,
				Amount:      decimal.RequireFromString("-12.50"),
				Currency:    currency.SGD,
				Category:    ledger.CategoryFood,
				Priority:    ledger.PriorityHigh,
				Status:      ledger.StatusPending,
				Date:        &date,
				Description: "Lunch",
				Tags:        []string{"work", "claimable"},
				Completed:   true,
			},
			{
				ID:              7,
				Amount:          decimal.RequireFromString("3000"),
				Currency:        currency.USD,
				Category:        ledger.CategorySalary,
				Priority:        ledger.PriorityLow,
				Status:          ledger.StatusCompleted,
				Description:     "Payroll",
				RecurringPeriod: 30,
				Deleted:         true,
			},
		},
		Budgets: []*ledger.Budget{
			{
				ID:       uuid.New(),
				Name:     "Groceries",
				Category: ledger.CategoryFood,
				Total:    decimal.RequireFromString("400"),
				EndDate:  dayOf(t, "2024-06-30"),
			},
		},
		Goal: ledger.Goal{
			Title:   "Trip",
			Target:  decimal.RequireFromString("2000"),
			Balance: decimal.RequireFromString("-50"),
		},
		NextID: 8,
	}

	require.NoError(t, st.Save(ctx, state))

	got, err := st.Load(ctx)
	require.NoError(t, err)

	require.Len(t, got.Transactions, 2)

	first := got.Transactions[0]
	assert.Equal(t, 4, first.ID)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("-12.50")))
	assert.Equal(t, currency.SGD, first.Currency)
	assert.Equal(t, ledger.CategoryFood, first.Category)
	assert.Equal(t, ledger.PriorityHigh, first.Priority)
	assert.Equal(t, ledger.StatusPending, first.Status)
	require.NotNil(t, first.Date)
	assert.Equal(t, date, *first.Date)
	assert.Equal(t, []string{"work", "claimable"}, first.Tags)
	assert.True(t, first.Completed)
	assert.False(t, first.Deleted)

	second := got.Transactions[1]
	assert.Equal(t, 7, second.ID)
	assert.Nil(t, second.Date)
	assert.Equal(t, 30, second.RecurringPeriod)
	assert.True(t, second.Deleted)
	assert.Empty(t, second.Tags)

	require.Len(t, got.Budgets, 1)

	budget := got.Budgets[0]
	assert.Equal(t, state.Budgets[0].ID, budget.ID)
	assert.Equal(t, "Groceries", budget.Name)
	assert.Equal(t, ledger.CategoryFood, budget.Category)
	assert.True(t, budget.Total.Equal(decimal.RequireFromString("400")))
	assert.Equal(t, dayOf(t, "2024-06-30"), budget.EndDate)

	assert.True(t, got.Goal.Set())
	assert.Equal(t, "Trip", got.Goal.Title)
	assert.True(t, got.Goal.Target.Equal(decimal.RequireFromString("2000")))
	assert.True(t, got.Goal.Balance.Equal(decimal.RequireFromString("-50")))

	assert.Equal(t, 8, got.NextID)
}

func TestStore_LoadEmpty(t *testing.T) {
	st := newStore(t)

	got, err := st.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, got.Transactions)
	assert.Empty(t, got.Budgets)
	assert.False(t, got.Goal.Set())
	assert.Equal(t, 1, got.NextID)
}

func TestStore_SaveReplacesSnapshot(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	first := &ledger.State{
		Transactions: []*ledger.Transaction{
			{ID: 1, Amount: decimal.RequireFromString("-5"), Currency: currency.SGD,
				Category: ledger.CategoryFood, Priority: ledger.PriorityLow,
				Status: ledger.StatusPending, Description: "Coffee"},
			{ID: 2, Amount: decimal.RequireFromString("-9"), Currency: currency.SGD,
				Category: ledger.CategoryFood, Priority: ledger.PriorityLow,
				Status: ledger.StatusPending, Description: "Lunch"},
		},
		Goal:   ledger.Goal{Title: "Trip", Target: decimal.RequireFromString("100")},
		NextID: 3,
	}
	require.NoError(t, st.Save(ctx, first))

	second := &ledger.State{
		Transactions: []*ledger.Transaction{
			{ID: 3, Amount: decimal.RequireFromString("-2"), Currency: currency.SGD,
				Category: ledger.CategoryFood, Priority: ledger.PriorityLow,
				Status: ledger.StatusPending, Description: "Snack"},
		},
		NextID: 4,
	}
	require.NoError(t, st.Save(ctx, second))

	got, err := st.Load(ctx)
	require.NoError(t, err)

	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "Snack", got.Transactions[0].Description)
	assert.False(t, got.Goal.Set())
	assert.Equal(t, 4, got.NextID)
}
