package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ongweikiat/moolah/internal/currency"
	"github.com/ongweikiat/moolah/internal/ledger"
)

func addTx(t *testing.T, svc *ledger.Service, amount string, cat ledger.Category, date *time.Time) *ledger.Transaction {
	t.Helper()

	tx, err := svc.Add(ledger.AddParams{
		Description: "entry",
		Amount:      decimal.RequireFromString(amount),
		Currency:    currency.SGD,
		Category:    cat,
		Date:        date,
		Status:      ledger.StatusPending,
	})
	require.NoError(t, err)

	return tx
}

func TestService_SetBudget(t *testing.T) {
	type testCase struct {
		name     string
		budgName string
		category ledger.Category
		total    string
		wantErr  bool
	}

	tests := []testCase{
		{
			name:     "Success",
			budgName: "Groceries",
			category: ledger.CategoryFood,
			total:    "100",
		},
		{
			name:     "ZeroCapAllowed",
			budgName: "Frozen",
			category: ledger.CategoryShopping,
			total:    "0",
		},
		{
			name:     "EmptyName",
			budgName: "  ",
			category: ledger.CategoryFood,
			total:    "100",
			wantErr:  true,
		},
		{
			name:     "UnknownCategory",
			budgName: "Groceries",
			category: "GAMBLING",
			total:    "100",
			wantErr:  true,
		},
		{
			name:     "NegativeCap",
			budgName: "Groceries",
			category: ledger.CategoryFood,
			total:    "-1",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := ledger.NewService(nil)

			got, err := svc.SetBudget(tt.budgName, tt.category,
				decimal.RequireFromString(tt.total), *dateOf("2024-12-31"))

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				var vErr *ledger.ValidationError
				assert.ErrorAs(t, err, &vErr)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_SetBudget_ReplacesSameCategory(t *testing.T) {
	svc := ledger.NewService(nil)

	first, err := svc.SetBudget("Food v1", ledger.CategoryFood,
		decimal.RequireFromString("100"), *dateOf("2024-06-30"))
	require.NoError(t, err)

	_, err = svc.SetBudget("Transit", ledger.CategoryTransport,
		decimal.RequireFromString("50"), *dateOf("2024-06-30"))
	require.NoError(t, err)

	second, err := svc.SetBudget("Food v2", ledger.CategoryFood,
		decimal.RequireFromString("200"), *dateOf("2024-12-31"))
	require.NoError(t, err)

	budgets := svc.Budgets()
	require.Len(t, budgets, 2)

	// The replacement keeps the original slot and the list order.
	assert.Equal(t, "Food v2", budgets[0].Name)
	assert.Equal(t, "Transit", budgets[1].Name)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestService_RemoveBudget(t *testing.T) {
	svc := ledger.NewService(nil)

	_, err := svc.SetBudget("Groceries", ledger.CategoryFood,
		decimal.RequireFromString("100"), *dateOf("2024-12-31"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveBudget(-1), ledger.ErrNotFound)
	assert.ErrorIs(t, svc.RemoveBudget(1), ledger.ErrNotFound)

	require.NoError(t, svc.RemoveBudget(0))
	assert.Empty(t, svc.Budgets())
}

func TestBudget_Remaining(t *testing.T) {
	svc := ledger.NewService(nil)

	_, err := svc.SetBudget("Groceries", ledger.CategoryFood,
		decimal.RequireFromString("100"), *dateOf("2024-06-30"))
	require.NoError(t, err)

	addTx(t, svc, "-30", ledger.CategoryFood, dateOf("2024-06-01"))
	addTx(t, svc, "-80", ledger.CategoryFood, dateOf("2024-06-15"))
	addTx(t, svc, "-40", ledger.CategoryFood, dateOf("2024-07-01"))   // after the end date
	addTx(t, svc, "-25", ledger.CategoryTransport, dateOf("2024-06-10")) // other category
	addTx(t, svc, "500", ledger.CategoryFood, dateOf("2024-06-05"))   // income never counts
	addTx(t, svc, "-10", ledger.CategoryFood, nil)                    // undated excluded

	details, err := svc.BudgetDetails()
	require.NoError(t, err)
	require.Len(t, details, 1)

	// 100 - (30 + 80) = -10; overspend yields a negative remaining.
	assert.True(t, details[0].Remaining.Equal(decimal.RequireFromString("-10")),
		"got %s", details[0].Remaining)
}

func TestBudget_Remaining_NormalizesCurrency(t *testing.T) {
	svc := ledger.NewService(nil)

	_, err := svc.SetBudget("Groceries", ledger.CategoryFood,
		decimal.RequireFromString("100"), *dateOf("2024-06-30"))
	require.NoError(t, err)

	// -37 USD is -50 SGD at 0.74 per SGD.
	_, err = svc.Add(ledger.AddParams{
		Description: "imported snacks",
		Amount:      decimal.RequireFromString("-37"),
		Currency:    currency.USD,
		Category:    ledger.CategoryFood,
		Date:        dateOf("2024-06-01"),
		Status:      ledger.StatusPending,
	})
	require.NoError(t, err)

	details, err := svc.BudgetDetails()
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.True(t, details[0].Remaining.Equal(decimal.RequireFromString("50")),
		"got %s", details[0].Remaining)
}

func TestBudget_Remaining_IgnoresDeleted(t *testing.T) {
	svc := ledger.NewService(nil)

	_, err := svc.SetBudget("Groceries", ledger.CategoryFood,
		decimal.RequireFromString("100"), *dateOf("2024-06-30"))
	require.NoError(t, err)

	tx := addTx(t, svc, "-60", ledger.CategoryFood, dateOf("2024-06-01"))
	require.NoError(t, svc.Delete(tx.ID))

	details, err := svc.BudgetDetails()
	require.NoError(t, err)
	assert.True(t, details[0].Remaining.Equal(decimal.RequireFromString("100")))

	// Recovery counts the spend again.
	require.NoError(t, svc.Recover(tx.ID))

	details, err = svc.BudgetDetails()
	require.NoError(t, err)
	assert.True(t, details[0].Remaining.Equal(decimal.RequireFromString("40")))
}

func TestService_CheckBudgetLimits(t *testing.T) {
	svc := ledger.NewService(nil)

	_, err := svc.SetBudget("Groceries", ledger.CategoryFood,
		decimal.RequireFromString("50"), *dateOf("2024-06-30"))
	require.NoError(t, err)

	_, err = svc.SetBudget("Transit", ledger.CategoryTransport,
		decimal.RequireFromString("30"), *dateOf("2024-06-30"))
	require.NoError(t, err)

	_, err = svc.SetBudget("Fun", ledger.CategoryEntertainment,
		decimal.RequireFromString("1000"), *dateOf("2024-06-30"))
	require.NoError(t, err)

	addTx(t, svc, "-80", ledger.CategoryFood, dateOf("2024-06-01"))
	addTx(t, svc, "-45", ledger.CategoryTransport, dateOf("2024-06-02"))
	addTx(t, svc, "-5", ledger.CategoryEntertainment, dateOf("2024-06-03"))

	alerts, err := svc.CheckBudgetLimits()
	require.NoError(t, err)

	// Every breach is collected, not just the first.
	require.Len(t, alerts, 2)
	assert.Equal(t, "Groceries", alerts[0].Budget.Name)
	assert.True(t, alerts[0].Remaining.Equal(decimal.RequireFromString("-30")))
	assert.Equal(t, "Transit", alerts[1].Budget.Name)
	assert.True(t, alerts[1].Remaining.Equal(decimal.RequireFromString("-15")))
}

func TestService_CheckBudgetLimits_ExactCapIsNotABreach(t *testing.T) {
	svc := ledger.NewService(nil)

	_, err := svc.SetBudget("Groceries", ledger.CategoryFood,
		decimal.RequireFromString("50"), *dateOf("2024-06-30"))
	require.NoError(t, err)

	addTx(t, svc, "-50", ledger.CategoryFood, dateOf("2024-06-01"))

	alerts, err := svc.CheckBudgetLimits()
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
