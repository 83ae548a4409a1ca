package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ongweikiat/moolah/internal/currency"
	"github.com/ongweikiat/moolah/internal/ledger"
)

func dateOf(s string) *time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return &d
}

func validParams() ledger.AddParams {
	return ledger.AddParams{
		Description: "Lunch",
		Amount:      decimal.RequireFromString("-12.50"),
		Currency:    currency.SGD,
		Category:    ledger.CategoryFood,
		Date:        dateOf("2024-03-01"),
		Status:      ledger.StatusPending,
	}
}

func TestService_Add(t *testing.T) {
	type testCase struct {
		name    string
		mutate  func(p *ledger.AddParams)
		wantErr bool
	}

	tests := []testCase{
		{
			name:   "Success",
			mutate: func(p *ledger.AddParams) {},
		},
		{
			name:   "PositiveIncomeAllowed",
			mutate: func(p *ledger.AddParams) { p.Amount = decimal.RequireFromString("3000") },
		},
		{
			name:   "UndatedAllowed",
			mutate: func(p *ledger.AddParams) { p.Date = nil },
		},
		{
			name:    "EmptyDescription",
			mutate:  func(p *ledger.AddParams) { p.Description = "   " },
			wantErr: true,
		},
		{
			name:    "UnknownCurrency",
			mutate:  func(p *ledger.AddParams) { p.Currency = "XYZ" },
			wantErr: true,
		},
		{
			name:    "UnknownCategory",
			mutate:  func(p *ledger.AddParams) { p.Category = "GAMBLING" },
			wantErr: true,
		},
		{
			name:    "UnknownStatus",
			mutate:  func(p *ledger.AddParams) { p.Status = "DRAFT" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := ledger.NewService(nil)

			params := validParams()
			tt.mutate(&params)

			got, err := svc.Add(params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				var vErr *ledger.ValidationError
				assert.ErrorAs(t, err, &vErr)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, 1, got.ID)
			assert.Equal(t, ledger.PriorityLow, got.Priority)
			assert.False(t, got.Completed)
			assert.False(t, got.Deleted)
		})
	}
}

func TestService_Add_SequentialIDs(t *testing.T) {
	svc := ledger.NewService(nil)

	first, err := svc.Add(validParams())
	require.NoError(t, err)

	second, err := svc.Add(validParams())
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
}

func TestService_DeleteRecover(t *testing.T) {
	svc := ledger.NewService(nil)

	tx, err := svc.Add(validParams())
	require.NoError(t, err)

	// Deleted entries leave queries but remain addressable.
	require.NoError(t, svc.Delete(tx.ID))
	assert.Empty(t, svc.List())

	got, err := svc.Get(tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	// Double delete is a state error.
	err = svc.Delete(tx.ID)

	var sErr *ledger.StateError
	assert.ErrorAs(t, err, &sErr)

	// Recover restores the entry to queries.
	require.NoError(t, svc.Recover(tx.ID))
	assert.Len(t, svc.List(), 1)

	// Recovering a live entry is a state error too.
	err = svc.Recover(tx.ID)
	assert.ErrorAs(t, err, &sErr)

	// Unknown ids are not found, regardless of state.
	assert.ErrorIs(t, svc.Delete(99), ledger.ErrNotFound)
	assert.ErrorIs(t, svc.Recover(99), ledger.ErrNotFound)
}

func TestService_Edit(t *testing.T) {
	type testCase struct {
		name    string
		field   string
		value   string
		check   func(t *testing.T, tx *ledger.Transaction)
		wantErr bool
	}

	tests := []testCase{
		{
			name:  "Description",
			field: ledger.FieldDescription,
			value: "Dinner",
			check: func(t *testing.T, tx *ledger.Transaction) {
				assert.Equal(t, "Dinner", tx.Description)
			},
		},
		{
			name:  "CategoryCaseInsensitive",
			field: ledger.FieldCategory,
			value: "transport",
			check: func(t *testing.T, tx *ledger.Transaction) {
				assert.Equal(t, ledger.CategoryTransport, tx.Category)
			},
		},
		{
			name:  "Amount",
			field: ledger.FieldAmount,
			value: "-99.90",
			check: func(t *testing.T, tx *ledger.Transaction) {
				assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-99.90")))
			},
		},
		{
			name:  "CurrencyRelabelsWithoutRescaling",
			field: ledger.FieldCurrency,
			value: "usd",
			check: func(t *testing.T, tx *ledger.Transaction) {
				assert.Equal(t, currency.USD, tx.Currency)
				assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-12.50")))
			},
		},
		{
			name:  "Date",
			field: ledger.FieldDate,
			value: "2024-06-15",
			check: func(t *testing.T, tx *ledger.Transaction) {
				require.NotNil(t, tx.Date)
				assert.Equal(t, *dateOf("2024-06-15"), *tx.Date)
			},
		},
		{
			name:  "Priority",
			field: ledger.FieldPriority,
			value: "high",
			check: func(t *testing.T, tx *ledger.Transaction) {
				assert.Equal(t, ledger.PriorityHigh, tx.Priority)
			},
		},
		{
			name:    "EmptyDescription",
			field:   ledger.FieldDescription,
			value:   " ",
			wantErr: true,
		},
		{
			name:    "BadAmount",
			field:   ledger.FieldAmount,
			value:   "twelve",
			wantErr: true,
		},
		{
			name:    "BadDate",
			field:   ledger.FieldDate,
			value:   "15/06/2024",
			wantErr: true,
		},
		{
			name:    "UnknownField",
			field:   "color",
			value:   "red",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := ledger.NewService(nil)

			tx, err := svc.Add(validParams())
			require.NoError(t, err)

			err = svc.Edit(tx.ID, tt.field, tt.value)

			if tt.wantErr {
				var vErr *ledger.ValidationError
				assert.ErrorAs(t, err, &vErr)

				return
			}

			require.NoError(t, err)

			got, err := svc.Get(tx.ID)
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_Edit_NotFound(t *testing.T) {
	svc := ledger.NewService(nil)

	err := svc.Edit(42, ledger.FieldDescription, "anything")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_Search(t *testing.T) {
	svc := ledger.NewService(nil)

	add := func(desc string) *ledger.Transaction {
		p := validParams()
		p.Description = desc

		tx, err := svc.Add(p)
		require.NoError(t, err)

		return tx
	}

	add("Grocery run")
	coffee := add("Morning coffee")
	add("Coffee beans")

	got := svc.Search("coffee")
	require.Len(t, got, 2)
	assert.Equal(t, "Morning coffee", got[0].Description)
	assert.Equal(t, "Coffee beans", got[1].Description)

	// Deleted entries never match.
	require.NoError(t, svc.Delete(coffee.ID))
	assert.Len(t, svc.Search("coffee"), 1)

	// No match yields an empty result, not an error.
	assert.Empty(t, svc.Search("rent"))
}

func TestService_HighPriority(t *testing.T) {
	svc := ledger.NewService(nil)

	tx, err := svc.Add(validParams())
	require.NoError(t, err)

	assert.Empty(t, svc.HighPriority())

	require.NoError(t, svc.Edit(tx.ID, ledger.FieldPriority, "HIGH"))
	assert.Len(t, svc.HighPriority(), 1)

	require.NoError(t, svc.Delete(tx.ID))
	assert.Empty(t, svc.HighPriority())
}

func TestService_FilterByDateRange(t *testing.T) {
	svc := ledger.NewService(nil)

	add := func(date *time.Time) {
		p := validParams()
		p.Date = date

		_, err := svc.Add(p)
		require.NoError(t, err)
	}

	add(dateOf("2024-01-01"))
	add(dateOf("2024-01-15"))
	add(dateOf("2024-02-01"))
	add(nil)

	got := svc.FilterByDateRange(*dateOf("2024-01-01"), *dateOf("2024-01-31"))
	require.Len(t, got, 2)

	// Bounds are inclusive.
	got = svc.FilterByDateRange(*dateOf("2024-01-15"), *dateOf("2024-02-01"))
	require.Len(t, got, 2)

	// Inverted range matches nothing.
	assert.Empty(t, svc.FilterByDateRange(*dateOf("2024-03-01"), *dateOf("2024-01-01")))
}

func TestService_Balance(t *testing.T) {
	svc := ledger.NewService(nil)

	add := func(amount string, code currency.Code, completed bool) {
		p := validParams()
		p.Amount = decimal.RequireFromString(amount)
		p.Currency = code

		tx, err := svc.Add(p)
		require.NoError(t, err)
		require.NoError(t, svc.SetCompleted(tx.ID, completed))
	}

	add("100", currency.SGD, true)
	add("-37", currency.USD, true) // -37 / 0.74 = -50 SGD
	add("999", currency.SGD, false)

	got, err := svc.Balance()
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("50")), "got %s", got)
}

func TestService_CompletionStats(t *testing.T) {
	svc := ledger.NewService(nil)

	for range 3 {
		_, err := svc.Add(validParams())
		require.NoError(t, err)
	}

	require.NoError(t, svc.SetCompleted(1, true))
	require.NoError(t, svc.Delete(3))

	completed, incomplete := svc.CompletionStats()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, incomplete)
}

func TestService_CompletedAmountByCategory(t *testing.T) {
	svc := ledger.NewService(nil)

	add := func(amount string, cat ledger.Category, completed bool) {
		p := validParams()
		p.Amount = decimal.RequireFromString(amount)
		p.Category = cat

		tx, err := svc.Add(p)
		require.NoError(t, err)
		require.NoError(t, svc.SetCompleted(tx.ID, completed))
	}

	add("-30", ledger.CategoryFood, true)
	add("-20", ledger.CategoryFood, true)
	add("-15", ledger.CategoryTransport, true)
	add("-500", ledger.CategoryHousing, false)

	got, err := svc.CompletedAmountByCategory()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[ledger.CategoryFood].Equal(decimal.RequireFromString("-50")))
	assert.True(t, got[ledger.CategoryTransport].Equal(decimal.RequireFromString("-15")))
}

func TestService_Convert(t *testing.T) {
	svc := ledger.NewService(nil)

	p := validParams()
	p.Amount = decimal.RequireFromString("100")
	p.Currency = currency.SGD

	tx, err := svc.Add(p)
	require.NoError(t, err)

	require.NoError(t, svc.Convert(tx.ID, currency.USD))

	got, err := svc.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, currency.USD, got.Currency)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("74")), "got %s", got.Amount)

	// Converting back restores the original amount within cent rounding.
	require.NoError(t, svc.Convert(tx.ID, currency.SGD))

	got, err = svc.Get(tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("100")), "got %s", got.Amount)

	// Same-currency conversion is a no-op, not an error.
	require.NoError(t, svc.Convert(tx.ID, currency.SGD))

	// Unknown target currency.
	err = svc.Convert(tx.ID, "XYZ")

	var vErr *ledger.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestService_ConvertAll_IncludesDeleted(t *testing.T) {
	svc := ledger.NewService(nil)

	live, err := svc.Add(validParams())
	require.NoError(t, err)

	deleted, err := svc.Add(validParams())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(deleted.ID))

	require.NoError(t, svc.ConvertAll(currency.USD))

	for _, id := range []int{live.ID, deleted.ID} {
		got, err := svc.Get(id)
		require.NoError(t, err)
		assert.Equal(t, currency.USD, got.Currency)
	}
}

func TestService_Tags(t *testing.T) {
	svc := ledger.NewService(nil)

	tx, err := svc.Add(validParams())
	require.NoError(t, err)

	require.NoError(t, svc.Tag(tx.ID, "work"))
	require.NoError(t, svc.Tag(tx.ID, "work")) // idempotent
	require.NoError(t, svc.Tag(tx.ID, "travel"))

	got, err := svc.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "travel"}, got.Tags)

	require.NoError(t, svc.Untag(tx.ID, "work"))

	got, err = svc.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"travel"}, got.Tags)

	var vErr *ledger.ValidationError
	assert.ErrorAs(t, svc.Tag(tx.ID, "  "), &vErr)
}

func TestService_List_ReturnsCopies(t *testing.T) {
	svc := ledger.NewService(nil)

	params := validParams()
	_, err := svc.Add(params)
	require.NoError(t, err)
	require.NoError(t, svc.Tag(1, "work"))

	listed := svc.List()
	listed[0].Description = "tampered"
	listed[0].Tags[0] = "tampered"
	*listed[0].Date = *dateOf("1999-01-01")

	// The pointer handed to Add must not alias the entry either.
	*params.Date = *dateOf("1999-01-01")

	got, err := svc.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", got.Description)
	assert.Equal(t, []string{"work"}, got.Tags)
	assert.Equal(t, *dateOf("2024-03-01"), *got.Date)
}

func TestService_Deleted(t *testing.T) {
	svc := ledger.NewService(nil)

	for _, desc := range []string{"keep", "drop", "also drop"} {
		p := validParams()
		p.Description = desc
		_, err := svc.Add(p)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Delete(2))
	require.NoError(t, svc.Delete(3))

	deleted := svc.Deleted()
	require.Len(t, deleted, 2)
	assert.Equal(t, 2, deleted[0].ID)
	assert.Equal(t, 3, deleted[1].ID)

	// Entries listed here are recoverable, and leave the list once recovered.
	require.NoError(t, svc.Recover(deleted[0].ID))
	assert.Len(t, svc.Deleted(), 1)
	assert.Len(t, svc.List(), 2)
}

func TestService_Hydrate(t *testing.T) {
	type testCase struct {
		name       string
		setupMock  func(m *ledger.MockRepository)
		wantErr    bool
		wantNextID int
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					Load(gomock.Any()).
					Return(&ledger.State{
						Transactions: []*ledger.Transaction{
							{ID: 1, Description: "old"},
							{ID: 5, Description: "older"},
						},
						NextID: 6,
					}, nil)
			},
			wantNextID: 6,
		},
		{
			name: "CounterRepairedWhenLagging",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					Load(gomock.Any()).
					Return(&ledger.State{
						Transactions: []*ledger.Transaction{{ID: 9}},
						NextID:       2,
					}, nil)
			},
			wantNextID: 10,
		},
		{
			name: "RepoError",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					Load(gomock.Any()).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := ledger.NewService(repo)
			err := svc.Hydrate(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			// The next Add must use the repaired counter.
			tx, err := svc.Add(validParams())
			require.NoError(t, err)
			assert.Equal(t, tt.wantNextID, tx.ID)
		})
	}
}

func TestService_Flush(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, state *ledger.State) error {
			assert.Len(t, state.Transactions, 1)
			assert.Equal(t, 2, state.NextID)

			return nil
		})

	svc := ledger.NewService(repo)

	_, err := svc.Add(validParams())
	require.NoError(t, err)

	require.NoError(t, svc.Flush(context.Background()))
}

func TestService_HydrateFlush_NilRepo(t *testing.T) {
	svc := ledger.NewService(nil)

	assert.NoError(t, svc.Hydrate(context.Background()))
	assert.NoError(t, svc.Flush(context.Background()))
}
