package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_SaveTransactions(t *testing.T) {
	tests := []struct {
		name         string
		existing     []model.Transaction
		transactions []model.Transaction
		wantInserted int
		wantTotal    int
		wantErr      bool
	}{
		{
			name: "save new transactions",
			transactions: []model.Transaction{
				testTxn("a", 1, model.TypeExpense, 10),
				testTxn("b", 2, model.TypeIncome, 20),
			},
			wantInserted: 2,
			wantTotal:    2,
		},
		{
			name:     "duplicate ids are skipped",
			existing: []model.Transaction{testTxn("a", 1, model.TypeExpense, 10)},
			transactions: []model.Transaction{
				testTxn("a", 1, model.TypeExpense, 99),
				testTxn("c", 3, model.TypeExpense, 30),
			},
			wantInserted: 1,
			wantTotal:    2,
		},
		{
			name:         "invalid transaction rejects batch",
			transactions: []model.Transaction{testTxn("a", 1, model.TypeExpense, 10), testTxn("", 2, model.TypeExpense, 5)},
			wantErr:      true,
		},
		{
			name:         "empty batch",
			transactions: []model.Transaction{},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := createTestStorage(t)
			if len(tt.existing) > 0 {
				_, err := store.SaveTransactions(ctx, tt.existing)
				require.NoError(t, err)
			}

			inserted, err := store.SaveTransactions(ctx, tt.transactions)
			if tt.wantErr {
				assert.Error(t, err)
				count, countErr := store.GetTransactionCount(ctx)
				require.NoError(t, countErr)
				assert.Equal(t, len(tt.existing), count)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantInserted, inserted)

			count, err := store.GetTransactionCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, count)
		})
	}
}

func TestGetTransactions_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, err := store.SaveTransactions(ctx, []model.Transaction{
		testTxn("old", 1, model.TypeExpense, 1),
		testTxn("new", 9, model.TypeIncome, 2),
		testTxn("mid", 5, model.TypeExpense, 3),
	})
	require.NoError(t, err)

	txns, err := store.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "new", txns[0].ID)
	assert.Equal(t, "mid", txns[1].ID)
	assert.Equal(t, "old", txns[2].ID)
}

func TestGetTransactions_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	loc := time.FixedZone("IST", 5*3600+1800)

	want := model.Transaction{
		ID:          "x",
		Date:        time.Date(2024, 3, 13, 0, 0, 0, 0, loc),
		Type:        model.TypeExpense,
		Necessity:   model.NecessityWant,
		Reason:      "Coffee",
		PaymentMode: "Credit Card",
		Amount:      4.5,
	}
	require.NoError(t, store.UpsertTransaction(ctx, want))

	got, err := store.GetTransactionByID(ctx, "x")
	require.NoError(t, err)
	assert.True(t, want.Date.Equal(got.Date), "date %v != %v", got.Date, want.Date)
	got.Date = want.Date
	assert.Equal(t, want, *got)
}

func TestUpsertTransaction_Replaces(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	txn := testTxn("a", 1, model.TypeExpense, 10)
	txn.Necessity = model.NecessityNeed
	require.NoError(t, store.UpsertTransaction(ctx, txn))

	txn.Type = model.TypeIncome
	txn.Amount = 25
	require.NoError(t, store.UpsertTransaction(ctx, txn))

	got, err := store.GetTransactionByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.TypeIncome, got.Type)
	assert.Equal(t, 25.0, got.Amount)
	assert.Equal(t, model.NecessityNone, got.Necessity, "income never stores a necessity")

	count, err := store.GetTransactionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertTransaction_Invalid(t *testing.T) {
	store := createTestStorage(t)
	bad := testTxn("a", 1, "transfer", 10)

	err := store.UpsertTransaction(context.Background(), bad)
	assert.ErrorIs(t, err, model.ErrInvalidTransaction)
}

func TestGetAndDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, err := store.GetTransactionByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.DeleteTransaction(ctx, "nope"), ErrNotFound)
	assert.ErrorIs(t, store.DeleteTransaction(ctx, ""), ErrEmptyString)
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	_, err := store.SaveTransactions(ctx, []model.Transaction{
		testTxn("a", 1, model.TypeExpense, 1),
		testTxn("b", 2, model.TypeExpense, 2),
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteTransaction(ctx, "a"))

	txns, err := store.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "b", txns[0].ID)
}
