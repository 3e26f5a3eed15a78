// Package testutil builds fully wired, in-memory budgly services for tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/budgly/internal/analytics"
	"github.com/Veraticus/budgly/internal/dashboard"
	"github.com/Veraticus/budgly/internal/layout"
	"github.com/Veraticus/budgly/internal/ledger"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/storage"
	"github.com/Veraticus/budgly/internal/timewindow"
	"github.com/stretchr/testify/require"
)

// Env is a migrated in-memory database with the services built on it.
type Env struct {
	Storage *storage.SQLiteStorage
	Ledger  *ledger.Service
	Layout  *layout.Reconciler
	Engine  *analytics.Engine
}

// SetupTestDB creates an in-memory database, seeds txns through the ledger and
// returns services whose clock is frozen at now in UTC. Everything is closed
// when the test ends.
//
// Example:
//
//	env := testutil.SetupTestDB(t, now,
//		testutil.Expense(now, 500, "rent", model.NecessityNeed),
//	)
func SetupTestDB(t *testing.T, now time.Time, txns ...model.Transaction) *Env {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx), "failed to run migrations")

	svc, err := ledger.Open(ctx, store)
	require.NoError(t, err)
	for _, txn := range txns {
		_, err := svc.Add(ctx, txn)
		require.NoError(t, err, "failed to seed %q", txn.Reason)
	}

	rec, err := layout.New(ctx, storage.NewLayoutStore(store), dashboard.IDs())
	require.NoError(t, err)
	t.Cleanup(rec.Close)

	return &Env{
		Storage: store,
		Ledger:  svc,
		Layout:  rec,
		Engine:  analytics.NewEngine(timewindow.FixedClock{T: now}, timewindow.WithLocation(time.UTC)),
	}
}

// Expense builds an expense on date.
func Expense(date time.Time, amount float64, reason string, necessity model.Necessity) model.Transaction {
	return model.Transaction{Date: date, Type: model.TypeExpense, Necessity: necessity, Reason: reason, Amount: amount}
}

// Income builds an income on date.
func Income(date time.Time, amount float64, reason string) model.Transaction {
	return model.Transaction{Date: date, Type: model.TypeIncome, Reason: reason, Amount: amount}
}
