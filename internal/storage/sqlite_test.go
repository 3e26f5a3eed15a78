package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStorage opens a migrated in-memory database.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func createFileStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "budgly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testTxn(id string, day int, typ model.TransactionType, amount float64) model.Transaction {
	return model.Transaction{
		ID:          id,
		Date:        time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC),
		Type:        typ,
		Reason:      "Reason " + id,
		PaymentMode: "Cash",
		Amount:      amount,
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	store := createFileStorage(t)

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	var tables int
	err = store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('transactions', 'kv')
	`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)
}

func TestMigrate_NilContext(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	//nolint:staticcheck // exercising the nil guard
	assert.ErrorIs(t, store.Migrate(nil), ErrNilContext)
}

func TestBlob(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, ok, err := store.GetBlob(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.PutBlob(ctx, "k", []byte(`{"a":1}`)))
	require.NoError(t, store.PutBlob(ctx, "k", []byte(`{"a":2}`)))

	got, ok, err := store.GetBlob(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":2}`, string(got))

	assert.ErrorIs(t, store.PutBlob(ctx, "", []byte("x")), ErrEmptyString)
	assert.ErrorIs(t, store.PutBlob(ctx, "k", nil), ErrNilParameter)
}

func TestPaymentModes(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	modes, err := store.GetPaymentModes(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPaymentModes, modes)

	custom := []model.PaymentMode{{ID: "x", Name: "UPI", Shorthand: "U"}}
	require.NoError(t, store.SavePaymentModes(ctx, custom))

	modes, err = store.GetPaymentModes(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, modes)
}

func TestLayoutStore(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	layouts := NewLayoutStore(store)

	entries, err := layouts.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, entries)

	notified := 0
	cancel := layouts.Watch(func() { notified++ })

	want := []model.LayoutEntry{
		{ID: "spent", Order: 1, Visible: true},
		{ID: "income", Order: 0, Visible: false},
	}
	require.NoError(t, layouts.Save(ctx, want))
	assert.Equal(t, 1, notified)

	got, err := layouts.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, ok, err := store.GetBlob(ctx, KeyDashboardLayout)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"spent","order":1,"visible":true},{"id":"income","order":0,"visible":false}]`, string(raw))

	cancel()
	require.NoError(t, layouts.Save(ctx, want))
	assert.Equal(t, 1, notified)
}

func TestLayoutStore_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	require.NoError(t, store.PutBlob(ctx, KeyDashboardLayout, []byte("not json")))

	_, err := NewLayoutStore(store).Load(ctx)
	assert.Error(t, err)
}

func TestBackupManager(t *testing.T) {
	ctx := context.Background()
	store := createFileStorage(t)
	_, err := store.SaveTransactions(ctx, []model.Transaction{testTxn("a", 1, model.TypeExpense, 5)})
	require.NoError(t, err)

	backups, err := store.NewBackupManager()
	require.NoError(t, err)

	info, err := backups.Create(ctx, "before-import", "manual")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Transactions)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)

	_, err = backups.Create(ctx, "before-import", "again")
	assert.ErrorIs(t, err, ErrBackupExists)

	_, err = backups.Create(ctx, "../escape", "")
	assert.ErrorIs(t, err, ErrInvalidTag)

	copyStore, err := NewSQLiteStorage(info.Path)
	require.NoError(t, err)
	count, err := copyStore.GetTransactionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NoError(t, copyStore.Close())

	list, err := backups.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "before-import", list[0].ID)

	require.NoError(t, backups.Delete(ctx, "before-import"))
	assert.ErrorIs(t, backups.Delete(ctx, "before-import"), ErrBackupNotFound)
}

func TestBackupManager_InMemory(t *testing.T) {
	_, err := createTestStorage(t).NewBackupManager()
	assert.Error(t, err)
}
