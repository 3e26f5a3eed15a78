package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/notify"
)

// Well-known kv keys.
const (
	KeyDashboardLayout = "dashboard_layout"
	KeyPaymentModes    = "payment_modes"
)

// GetBlob returns the value stored under key. ok is false when the key is absent.
func (s *SQLiteStorage) GetBlob(ctx context.Context, key string) (value []byte, ok bool, err error) {
	if err := validateContext(ctx); err != nil {
		return nil, false, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, false, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// PutBlob replaces the value stored under key in a single transaction.
func (s *SQLiteStorage) PutBlob(ctx context.Context, key string, value []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("%w: value", ErrNilParameter)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		return nil
	})
}

// GetPaymentModes returns the configured payment modes, or the defaults if none were saved.
func (s *SQLiteStorage) GetPaymentModes(ctx context.Context) ([]model.PaymentMode, error) {
	raw, ok, err := s.GetBlob(ctx, KeyPaymentModes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append([]model.PaymentMode(nil), model.DefaultPaymentModes...), nil
	}
	var modes []model.PaymentMode
	if err := json.Unmarshal(raw, &modes); err != nil {
		return nil, fmt.Errorf("failed to decode payment modes: %w", err)
	}
	return modes, nil
}

// SavePaymentModes replaces the payment mode list.
func (s *SQLiteStorage) SavePaymentModes(ctx context.Context, modes []model.PaymentMode) error {
	raw, err := json.Marshal(modes)
	if err != nil {
		return fmt.Errorf("failed to encode payment modes: %w", err)
	}
	return s.PutBlob(ctx, KeyPaymentModes, raw)
}

// LayoutStore keeps the dashboard layout as one JSON blob in the kv table.
// Watchers registered on the same LayoutStore hear about every successful save.
type LayoutStore struct {
	storage *SQLiteStorage
	changes *notify.Hub[struct{}]
}

// NewLayoutStore creates a layout store backed by s.
func NewLayoutStore(s *SQLiteStorage) *LayoutStore {
	return &LayoutStore{storage: s, changes: notify.NewHub[struct{}]()}
}

// Load returns the stored entries, or nil when nothing was saved yet.
func (l *LayoutStore) Load(ctx context.Context) ([]model.LayoutEntry, error) {
	raw, ok, err := l.storage.GetBlob(ctx, KeyDashboardLayout)
	if err != nil || !ok {
		return nil, err
	}
	var entries []model.LayoutEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard layout: %w", err)
	}
	return entries, nil
}

// Save writes entries atomically and notifies watchers.
func (l *LayoutStore) Save(ctx context.Context, entries []model.LayoutEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard layout: %w", err)
	}
	if err := l.storage.PutBlob(ctx, KeyDashboardLayout, raw); err != nil {
		return err
	}
	l.changes.Publish(struct{}{})
	return nil
}

// Watch calls fn after every save made through this store.
func (l *LayoutStore) Watch(fn func()) (cancel func()) {
	return l.changes.Subscribe(func(struct{}) { fn() })
}
