// Package ledger owns the in-memory transaction log that analytics reads from.
//
// The Service keeps an ordered, newest-first snapshot in sync with its Repository.
// Readers always get a copy; every mutation persists first, then swaps the snapshot
// and notifies subscribers with the new copy.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/notify"
	"github.com/google/uuid"
)

// ErrNotFound is returned when an id does not name a transaction in the ledger.
var ErrNotFound = errors.New("transaction not found")

// Repository is the persistence the ledger writes through.
type Repository interface {
	GetTransactions(ctx context.Context) ([]model.Transaction, error)
	SaveTransactions(ctx context.Context, txns []model.Transaction) (int, error)
	UpsertTransaction(ctx context.Context, txn model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// Service is safe for concurrent use.
type Service struct {
	repo    Repository
	changes *notify.Hub[[]model.Transaction]
	newID   func() string
	txns    []model.Transaction
	mu      sync.RWMutex
	writeMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces uuid generation, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// Open loads the current log from repo.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Service, error) {
	s := &Service{
		repo:    repo,
		changes: notify.NewHub[[]model.Transaction](),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the snapshot with what the repository holds now.
func (s *Service) Reload(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	txns, err := s.repo.GetTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	sortNewestFirst(txns)
	s.swap(txns)
	return nil
}

// Snapshot returns a copy of the log, newest first.
func (s *Service) Snapshot() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Transaction(nil), s.txns...)
}

// Len returns the number of transactions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txns)
}

// Get returns one transaction by id.
func (s *Service) Get(id string) (model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.txns, id)
	if i < 0 {
		return model.Transaction{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return s.txns[i], nil
}

// Add records a new transaction. A fresh id is assigned when txn.ID is empty.
func (s *Service) Add(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	if strings.TrimSpace(txn.ID) == "" {
		txn.ID = s.newID()
	}
	if txn.Type == model.TypeIncome {
		txn.Necessity = model.NecessityNone
	}
	if err := txn.Validate(); err != nil {
		return model.Transaction{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Snapshot()
	if indexOf(current, txn.ID) >= 0 {
		return model.Transaction{}, fmt.Errorf("%w: duplicate id %s", model.ErrInvalidTransaction, txn.ID)
	}
	if err := s.repo.UpsertTransaction(ctx, txn); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	// New records go ahead of existing ones on the same date.
	next := append([]model.Transaction{txn}, current...)
	sortNewestFirst(next)
	s.swap(next)

	slog.Debug("Added transaction", "id", txn.ID, "type", txn.Type, "amount", txn.Amount)
	return txn, nil
}

// Update merges upd over the transaction with the given id and persists the result.
func (s *Service) Update(ctx context.Context, id string, upd model.TransactionUpdate) (model.Transaction, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Snapshot()
	i := indexOf(current, id)
	if i < 0 {
		return model.Transaction{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if upd.IsEmpty() {
		return current[i], nil
	}

	updated := upd.Apply(current[i])
	if err := updated.Validate(); err != nil {
		return model.Transaction{}, err
	}
	if err := s.repo.UpsertTransaction(ctx, updated); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to update transaction: %w", err)
	}

	current[i] = updated
	sortNewestFirst(current)
	s.swap(current)

	slog.Debug("Updated transaction", "id", id)
	return updated, nil
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Snapshot()
	i := indexOf(current, id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.swap(append(current[:i], current[i+1:]...))
	slog.Debug("Deleted transaction", "id", id)
	return nil
}

// Import stores a batch, skipping ids already present, and returns how many were new.
func (s *Service) Import(ctx context.Context, txns []model.Transaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}
	batch := make([]model.Transaction, len(txns))
	for i, txn := range txns {
		if strings.TrimSpace(txn.ID) == "" {
			txn.ID = s.newID()
		}
		batch[i] = txn
	}

	inserted, err := s.repo.SaveTransactions(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to import transactions: %w", err)
	}
	if err := s.Reload(ctx); err != nil {
		return inserted, err
	}
	slog.Info("Imported transactions", "received", len(txns), "inserted", inserted)
	return inserted, nil
}

// Subscribe registers fn to receive a copy of the log after every change.
func (s *Service) Subscribe(fn func([]model.Transaction)) (unsubscribe func()) {
	return s.changes.Subscribe(fn)
}

// swap installs txns as the snapshot and publishes a copy. Callers hold writeMu.
func (s *Service) swap(txns []model.Transaction) {
	s.mu.Lock()
	s.txns = txns
	s.mu.Unlock()
	s.changes.Publish(append([]model.Transaction(nil), txns...))
}

func indexOf(txns []model.Transaction, id string) int {
	for i := range txns {
		if txns[i].ID == id {
			return i
		}
	}
	return -1
}

func sortNewestFirst(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.After(txns[j].Date)
	})
}
