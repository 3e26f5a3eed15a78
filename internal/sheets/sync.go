package sheets

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/budgly/internal/model"
)

// Exporter writes the full ledger somewhere.
type Exporter interface {
	Export(ctx context.Context, txns []model.Transaction) (Result, error)
}

// AutoSync exports the ledger a short while after it last changed. Bursts of
// changes collapse into one export, and a failed or skipped export stays pending
// until the next Kick.
type AutoSync struct {
	exporter Exporter
	snapshot func() []model.Transaction
	logger   *slog.Logger
	kick     chan struct{}
	last     Result
	mu       sync.Mutex
	dirty    bool
}

// NewAutoSync creates an AutoSync that reads the ledger through snapshot.
func NewAutoSync(exporter Exporter, snapshot func() []model.Transaction, logger *slog.Logger) *AutoSync {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoSync{
		exporter: exporter,
		snapshot: snapshot,
		logger:   logger,
		kick:     make(chan struct{}, 1),
	}
}

// MarkDirty records a ledger change and schedules an export.
func (a *AutoSync) MarkDirty() {
	a.mu.Lock()
	a.dirty = true
	a.mu.Unlock()
	a.Kick()
}

// Kick schedules an export if one is pending. Call it when connectivity returns.
func (a *AutoSync) Kick() {
	select {
	case a.kick <- struct{}{}:
	default:
	}
}

// Pending reports whether changes have not been exported yet.
func (a *AutoSync) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// Last returns the result of the most recent successful export.
func (a *AutoSync) Last() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Run exports debounce after the latest kick until ctx is done.
func (a *AutoSync) Run(ctx context.Context, debounce time.Duration) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.kick:
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			a.flush(ctx)
		}
	}
}

func (a *AutoSync) flush(ctx context.Context) {
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return
	}
	a.dirty = false
	a.mu.Unlock()

	res, err := a.exporter.Export(ctx, a.snapshot())

	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case err != nil:
		a.dirty = true
		a.logger.Warn("auto sync failed", "error", err)
	case res.Skipped:
		a.dirty = true
	default:
		a.last = res
		a.logger.Debug("auto sync exported", "rows", res.Rows)
	}
}
