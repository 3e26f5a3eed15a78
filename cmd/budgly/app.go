package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/budgly/internal/analytics"
	"github.com/Veraticus/budgly/internal/config"
	"github.com/Veraticus/budgly/internal/dashboard"
	"github.com/Veraticus/budgly/internal/layout"
	"github.com/Veraticus/budgly/internal/ledger"
	"github.com/Veraticus/budgly/internal/privacy"
	"github.com/Veraticus/budgly/internal/redisstore"
	"github.com/Veraticus/budgly/internal/storage"
)

// app bundles the services every command works with.
type app struct {
	cfg       *config.Config
	store     *storage.SQLiteStorage
	ledger    *ledger.Service
	engine    *analytics.Engine
	formatter *privacy.Formatter
	closers   []func()
}

// openApp loads config, opens and migrates the database, and loads the ledger.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a := &app{cfg: cfg, store: store}
	a.closers = append(a.closers, func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	})

	if err := store.Migrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a.ledger, err = ledger.Open(ctx, store)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.engine = analytics.NewEngine(nil, cfg.WindowOptions()...)
	a.formatter = privacy.New(cfg.Privacy)
	return a, nil
}

// openLayout builds the layout reconciler on the configured backend.
func (a *app) openLayout(ctx context.Context) (*layout.Reconciler, error) {
	var store layout.Store
	switch a.cfg.Layout.Backend {
	case config.BackendRedis:
		opts := redisstore.Options{
			URL:     a.cfg.Redis.URL,
			Channel: a.cfg.Redis.Channel,
			Timeout: a.cfg.Redis.Timeout,
		}
		client, err := redisstore.Connect(ctx, opts)
		if err != nil {
			return nil, err
		}
		rs := redisstore.New(client, opts)
		a.closers = append(a.closers, func() {
			rs.Close()
			_ = client.Close()
		})
		store = rs
	default:
		store = storage.NewLayoutStore(a.store)
	}

	rec, err := layout.New(ctx, store, dashboard.IDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard layout: %w", err)
	}
	a.closers = append(a.closers, rec.Close)
	return rec, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
