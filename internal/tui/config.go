package tui

import (
	"context"

	"github.com/Veraticus/budgly/internal/analytics"
	"github.com/Veraticus/budgly/internal/connectivity"
	"github.com/Veraticus/budgly/internal/dashboard"
	"github.com/Veraticus/budgly/internal/layout"
	"github.com/Veraticus/budgly/internal/ledger"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/privacy"
	"github.com/Veraticus/budgly/internal/timewindow"
)

// Ledger is the transaction source the dashboard reads and quick-add writes to.
type Ledger interface {
	Snapshot() []model.Transaction
	Add(ctx context.Context, txn model.Transaction) (model.Transaction, error)
	Subscribe(fn func([]model.Transaction)) (unsubscribe func())
}

var _ Ledger = (*ledger.Service)(nil)

// Config holds TUI configuration.
type Config struct {
	Ledger   Ledger
	Layout   *layout.Reconciler
	Engine   *analytics.Engine
	Privacy  privacy.Settings
	Monitor  *connectivity.Monitor
	Modes    []model.PaymentMode
	Period   timewindow.Period
	Styles   dashboard.Styles
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Period: timewindow.PeriodThisMonth,
		Styles: dashboard.DefaultStyles(),
		Modes:  model.DefaultPaymentModes,
		Width:  dashboard.DefaultWidth,
		Height: 24,
	}
}

// WithPeriod sets the initial period.
func WithPeriod(p timewindow.Period) Option {
	return func(c *Config) {
		c.Period = p
	}
}

// WithPrivacy sets the initial display settings.
func WithPrivacy(s privacy.Settings) Option {
	return func(c *Config) {
		c.Privacy = s
	}
}

// WithMonitor shows connectivity in the header.
func WithMonitor(m *connectivity.Monitor) Option {
	return func(c *Config) {
		c.Monitor = m
	}
}

// WithPaymentModes sets the modes quick-add resolves shorthands against.
func WithPaymentModes(modes []model.PaymentMode) Option {
	return func(c *Config) {
		if len(modes) > 0 {
			c.Modes = modes
		}
	}
}
