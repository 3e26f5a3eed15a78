package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/budgly/internal/cli"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/ofx"
	"github.com/Veraticus/budgly/internal/timewindow"
	"github.com/shopspring/decimal"
)

// parseAmount reads a non-negative decimal amount rounded to cents.
func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", model.ErrInvalidTransaction, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", model.ErrInvalidTransaction, s)
	}
	return d.Round(2).InexactFloat64(), nil
}

// parseDate accepts YYYY-MM-DD, "today" and "yesterday" in loc.
func parseDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now.In(loc), nil
	case "yesterday":
		return now.In(loc).AddDate(0, 0, -1), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, want YYYY-MM-DD", model.ErrInvalidTransaction, s)
	}
	return t, nil
}

// paymentModes returns the stored modes, falling back to the defaults on error.
func (a *app) paymentModes(ctx context.Context) []model.PaymentMode {
	modes, err := a.store.GetPaymentModes(ctx)
	if err != nil {
		slog.Warn("Failed to load payment modes, using defaults", "error", err)
		return model.DefaultPaymentModes
	}
	return modes
}

// resolvePeriod parses a --period flag, falling back to the configured default.
func (a *app) resolvePeriod(flag string) (timewindow.Period, error) {
	if flag == "" {
		return a.cfg.Period(), nil
	}
	return timewindow.ParsePeriod(flag)
}

// findTransaction resolves an id or unambiguous id prefix.
func (a *app) findTransaction(prefix string) (model.Transaction, error) {
	txn, ok := cli.MatchID(a.ledger.Snapshot(), prefix)
	if !ok {
		return model.Transaction{}, fmt.Errorf("no single transaction matches %q", prefix)
	}
	return txn, nil
}

func parseStatement(ctx context.Context, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parser.ParseFile(ctx, f)
}
