// Package connectivity tracks whether the network is reachable so that sync work
// can be skipped while offline.
package connectivity

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/Veraticus/budgly/internal/notify"
)

// DefaultProbeAddr is dialed by the default checker.
const DefaultProbeAddr = "sheets.googleapis.com:443"

// Checker reports whether the network is currently reachable.
type Checker interface {
	Check(ctx context.Context) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) bool

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context) bool { return f(ctx) }

// DialChecker considers the network reachable when a TCP connection to Addr succeeds.
type DialChecker struct {
	Addr    string
	Timeout time.Duration
}

// Check dials Addr once.
func (d DialChecker) Check(ctx context.Context) bool {
	addr := d.Addr
	if addr == "" {
		addr = DefaultProbeAddr
	}
	timeout := d.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Monitor holds the current online state and notifies subscribers when it flips.
type Monitor struct {
	hub    *notify.Hub[bool]
	online atomic.Bool
}

// NewMonitor creates a monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	m := &Monitor{hub: notify.NewHub[bool]()}
	m.online.Store(online)
	return m
}

// Online reports the last known state.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Set records a new state. Subscribers are only called when the state changes.
func (m *Monitor) Set(online bool) {
	if m.online.Swap(online) == online {
		return
	}
	slog.Info("Connectivity changed", "online", online)
	m.hub.Publish(online)
}

// Subscribe registers fn for state changes and returns the function that removes it.
func (m *Monitor) Subscribe(fn func(online bool)) (unsubscribe func()) {
	return m.hub.Subscribe(fn)
}

// Run probes with c every interval until ctx is done. The first probe is immediate.
func (m *Monitor) Run(ctx context.Context, c Checker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.Set(c.Check(ctx))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
