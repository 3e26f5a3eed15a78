package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Veraticus/budgly/internal/config"
	"github.com/Veraticus/budgly/internal/connectivity"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/sheets"
	"github.com/spf13/viper"
)

// startBackground runs the connectivity probe and, when sync is enabled, the
// spreadsheet auto sync. The returned func stops both and waits for them.
func (a *app) startBackground(ctx context.Context) (*connectivity.Monitor, func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	monitor := connectivity.NewMonitor(true)
	checker := connectivity.DialChecker{Addr: a.cfg.Connectivity.CheckAddr, Timeout: a.cfg.Connectivity.Timeout}
	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Run(ctx, checker, a.cfg.Connectivity.Interval)
	}()

	var unsubscribe []func()
	if a.cfg.Sync.Enabled {
		if autoSync := a.newAutoSync(ctx, monitor); autoSync != nil {
			unsubscribe = append(unsubscribe,
				a.ledger.Subscribe(func([]model.Transaction) { autoSync.MarkDirty() }),
				monitor.Subscribe(func(online bool) {
					if online {
						autoSync.Kick()
					}
				}),
			)
			wg.Add(1)
			go func() {
				defer wg.Done()
				autoSync.Run(ctx, a.cfg.Sync.Debounce)
			}()
		}
	}

	return monitor, func() {
		for _, u := range unsubscribe {
			u()
		}
		cancel()
		wg.Wait()
	}
}

func (a *app) newAutoSync(ctx context.Context, monitor *connectivity.Monitor) *sheets.AutoSync {
	sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		slog.Warn("Sheets sync is enabled but not configured", "error", err)
		return nil
	}
	writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default(), sheets.WithOnline(monitor.Online))
	if err != nil {
		slog.Warn("Sheets sync disabled", "error", err)
		return nil
	}
	return sheets.NewAutoSync(writer, a.ledger.Snapshot, slog.Default())
}
