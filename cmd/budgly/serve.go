package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/budgly/internal/cli"
	"github.com/Veraticus/budgly/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and transactions as a JSON API",
		Long: `Start the HTTP API used by web and mobile front ends. The connectivity probe
and, when sync.enabled is set, the Google Sheets auto sync run alongside it.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (default from server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.openLayout(ctx)
	if err != nil {
		return err
	}

	addr := a.cfg.Server.Addr
	if flag, _ := cmd.Flags().GetString("addr"); flag != "" {
		addr = flag
	}

	_, stopBackground := a.startBackground(ctx)
	defer stopBackground()

	srv := server.New(server.Config{Addr: addr, AllowedOrigins: a.cfg.Server.AllowedOrigins}, server.Deps{
		Ledger:    a.ledger,
		Layout:    rec,
		Engine:    a.engine,
		Formatter: a.formatter,
		Modes:     a.store,
		Period:    a.cfg.Period(),
	})

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Listening on http://"+addr))
	slog.Debug("Serving", "layout_backend", a.cfg.Layout.Backend, "sync", a.cfg.Sync.Enabled)
	return srv.Run(ctx)
}
