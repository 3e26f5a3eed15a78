package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/budgly/internal/cli"
	"github.com/Veraticus/budgly/internal/common"
	"github.com/Veraticus/budgly/internal/config"
	"github.com/Veraticus/budgly/internal/connectivity"
	"github.com/Veraticus/budgly/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Push every transaction to Google Sheets",
		Long: `Replace the contents of the configured sheet with the full transaction log.
When no spreadsheet id is configured a new spreadsheet is created.

Run "budgly export auth" once to authorize with OAuth2, or set
sheets.service_account_path to use a service account.`,
		RunE: runExport,
	}

	cmd.Flags().String("sheet-url", "", "Spreadsheet URL or id to write to")
	cmd.Flags().Bool("force", false, "Export even if the connectivity check fails")
	cmd.AddCommand(exportAuthCmd())

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return common.NewUserError(`Google Sheets is not configured; run "budgly export auth" first`, err)
	}
	if url, _ := cmd.Flags().GetString("sheet-url"); url != "" {
		id, ok := sheets.ExtractSheetID(url)
		if !ok {
			return fmt.Errorf("not a spreadsheet URL or id: %q", url)
		}
		sheetsCfg.SpreadsheetID = id
	}
	sheetsCfg.TimeZone = a.cfg.Dashboard.TimeZone

	checker := connectivity.DialChecker{Addr: a.cfg.Connectivity.CheckAddr, Timeout: a.cfg.Connectivity.Timeout}
	online := func() bool { return checker.Check(ctx) }
	if force, _ := cmd.Flags().GetBool("force"); force {
		online = func() bool { return true }
	}

	writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default(), sheets.WithOnline(online))
	if err != nil {
		return err
	}
	res, err := writer.Export(ctx, a.ledger.Snapshot())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Skipped {
		fmt.Fprintln(out, cli.FormatWarning("Offline, nothing was exported. Try again later or pass --force."))
		return nil
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %d rows", res.Rows)))
	fmt.Fprintln(out, cli.SubtleStyle.Render("https://docs.google.com/spreadsheets/d/"+res.SpreadsheetID))
	return nil
}

func exportAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize budgly to write to Google Sheets",
		Long: `Open the Google consent page and store the resulting token.
Requires sheets.client_id and sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID
and GOOGLE_SHEETS_CLIENT_SECRET).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheetsCfg := sheets.DefaultConfig()
			if loaded, err := config.LoadSheetsConfig(viper.GetViper()); err == nil {
				sheetsCfg = *loaded
			} else {
				sheetsCfg.ClientID = viper.GetString("sheets.client_id")
				sheetsCfg.ClientSecret = viper.GetString("sheets.client_secret")
				sheetsCfg.TokenFile = config.ExpandPath(viper.GetString("sheets.token_file"))
			}
			if sheetsCfg.TokenFile == "" {
				sheetsCfg.TokenFile = filepath.Join(config.DefaultConfigDir(), "google-token.json")
			}

			out := cmd.OutOrStdout()
			_, err := sheets.Authenticate(cmd.Context(), sheetsCfg, func(url string) {
				fmt.Fprintln(out, cli.FormatInfo("Open this URL in your browser to authorize budgly:"))
				fmt.Fprintln(out, url)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess("Saved Google token to "+sheetsCfg.TokenFile))
			return nil
		},
	}
}
