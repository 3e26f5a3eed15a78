package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/budgly/internal/classification"
	"github.com/Veraticus/budgly/internal/cli"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/ofx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import transactions from OFX or QFX files exported from your bank.
Debits become expenses and credits become income. Re-importing a statement
skips transactions that are already stored.

Examples:
  budgly import ~/Downloads/checking_2024_03.qfx
  budgly import ~/Downloads/*.qfx --mode cc`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Preview import without saving")
	cmd.Flags().String("mode", "", "Payment mode for every imported transaction")
	cmd.Flags().Bool("no-backup", false, "Skip the automatic backup before importing")
	cmd.Flags().Bool("no-classify", false, "Do not suggest need/want or drop transfers")
	cmd.Flags().Bool("keep-transfers", false, "Keep transfers between your own accounts")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	modeFlag, _ := cmd.Flags().GetString("mode")
	noBackup, _ := cmd.Flags().GetBool("no-backup")
	noClassify, _ := cmd.Flags().GetBool("no-classify")
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(out, "Import interrupted, nothing was saved from unfinished files")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	parser := ofx.NewParser()
	if modeFlag != "" {
		parser.ModeOverride = model.ResolvePaymentMode(a.paymentModes(ctx), modeFlag)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reading statements...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
	)

	var parsed []model.Transaction
	seen := make(map[string]bool)
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		txns, err := parseStatement(ctx, parser, path)
		if err != nil {
			slog.Error("Failed to parse statement", "file", path, "error", err)
		}
		for _, txn := range txns {
			if !seen[txn.ID] {
				seen[txn.ID] = true
				parsed = append(parsed, txn)
			}
		}
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
	if handler.WasInterrupted() {
		return ctx.Err()
	}
	if len(parsed) == 0 {
		return errors.New("no transactions found in the given files")
	}

	if a.cfg.Import.Classify && !noClassify {
		detector, err := classification.NewDetector(a.cfg.Import.Patterns())
		if err != nil {
			return err
		}
		keepTransfers, _ := cmd.Flags().GetBool("keep-transfers")
		var sum classification.Summary
		parsed, sum = detector.Apply(parsed, a.cfg.Import.MinConfidence, keepTransfers || a.cfg.Import.KeepTransfers)
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Suggested need/want for %d expenses, found %d transfers", sum.Classified, sum.Transfers)))
	}

	if dryRun {
		fmt.Fprintln(out, cli.TransactionTable(parsed, a.formatter))
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions parsed, nothing saved", len(parsed))))
		return nil
	}

	if !noBackup {
		backups, err := a.store.NewBackupManager()
		if err != nil {
			return err
		}
		if _, err := backups.Auto(ctx, "import"); err != nil {
			return fmt.Errorf("failed to back up before import: %w", err)
		}
	}

	inserted, err := a.ledger.Import(ctx, parsed)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.RenderBox("Import complete", strings.Join([]string{
		fmt.Sprintf("Files:     %d", len(files)),
		fmt.Sprintf("Parsed:    %d", len(parsed)),
		cli.FormatSuccess(fmt.Sprintf("Imported %d new transactions", inserted)),
		cli.SubtleStyle.Render(fmt.Sprintf("%d already present", len(parsed)-inserted)),
	}, "\n")))
	return nil
}

// expandFiles resolves globs, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, errors.New("no files found to import")
	}
	return files, nil
}
