package main

import (
	"fmt"

	"github.com/Veraticus/budgly/internal/cli"
	"github.com/Veraticus/budgly/internal/dashboard"
	"github.com/Veraticus/budgly/internal/privacy"
	"github.com/Veraticus/budgly/internal/tui"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Print the dashboard cards once",
		Long: `Print the dashboard for a period using the saved card layout.
Use "budgly tui" for the interactive version.`,
		RunE: runDashboard,
	}

	cmd.Flags().StringP("period", "p", "", "Period (this-month, last-month, this-year, last-year, all-time)")
	cmd.Flags().IntP("width", "w", dashboard.DefaultWidth, "Render width in columns")
	cmd.Flags().Bool("hide-amounts", false, "Mask every amount")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
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

	periodFlag, _ := cmd.Flags().GetString("period")
	width, _ := cmd.Flags().GetInt("width")
	period, err := a.resolvePeriod(periodFlag)
	if err != nil {
		return err
	}

	formatter := a.formatter
	if hide, _ := cmd.Flags().GetBool("hide-amounts"); hide {
		settings := a.cfg.Privacy
		settings.HideAmounts = true
		formatter = privacy.New(settings)
	}

	view := dashboard.Compose(a.engine, period, formatter, a.ledger.Snapshot(), rec.OrderedVisibleIDs())
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("budgly · "+period.Text()))
	if len(view.Cards) == 0 {
		fmt.Fprintln(out, cli.FormatInfo(`Every card is hidden. Run "budgly layout reset" to show them again.`))
		return nil
	}
	fmt.Fprintln(out, dashboard.NewRenderer(width, dashboard.DefaultStyles()).Render(view.Cards, -1))
	return nil
}

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Long: `Open the interactive dashboard. Move between cards with the arrow keys,
pick one up with space to drag it, press e to choose which cards are shown,
and a to add a transaction. Press ? for every key.`,
		RunE: runTUI,
	}
	cmd.Flags().StringP("period", "p", "", "Initial period")
	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
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

	periodFlag, _ := cmd.Flags().GetString("period")
	period, err := a.resolvePeriod(periodFlag)
	if err != nil {
		return err
	}

	monitor, stopBackground := a.startBackground(ctx)
	defer stopBackground()

	m := tui.New(a.ledger, rec, a.engine,
		tui.WithPeriod(period),
		tui.WithPrivacy(a.cfg.Privacy),
		tui.WithMonitor(monitor),
		tui.WithPaymentModes(a.paymentModes(ctx)),
	)
	return tui.Run(ctx, m)
}
