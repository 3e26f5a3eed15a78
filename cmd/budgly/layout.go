package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Veraticus/budgly/internal/cli"
	"github.com/Veraticus/budgly/internal/dashboard"
	"github.com/Veraticus/budgly/internal/layout"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/spf13/cobra"
)

func layoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Arrange the dashboard cards",
		Long: `Show, reorder, hide and reveal dashboard cards. Changes are saved to the
configured layout backend and picked up by running dashboards.`,
		RunE: runLayoutList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show every card with its position and visibility",
		RunE:  runLayoutList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reorder <id...>",
		Short: "Place the given visible cards in this order",
		Long: `Place the given cards in the given order. Cards you do not name keep
their slots, so "budgly layout reorder streak spent" swaps just those two.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withLayout(func(ctx context.Context, rec *layout.Reconciler, args []string) error {
			if err := checkCardIDs(args); err != nil {
				return err
			}
			return rec.Reorder(ctx, args)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "hide <id>",
		Short: "Hide a card",
		Args:  cobra.ExactArgs(1),
		RunE: withLayout(func(ctx context.Context, rec *layout.Reconciler, args []string) error {
			return rec.SetVisible(ctx, args[0], false)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a hidden card",
		Args:  cobra.ExactArgs(1),
		RunE: withLayout(func(ctx context.Context, rec *layout.Reconciler, args []string) error {
			return rec.SetVisible(ctx, args[0], true)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default order with every card visible",
		Args:  cobra.NoArgs,
		RunE: withLayout(func(ctx context.Context, rec *layout.Reconciler, _ []string) error {
			return rec.Reset(ctx)
		}),
	})

	return cmd
}

// withLayout runs fn against the layout and prints the result.
func withLayout(fn func(ctx context.Context, rec *layout.Reconciler, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
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
		if err := fn(ctx, rec, args); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Layout saved"))
		printLayout(cmd.OutOrStdout(), rec)
		return nil
	}
}

// checkCardIDs rejects ids the dashboard does not know, which the reconciler
// would otherwise skip without a word.
func checkCardIDs(ids []string) error {
	for _, id := range ids {
		if !dashboard.IsKnown(id) {
			return fmt.Errorf("%w: %q (known cards: %s)", layout.ErrUnknownCard, id, strings.Join(dashboard.IDs(), ", "))
		}
	}
	return nil
}

func runLayoutList(cmd *cobra.Command, _ []string) error {
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
	printLayout(cmd.OutOrStdout(), rec)
	return nil
}

func printLayout(w io.Writer, rec *layout.Reconciler) {
	entries := rec.Entries()
	slices.SortStableFunc(entries, func(a, b model.LayoutEntry) int { return cmp.Compare(a.Order, b.Order) })
	for i, e := range entries {
		mark := "[ ]"
		style := cli.SubtleStyle
		if e.Visible {
			mark = "[x]"
			style = cli.TableCellStyle
		}
		fmt.Fprintln(w, style.Render(fmt.Sprintf("%2d %s %s", i+1, mark, e.ID)))
	}
}
