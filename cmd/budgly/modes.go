package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/budgly/internal/cli"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func modesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "Manage payment modes and their shorthands",
		RunE:  runModesList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show payment modes",
		Args:  cobra.NoArgs,
		RunE:  runModesList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <shorthand>",
		Short: "Add a payment mode",
		Long: `Add a payment mode. The shorthand is what you type after @ in quick add
or pass to --mode, e.g. "budgly modes add 'Amex Gold' AG".`,
		Args: cobra.ExactArgs(2),
		RunE: runModesAdd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "remove <name-or-shorthand>",
		Aliases: []string{"rm"},
		Short:   "Remove a payment mode",
		Args:    cobra.ExactArgs(1),
		RunE:    runModesRemove,
	})

	return cmd
}

func runModesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	modes, err := a.store.GetPaymentModes(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, m := range modes {
		fmt.Fprintf(out, "%s %s\n", cli.TableHeaderStyle.Render(fmt.Sprintf("@%-4s", m.Shorthand)), m.Name)
	}
	return nil
}

func runModesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	name, shorthand := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	if name == "" || shorthand == "" || strings.ContainsAny(shorthand, " \t@#") {
		return fmt.Errorf("invalid payment mode %q / %q", name, shorthand)
	}

	modes, err := a.store.GetPaymentModes(ctx)
	if err != nil {
		return err
	}
	for _, m := range modes {
		if strings.EqualFold(m.Name, name) || strings.EqualFold(m.Shorthand, shorthand) {
			return fmt.Errorf("payment mode %q (@%s) already exists", m.Name, m.Shorthand)
		}
	}

	modes = append(modes, model.PaymentMode{ID: uuid.NewString(), Name: name, Shorthand: shorthand})
	if err := a.store.SavePaymentModes(ctx, modes); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (@%s)", name, shorthand)))
	return nil
}

func runModesRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	modes, err := a.store.GetPaymentModes(ctx)
	if err != nil {
		return err
	}
	kept := modes[:0]
	var removed *model.PaymentMode
	for _, m := range modes {
		if removed == nil && (strings.EqualFold(m.Name, args[0]) || strings.EqualFold(m.Shorthand, args[0])) {
			removed = &m
			continue
		}
		kept = append(kept, m)
	}
	if removed == nil {
		return fmt.Errorf("no payment mode named %q", args[0])
	}
	if err := a.store.SavePaymentModes(ctx, kept); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Removed "+removed.Name))
	return nil
}
