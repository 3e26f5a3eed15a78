package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/budgly/internal/aggregate"
	"github.com/Veraticus/budgly/internal/cli"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <amount> <reason...>",
		Short: "Record an expense or income",
		Long: `Record a transaction. Expenses are the default; pass --income for money coming in.

Examples:
  budgly add 12.50 lunch with team --want --mode cc
  budgly add 2000 salary --income --date 2024-03-01`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().Bool("income", false, "Record income instead of an expense")
	cmd.Flags().Bool("need", false, "Mark the expense as a need")
	cmd.Flags().Bool("want", false, "Mark the expense as a want")
	cmd.Flags().StringP("mode", "m", "", "Payment mode name or shorthand")
	cmd.Flags().StringP("date", "d", "today", "Date (YYYY-MM-DD, today, yesterday)")
	cmd.MarkFlagsMutuallyExclusive("need", "want")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	income, _ := cmd.Flags().GetBool("income")
	need, _ := cmd.Flags().GetBool("need")
	want, _ := cmd.Flags().GetBool("want")
	mode, _ := cmd.Flags().GetString("mode")
	dateFlag, _ := cmd.Flags().GetString("date")

	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	date, err := parseDate(dateFlag, time.Now(), a.engine.Windows().Location())
	if err != nil {
		return err
	}

	txn := model.Transaction{
		Date:        date,
		Type:        model.TypeExpense,
		Reason:      strings.Join(args[1:], " "),
		PaymentMode: model.ResolvePaymentMode(a.paymentModes(ctx), mode),
		Amount:      amount,
	}
	switch {
	case income:
		txn.Type = model.TypeIncome
	case need:
		txn.Necessity = model.NecessityNeed
	case want:
		txn.Necessity = model.NecessityWant
	}

	saved, err := a.ledger.Add(ctx, txn)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s %s (%s)",
		saved.Type, a.formatter.Amount(saved.Amount), cli.ShortID(saved.ID))))
	return nil
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, newest first",
		RunE:    runList,
	}

	cmd.Flags().StringP("period", "p", "", "Period (this-month, last-month, this-year, last-year, all-time)")
	cmd.Flags().String("type", "", "Only show expense or income")
	cmd.Flags().IntP("limit", "n", 0, "Show at most n transactions")
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	periodFlag, _ := cmd.Flags().GetString("period")
	typeFlag, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	period, err := a.resolvePeriod(periodFlag)
	if err != nil {
		return err
	}
	txns := a.engine.FilterPeriod(period, a.ledger.Snapshot())
	if typeFlag != "" {
		typ, err := model.ParseTransactionType(typeFlag)
		if err != nil {
			return err
		}
		txns = aggregate.FilterByType(txns, typ)
	}
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(txns)
	}
	if len(txns) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No transactions for "+period.Text()))
		return nil
	}
	fmt.Fprintln(out, cli.TransactionTable(txns, a.formatter))
	fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d transactions, %s", len(txns), period.Text())))
	return nil
}

func updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit fields of a transaction",
		Long: `Edit a transaction by id or by an unambiguous id prefix. Only the flags you pass change.

Example:
  budgly update 3f2a --amount 14 --necessity want`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("amount", "", "New amount")
	cmd.Flags().String("reason", "", "New reason")
	cmd.Flags().String("type", "", "New type (expense, income)")
	cmd.Flags().String("necessity", "", "New necessity (need, want, none)")
	cmd.Flags().String("mode", "", "New payment mode")
	cmd.Flags().String("date", "", "New date (YYYY-MM-DD)")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	txn, err := a.findTransaction(args[0])
	if err != nil {
		return err
	}

	upd, err := a.updateFromFlags(cmd)
	if err != nil {
		return err
	}
	if upd.IsEmpty() {
		return errors.New("nothing to update; pass at least one field flag")
	}

	saved, err := a.ledger.Update(ctx, txn.ID, upd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated "+cli.ShortID(saved.ID)))
	fmt.Fprintln(cmd.OutOrStdout(), cli.TransactionTable([]model.Transaction{saved}, a.formatter))
	return nil
}

func (a *app) updateFromFlags(cmd *cobra.Command) (model.TransactionUpdate, error) {
	var upd model.TransactionUpdate
	flags := cmd.Flags()

	if flags.Changed("amount") {
		s, _ := flags.GetString("amount")
		amount, err := parseAmount(s)
		if err != nil {
			return upd, err
		}
		upd.Amount = &amount
	}
	if flags.Changed("reason") {
		s, _ := flags.GetString("reason")
		upd.Reason = &s
	}
	if flags.Changed("type") {
		s, _ := flags.GetString("type")
		typ, err := model.ParseTransactionType(s)
		if err != nil {
			return upd, err
		}
		upd.Type = &typ
	}
	if flags.Changed("necessity") {
		s, _ := flags.GetString("necessity")
		n, err := model.ParseNecessity(s)
		if err != nil {
			return upd, err
		}
		upd.Necessity = &n
	}
	if flags.Changed("mode") {
		s, _ := flags.GetString("mode")
		mode := model.ResolvePaymentMode(a.paymentModes(cmd.Context()), s)
		upd.PaymentMode = &mode
	}
	if flags.Changed("date") {
		s, _ := flags.GetString("date")
		date, err := parseDate(s, time.Now(), a.engine.Windows().Location())
		if err != nil {
			return upd, err
		}
		upd.Date = &date
	}
	return upd, nil
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE:    runDelete,
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	txn, err := a.findTransaction(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Fprintln(out, cli.TransactionTable([]model.Transaction{txn}, a.formatter))
		ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Delete this transaction?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, cli.FormatInfo("Kept"))
			return nil
		}
	}

	if err := a.ledger.Delete(ctx, txn.ID); err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess("Deleted "+cli.ShortID(txn.ID)))
	return nil
}
