package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/budgly/internal/cli"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
	}

	create := &cobra.Command{
		Use:   "create [tag]",
		Short: "Snapshot the database",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBackupCreate,
	}
	create.Flags().StringP("description", "m", "", "Note stored with the backup")

	cmd.AddCommand(create)
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List backups, newest first",
		Args:    cobra.NoArgs,
		RunE:    runBackupList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <tag>",
		Short: "Remove a backup",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackupDelete,
	})

	return cmd
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var tag string
	if len(args) > 0 {
		tag = args[0]
	}
	description, _ := cmd.Flags().GetString("description")

	manager, err := a.store.NewBackupManager()
	if err != nil {
		return err
	}
	info, err := manager.Create(ctx, tag, description)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s Backup %s (%d transactions)",
		cli.BackupIcon, info.ID, info.Transactions)))
	return nil
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	manager, err := a.store.NewBackupManager()
	if err != nil {
		return err
	}
	backups, err := manager.List(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(backups) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No backups yet"))
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(cli.SubtleStyle).
		Headers("TAG", "CREATED", "TXNS", "SIZE", "NOTE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return cli.TableHeaderStyle
			}
			return cli.TableCellStyle
		})
	for _, b := range backups {
		note := b.Description
		if b.IsAuto {
			note = "auto: " + note
		}
		t.Row(b.ID, b.CreatedAt.Local().Format("2006-01-02 15:04"), strconv.Itoa(b.Transactions), formatSize(b.FileSize), note)
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func runBackupDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	manager, err := a.store.NewBackupManager()
	if err != nil {
		return err
	}
	if err := manager.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted backup "+args[0]))
	return nil
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
