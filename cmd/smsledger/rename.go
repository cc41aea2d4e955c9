package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smsledger/internal/cli"
)

func renameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Manage merchant renames",
		Long: `Renames replace a parsed merchant name with the one you prefer.
Names are matched ignoring case, so "AMZN MKTP" also renames "amzn mktp".`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <original> <new>",
		Short: "Rename a merchant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.SetMerchantRename(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to save rename: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s → %s", args[0], args[1])))
			return err
		},
	})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List merchant renames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			rules, err := store.GetMerchantRenameRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to load renames: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, rules)
			}
			if len(rules) == 0 {
				_, err := fmt.Fprintln(out, cli.FormatInfo("No merchant renames yet"))
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			if _, err := fmt.Fprintf(tw, "%s\t%s\n",
				cli.HeaderStyle.Render("Original"),
				cli.HeaderStyle.Render("Renamed to")); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
			if _, err := fmt.Fprintf(tw, "%s\t%s\n", strings.Repeat("─", 24), strings.Repeat("─", 24)); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
			for _, r := range rules {
				if _, err := fmt.Fprintf(tw, "%s\t%s\n", r.OriginalName, r.NewName); err != nil {
					return fmt.Errorf("failed to write rename row: %w", err)
				}
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().Bool("json", false, "output as JSON")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <original>",
		Short: "Remove a merchant rename",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.DeleteMerchantRename(ctx, args[0]); err != nil {
				return notFoundAsUserError(err, fmt.Sprintf("no rename for %q", args[0]))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed rename for %s", args[0])))
			return err
		},
	})

	return cmd
}
