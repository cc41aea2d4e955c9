package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smsledger/internal/bank"
	"github.com/Veraticus/smsledger/internal/cli"
)

func banksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "Show the built-in bank sender table",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known banks and their sender codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if _, err := fmt.Fprintf(tw, "%s\t%s\n",
				cli.HeaderStyle.Render("Bank"),
				cli.HeaderStyle.Render("Sender codes")); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
			for _, b := range bank.All() {
				if _, err := fmt.Fprintf(tw, "%s\t%s\n", b.Name, strings.Join(b.Codes, ", ")); err != nil {
					return fmt.Errorf("failed to write bank row: %w", err)
				}
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup <sender> [message]",
		Short: "Resolve the bank behind a sender address",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := ""
			if len(args) == 2 {
				body = args[1]
			}
			out := cmd.OutOrStdout()

			b, ok := bank.Resolve(args[0], body)
			if !ok {
				_, err := fmt.Fprintln(out, cli.FormatWarning(
					fmt.Sprintf("No bank known for %s (short code %s)", args[0], bank.ShortCode(args[0]))))
				return err
			}
			_, err := fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s → %s (logo %s)", args[0], b.Name, b.Logo)))
			return err
		},
	})

	return cmd
}
