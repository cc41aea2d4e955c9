package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/service"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [body...]",
		Short: "Parse a single SMS",
		Long: `Parse one SMS and print the transaction it describes.

The body is taken from the arguments, or from stdin when none are given.
Stored custom rules, ignore rules and renames are applied unless --no-rules
is set.

Examples:
  smsledger parse --sender AM-HDFCBK "Rs 750.50 debited from a/c xx9922 at Amazon"
  pbpaste | smsledger parse --sender JD-SBICRD-S --json`,
		RunE: runParse,
	}

	cmd.Flags().StringP("sender", "s", "", "SMS sender address, e.g. AM-HDFCBK")
	cmd.Flags().Bool("json", false, "print the result as JSON")
	cmd.Flags().Bool("no-rules", false, "ignore stored rules and use only the built-in heuristics")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sender, _ := cmd.Flags().GetString("sender")
	asJSON, _ := cmd.Flags().GetBool("json")
	noRules, _ := cmd.Flags().GetBool("no-rules")

	body := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read message from stdin: %w", err)
		}
		body = string(data)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return common.NewUserError("nothing to parse: pass the SMS body as arguments or on stdin", nil)
	}

	p, err := newParser()
	if err != nil {
		return err
	}

	snap := &service.RuleSnapshot{}
	if !noRules {
		store, err := initStorage(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer closeStorage(store)

		if snap, err = store.Snapshot(ctx); err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}
	}

	msg := model.SmsMessage{Sender: sender, Body: body}
	txn := p.Parse(msg, snap.Renames, snap.CustomRules, snap.IgnoreRules)

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, txn)
	}
	if txn == nil {
		_, err := fmt.Fprintln(out, cli.FormatWarning("Not a transaction"))
		return err
	}
	_, err = fmt.Fprintln(out, cli.RenderBox("Transaction", describeTransaction(txn)))
	return err
}

func describeTransaction(txn *model.PotentialTransaction) string {
	lines := []string{
		"Type:     " + string(txn.TransactionType),
		"Amount:   " + cli.FormatAmount(txn.Amount.StringFixed(2), txn.TransactionType == model.TypeIncome),
		"Merchant: " + txn.Merchant(),
	}
	if txn.DetectedCurrencyCode != nil {
		lines = append(lines, "Currency: "+*txn.DetectedCurrencyCode)
	}
	if acct := txn.PotentialAccount; acct != nil {
		lines = append(lines, fmt.Sprintf("Account:  %s (%s)", acct.FormattedName, acct.AccountType))
	}
	if txn.SmsSignature != nil {
		lines = append(lines, cli.SubtleStyle.Render("Signature: "+(*txn.SmsSignature)[:12]))
	}
	return strings.Join(lines, "\n")
}
