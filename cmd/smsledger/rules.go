package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/pattern"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage custom extraction rules",
		Long: `Custom rules teach smsledger message templates the built-in parser misses.

A rule fires when its trigger phrase appears in a message. Its regexes then
capture the amount, merchant and account. Higher priority rules are tried first.`,
	}

	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesShowCmd())
	cmd.AddCommand(rulesPriorityCmd())
	cmd.AddCommand(rulesDeleteCmd())
	cmd.AddCommand(rulesTestCmd())

	return cmd
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a custom rule",
		Long: `Add a custom rule, either from explicit regexes or drafted from a sample message.

Examples:
  # Explicit regexes
  smsledger rules add --trigger "Pluxee Meal" --amount-regex 'Rs\.?\s*([\d,.]+)' --merchant-regex 'at (.+?) on'

  # Draft from a sample by pointing at the values it contains
  smsledger rules add --sample "Rs 120 spent from Pluxee Meal at CAFE X on 01-02" \
    --trigger "Pluxee Meal" --amount-example 120 --merchant-example "CAFE X"

  # Answer the questions interactively
  smsledger rules add --sample "..." --interactive`,
		Args: cobra.NoArgs,
		RunE: runRulesAdd,
	}

	cmd.Flags().String("trigger", "", "phrase that must appear in the message")
	cmd.Flags().String("amount-regex", "", "regex whose first group captures the amount")
	cmd.Flags().String("merchant-regex", "", "regex whose first group captures the merchant")
	cmd.Flags().String("account-regex", "", "regex whose first group captures the account")
	cmd.Flags().Int("priority", 0, "rule priority (higher runs first)")
	cmd.Flags().String("sample", "", "sample message to draft the rule from")
	cmd.Flags().String("amount-example", "", "amount exactly as written in the sample")
	cmd.Flags().String("merchant-example", "", "merchant exactly as written in the sample")
	cmd.Flags().String("account-example", "", "account digits exactly as written in the sample")
	cmd.Flags().BoolP("interactive", "i", false, "prompt for missing sample annotations")

	return cmd
}

func runRulesAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	priority, _ := cmd.Flags().GetInt("priority")
	interactive, _ := cmd.Flags().GetBool("interactive")
	sampleBody := flag("sample")

	var rule model.CustomSmsRule
	switch {
	case sampleBody != "":
		sample := pattern.Sample{
			Body:            sampleBody,
			TriggerPhrase:   flag("trigger"),
			AmountExample:   flag("amount-example"),
			MerchantExample: flag("merchant-example"),
			AccountExample:  flag("account-example"),
			Priority:        priority,
		}
		var err error
		if interactive {
			wizard := cli.NewRuleWizard(cmd.InOrStdin(), out, pattern.NewSuggester(2))
			rule, err = wizard.Run(ctx, sample)
			if errors.Is(err, cli.ErrWizardAborted) {
				_, _ = fmt.Fprintln(out, cli.FormatWarning("Rule not saved"))
				return nil
			}
		} else {
			rule, err = pattern.NewSuggester(2).Suggest(sample)
		}
		if err != nil {
			return common.NewUserError("could not draft a rule from the sample", err)
		}
	case interactive:
		return common.NewUserError("--interactive needs a --sample message", nil)
	default:
		rule = model.CustomSmsRule{
			TriggerPhrase: flag("trigger"),
			AmountRegex:   model.StringPtr(flag("amount-regex")),
			MerchantRegex: model.StringPtr(flag("merchant-regex")),
			AccountRegex:  model.StringPtr(flag("account-regex")),
			Priority:      priority,
		}
	}

	if err := pattern.ValidateRule(rule); err != nil {
		return common.NewUserError("invalid rule", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	if err := store.CreateCustomRule(ctx, &rule); err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created rule %d", rule.ID)))
	return err
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List custom rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			rules, err := store.GetCustomRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rules)
			}
			return writeRulesTable(cmd.OutOrStdout(), rules)
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func writeRulesTable(w io.Writer, rules []model.CustomSmsRule) error {
	if len(rules) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatInfo("No custom rules yet. Add one with 'smsledger rules add'."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Priority"),
		cli.HeaderStyle.Render("Trigger"),
		cli.HeaderStyle.Render("Captures")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 4),
		strings.Repeat("─", 8),
		strings.Repeat("─", 24),
		strings.Repeat("─", 24)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, r := range rules {
		if _, err := fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n",
			r.ID, r.Priority, r.TriggerPhrase, captures(r)); err != nil {
			return fmt.Errorf("failed to write rule row: %w", err)
		}
	}
	return tw.Flush()
}

func captures(r model.CustomSmsRule) string {
	var parts []string
	if r.AmountRegex != nil {
		parts = append(parts, "amount")
	}
	if r.MerchantRegex != nil {
		parts = append(parts, "merchant")
	}
	if r.AccountRegex != nil {
		parts = append(parts, "account")
	}
	return strings.Join(parts, ", ")
}

func rulesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a custom rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			rule, err := store.GetCustomRule(ctx, id)
			if err != nil {
				return notFoundAsUserError(err, fmt.Sprintf("no custom rule with ID %d", id))
			}

			content := cli.DescribeRule(*rule)
			if rule.SourceSmsBody != "" {
				content += "\n\nDrafted from:\n" + rule.SourceSmsBody
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Rule "+strconv.FormatInt(rule.ID, 10), content))
			return err
		},
	}
}

func rulesPriorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <priority>",
		Short: "Change the priority of a custom rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			priority, err := strconv.Atoi(args[1])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid priority %q", args[1]), err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			rule, err := store.GetCustomRule(ctx, id)
			if err != nil {
				return notFoundAsUserError(err, fmt.Sprintf("no custom rule with ID %d", id))
			}
			rule.Priority = priority
			if err := store.UpdateCustomRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to update rule: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(),
				cli.FormatSuccess(fmt.Sprintf("Rule %d now has priority %d", id, priority)))
			return err
		},
	}
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.DeleteCustomRule(ctx, id); err != nil {
				return notFoundAsUserError(err, fmt.Sprintf("no custom rule with ID %d", id))
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted rule %d", id)))
			return err
		},
	}
}

func rulesTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <id> <message>",
		Short: "Dry-run a custom rule against a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			rule, err := store.GetCustomRule(ctx, id)
			if err != nil {
				return notFoundAsUserError(err, fmt.Sprintf("no custom rule with ID %d", id))
			}

			return writeRuleCheck(cmd.OutOrStdout(), pattern.CheckRule(*rule, args[1]))
		},
	}
}

func writeRuleCheck(w io.Writer, check pattern.RuleCheck) error {
	lines := []string{fmt.Sprintf("Trigger:  %s", yesNo(check.Trigger))}
	fields := []struct {
		label string
		fc    pattern.FieldCheck
	}{
		{"Amount:  ", check.Amount},
		{"Merchant:", check.Merchant},
		{"Account: ", check.Account},
	}
	for _, f := range fields {
		switch {
		case !f.fc.Set:
			lines = append(lines, f.label+" (not set)")
		case f.fc.Err != nil:
			lines = append(lines, f.label+" invalid regex: "+f.fc.Err.Error())
		case f.fc.Matched:
			lines = append(lines, fmt.Sprintf("%s %q", f.label, f.fc.Value))
		default:
			lines = append(lines, f.label+" no match")
		}
	}

	verdict := cli.FormatError("Rule would not produce a transaction")
	if check.Succeeds() {
		verdict = cli.FormatSuccess("Rule would produce a transaction")
	}
	lines = append(lines, "", verdict)

	_, err := fmt.Fprintln(w, cli.RenderBox("Rule check", strings.Join(lines, "\n")))
	return err
}

func yesNo(b bool) string {
	if b {
		return "matched"
	}
	return "not found"
}

func notFoundAsUserError(err error, msg string) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(msg, err)
	}
	return err
}
