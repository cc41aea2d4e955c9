package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
)

func ignoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage ignore rules",
		Long: `Ignore rules drop messages before any parsing happens.

A sender rule matches the sender address exactly (ignoring case). A phrase rule
matches when the phrase appears anywhere in the body. Built-in phrase rules cover
declines, mandates and payment reminders; they can be disabled but not deleted.`,
	}

	cmd.AddCommand(ignoreAddCmd())
	cmd.AddCommand(ignoreListCmd())
	cmd.AddCommand(ignoreToggleCmd("enable", true))
	cmd.AddCommand(ignoreToggleCmd("disable", false))
	cmd.AddCommand(ignoreDeleteCmd())

	return cmd
}

func ignoreAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Add an ignore rule",
		Long: `Add an ignore rule.

Examples:
  smsledger ignore add "cashback offer"
  smsledger ignore add --type sender VM-OFFERS`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typeFlag, _ := cmd.Flags().GetString("type")

			ruleType, err := model.ParseIgnoreRuleType(typeFlag)
			if err != nil {
				return common.NewUserError("invalid --type, expected sender or body_phrase", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			rule := &model.IgnoreRule{Type: ruleType, Pattern: args[0], IsEnabled: true}
			if err := store.CreateIgnoreRule(ctx, rule); err != nil {
				switch {
				case errors.Is(err, common.ErrDuplicateEntry):
					return common.NewUserError(fmt.Sprintf("an ignore rule for %q already exists", args[0]), err)
				case errors.Is(err, common.ErrInvalidRule):
					return common.NewUserError("invalid ignore rule", err)
				}
				return fmt.Errorf("failed to save ignore rule: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created ignore rule %d", rule.ID)))
			return err
		},
	}
	cmd.Flags().StringP("type", "t", "body_phrase", "rule type: sender or body_phrase")
	return cmd
}

func ignoreListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ignore rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			rules, err := store.GetIgnoreRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to load ignore rules: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, rules)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Pattern"),
				cli.HeaderStyle.Render("Status")); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				strings.Repeat("─", 4),
				strings.Repeat("─", 11),
				strings.Repeat("─", 24),
				strings.Repeat("─", 16)); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
			for _, r := range rules {
				if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Type, r.Pattern, ignoreStatus(r)); err != nil {
					return fmt.Errorf("failed to write rule row: %w", err)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func ignoreStatus(r model.IgnoreRule) string {
	status := "enabled"
	if !r.IsEnabled {
		status = "disabled"
	}
	if r.IsDefault {
		status += " (built-in)"
	}
	return status
}

func ignoreToggleCmd(verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " an ignore rule",
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

			if err := store.SetIgnoreRuleEnabled(ctx, id, enabled); err != nil {
				return notFoundAsUserError(err, fmt.Sprintf("no ignore rule with ID %d", id))
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Ignore rule %d %sd", id, verb)))
			return err
		},
	}
}

func ignoreDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an ignore rule",
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

			if err := store.DeleteIgnoreRule(ctx, id); err != nil {
				if errors.Is(err, common.ErrDefaultRuleProtected) {
					return common.NewUserError(
						fmt.Sprintf("rule %d is built in; use 'smsledger ignore disable %d' instead", id, id), err)
				}
				return notFoundAsUserError(err, fmt.Sprintf("no ignore rule with ID %d", id))
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted ignore rule %d", id)))
			return err
		},
	}
}
