package testutil

import (
	"context"
	"fmt"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/service"
)

// Rules is a set of user rules to seed into a test database.
type Rules struct {
	Renames     map[string]string
	CustomRules []model.CustomSmsRule
	IgnoreRules []model.IgnoreRule
}

// Seed writes every rule to store and returns the rules with their assigned IDs.
func (r Rules) Seed(ctx context.Context, store service.Storage) (Rules, error) {
	seeded := Rules{Renames: r.Renames}

	for _, rule := range r.CustomRules {
		if err := store.CreateCustomRule(ctx, &rule); err != nil {
			return Rules{}, fmt.Errorf("custom rule %q: %w", rule.TriggerPhrase, err)
		}
		seeded.CustomRules = append(seeded.CustomRules, rule)
	}

	for _, rule := range r.IgnoreRules {
		if err := store.CreateIgnoreRule(ctx, &rule); err != nil {
			return Rules{}, fmt.Errorf("ignore rule %q: %w", rule.Pattern, err)
		}
		seeded.IgnoreRules = append(seeded.IgnoreRules, rule)
	}

	for original, renamed := range r.Renames {
		if err := store.SetMerchantRename(ctx, original, renamed); err != nil {
			return Rules{}, fmt.Errorf("rename %q: %w", original, err)
		}
	}

	return seeded, nil
}

// RuleBuilder assembles Rules fluently.
type RuleBuilder struct {
	rules Rules
}

// NewRuleBuilder returns an empty builder.
func NewRuleBuilder() *RuleBuilder {
	return &RuleBuilder{rules: Rules{Renames: map[string]string{}}}
}

// WithCustomRule adds a custom rule with the given trigger and regexes.
// Empty regexes are left unset.
func (b *RuleBuilder) WithCustomRule(trigger, amountRegex, merchantRegex string, priority int) *RuleBuilder {
	b.rules.CustomRules = append(b.rules.CustomRules, model.CustomSmsRule{
		TriggerPhrase: trigger,
		AmountRegex:   model.StringPtr(amountRegex),
		MerchantRegex: model.StringPtr(merchantRegex),
		Priority:      priority,
	})
	return b
}

// WithIgnoreSender adds an enabled sender ignore rule.
func (b *RuleBuilder) WithIgnoreSender(sender string) *RuleBuilder {
	return b.withIgnore(model.IgnoreSender, sender, true)
}

// WithIgnorePhrase adds an enabled body phrase ignore rule.
func (b *RuleBuilder) WithIgnorePhrase(phrase string) *RuleBuilder {
	return b.withIgnore(model.IgnoreBodyPhrase, phrase, true)
}

// WithDisabledIgnorePhrase adds a body phrase ignore rule that is switched off.
func (b *RuleBuilder) WithDisabledIgnorePhrase(phrase string) *RuleBuilder {
	return b.withIgnore(model.IgnoreBodyPhrase, phrase, false)
}

func (b *RuleBuilder) withIgnore(t model.IgnoreRuleType, pattern string, enabled bool) *RuleBuilder {
	b.rules.IgnoreRules = append(b.rules.IgnoreRules, model.IgnoreRule{Type: t, Pattern: pattern, IsEnabled: enabled})
	return b
}

// WithRename maps original to renamed.
func (b *RuleBuilder) WithRename(original, renamed string) *RuleBuilder {
	b.rules.Renames[original] = renamed
	return b
}

// Rules returns the assembled rules.
func (b *RuleBuilder) Rules() Rules {
	return b.rules
}
