package pattern

import (
	"fmt"
	"strings"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/extract"
	"github.com/Veraticus/smsledger/internal/model"
)

// FieldCheck reports how one rule regex behaved against a sample body.
type FieldCheck struct {
	Err     error
	Value   string
	Pattern string
	Set     bool
	Matched bool
}

// RuleCheck is the outcome of dry-running a custom rule against a body.
type RuleCheck struct {
	Merchant FieldCheck
	Amount   FieldCheck
	Account  FieldCheck
	Trigger  bool
}

// Succeeds reports whether the rule would win for this body, ignoring other rules.
func (c RuleCheck) Succeeds() bool {
	if !c.Trigger || !c.Amount.Matched {
		return false
	}
	_, ok := extract.ParseAmount(c.Amount.Value)
	return ok
}

// ValidateRule checks that a rule is structurally complete and every regex compiles.
func ValidateRule(rule model.CustomSmsRule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidRule, err)
	}

	fields := []struct {
		pattern *string
		name    string
	}{
		{rule.AmountRegex, "amount"},
		{rule.MerchantRegex, "merchant"},
		{rule.AccountRegex, "account"},
	}
	for _, f := range fields {
		if f.pattern == nil || strings.TrimSpace(*f.pattern) == "" {
			continue
		}
		if _, err := common.CompileInsensitive(*f.pattern); err != nil {
			return fmt.Errorf("%w: %s regex: %w", common.ErrInvalidRule, f.name, err)
		}
	}

	return nil
}

// CheckRule dry-runs every regex of rule against body without consulting other rules.
func CheckRule(rule model.CustomSmsRule, body string) RuleCheck {
	return RuleCheck{
		Trigger:  rule.MatchesTrigger(body),
		Amount:   checkField(rule.AmountRegex, body),
		Merchant: checkField(rule.MerchantRegex, body),
		Account:  checkField(rule.AccountRegex, body),
	}
}

func checkField(pattern *string, body string) FieldCheck {
	if pattern == nil || strings.TrimSpace(*pattern) == "" {
		return FieldCheck{}
	}
	fc := FieldCheck{Set: true, Pattern: *pattern}
	re, err := common.CompileInsensitive(*pattern)
	if err != nil {
		fc.Err = err
		return fc
	}
	fc.Value, fc.Matched = captured(re, body)
	return fc
}
