package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
)

// Ensure Suggester implements RuleSuggester interface.
var _ RuleSuggester = (*Suggester)(nil)

// Sample is a message the user has annotated with the values it should yield.
type Sample struct {
	Body            string
	TriggerPhrase   string
	MerchantExample string
	AmountExample   string
	AccountExample  string
	Priority        int
}

// Suggester drafts custom rules by anchoring each example on the words around it.
type Suggester struct {
	contextWords int
}

// NewSuggester creates a suggester that anchors on up to contextWords preceding words.
func NewSuggester(contextWords int) *Suggester {
	if contextWords <= 0 {
		contextWords = 1
	}
	return &Suggester{contextWords: contextWords}
}

const (
	amountCapture   = `(\d[\d,]*(?:\.\d{1,2})?)`
	merchantCapture = `(.+?)`
	accountCapture  = `([A-Za-z*]*\d+)`
)

// Suggest builds a rule whose regexes reproduce the sample's examples.
func (s *Suggester) Suggest(sample Sample) (model.CustomSmsRule, error) {
	body := sample.Body
	trigger := strings.TrimSpace(sample.TriggerPhrase)
	if trigger == "" {
		return model.CustomSmsRule{}, fmt.Errorf("%w: trigger phrase is required", common.ErrInvalidRule)
	}
	if !strings.Contains(strings.ToLower(body), strings.ToLower(trigger)) {
		return model.CustomSmsRule{}, fmt.Errorf("%w: trigger phrase %q not found in sample", common.ErrInvalidRule, trigger)
	}
	if strings.TrimSpace(sample.AmountExample) == "" {
		return model.CustomSmsRule{}, fmt.Errorf("%w: amount example is required", common.ErrInvalidRule)
	}

	rule := model.CustomSmsRule{
		TriggerPhrase:       trigger,
		Priority:            sample.Priority,
		SourceSmsBody:       body,
		AmountExample:       model.StringPtr(strings.TrimSpace(sample.AmountExample)),
		MerchantNameExample: model.StringPtr(strings.TrimSpace(sample.MerchantExample)),
		AccountNameExample:  model.StringPtr(strings.TrimSpace(sample.AccountExample)),
	}

	amountRe, err := s.anchor(body, sample.AmountExample, amountCapture)
	if err != nil {
		return model.CustomSmsRule{}, fmt.Errorf("amount: %w", err)
	}
	rule.AmountRegex = &amountRe

	if rule.MerchantNameExample != nil {
		re, err := s.anchor(body, *rule.MerchantNameExample, merchantCapture)
		if err != nil {
			return model.CustomSmsRule{}, fmt.Errorf("merchant: %w", err)
		}
		rule.MerchantRegex = &re
	}

	if rule.AccountNameExample != nil {
		re, err := s.anchor(body, *rule.AccountNameExample, accountCapture)
		if err != nil {
			return model.CustomSmsRule{}, fmt.Errorf("account: %w", err)
		}
		rule.AccountRegex = &re
	}

	if err := verify(rule, body); err != nil {
		return model.CustomSmsRule{}, err
	}
	return rule, nil
}

// anchor builds "<preceding words><capture><terminator>" for the first occurrence of example.
func (s *Suggester) anchor(body, example, capture string) (string, error) {
	example = strings.TrimSpace(example)
	idx := strings.Index(body, example)
	if idx < 0 {
		return "", fmt.Errorf("%w: example %q not found in sample", common.ErrInvalidRule, example)
	}

	before := body[:idx]
	after := body[idx+len(example):]

	var b strings.Builder
	fields := strings.Fields(before)
	if len(fields) > s.contextWords {
		fields = fields[len(fields)-s.contextWords:]
	}
	for i, f := range fields {
		if i > 0 {
			b.WriteString(`\s+`)
		}
		b.WriteString(regexp.QuoteMeta(f))
	}
	if len(fields) > 0 {
		r, _ := utf8.DecodeLastRuneInString(before)
		if unicode.IsSpace(r) {
			b.WriteString(`\s*`)
		}
	}

	b.WriteString(capture)
	b.WriteString(terminator(after))
	return b.String(), nil
}

// terminator describes what follows an example so a lazy capture stops in the right place.
func terminator(after string) string {
	if after == "" {
		return `\s*$`
	}
	r, size := utf8.DecodeRuneInString(after)
	if !unicode.IsSpace(r) {
		return regexp.QuoteMeta(string(r))
	}
	rest := after[size:]
	if next := strings.Fields(rest); len(next) > 0 {
		return `\s+` + regexp.QuoteMeta(next[0])
	}
	return `\s*$`
}

// verify confirms the drafted regexes reproduce the sample's examples.
func verify(rule model.CustomSmsRule, body string) error {
	check := CheckRule(rule, body)
	pairs := []struct {
		want  *string
		field FieldCheck
		name  string
	}{
		{rule.AmountExample, check.Amount, "amount"},
		{rule.MerchantNameExample, check.Merchant, "merchant"},
		{rule.AccountNameExample, check.Account, "account"},
	}
	for _, p := range pairs {
		if p.want == nil {
			continue
		}
		if p.field.Err != nil {
			return fmt.Errorf("%w: %s regex: %w", common.ErrInvalidRule, p.name, p.field.Err)
		}
		if !p.field.Matched || p.field.Value != *p.want {
			return fmt.Errorf("%w: %s regex captured %q, want %q", common.ErrInvalidRule, p.name, p.field.Value, *p.want)
		}
	}
	if !check.Succeeds() {
		return fmt.Errorf("%w: drafted rule does not yield an amount", common.ErrInvalidRule)
	}
	return nil
}
