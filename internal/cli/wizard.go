package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/pattern"
)

// ErrWizardAborted is returned when the user declines the drafted rule.
var ErrWizardAborted = errors.New("rule not saved")

// RuleWizard walks the user through annotating a sample message and drafts a
// custom rule from the answers.
type RuleWizard struct {
	reader    *LineReader
	suggester pattern.RuleSuggester
	out       io.Writer
}

// NewRuleWizard creates a wizard reading answers from in and prompting on out.
func NewRuleWizard(in io.Reader, out io.Writer, suggester pattern.RuleSuggester) *RuleWizard {
	if out == nil {
		out = io.Discard
	}
	if suggester == nil {
		suggester = pattern.NewSuggester(1)
	}
	return &RuleWizard{
		reader:    NewLineReader(in, out),
		suggester: suggester,
		out:       out,
	}
}

// Run prompts for every field of sample that is still empty, drafts the rule
// and asks for confirmation before returning it.
func (w *RuleWizard) Run(ctx context.Context, sample pattern.Sample) (model.CustomSmsRule, error) {
	if strings.TrimSpace(sample.Body) == "" {
		return model.CustomSmsRule{}, fmt.Errorf("sample message is required")
	}

	w.println(RenderBox("Sample message", sample.Body))

	questions := []struct {
		dst      *string
		label    string
		required bool
	}{
		{&sample.TriggerPhrase, "Phrase that identifies this template", true},
		{&sample.AmountExample, "Amount exactly as written", true},
		{&sample.MerchantExample, "Merchant exactly as written (blank to skip)", false},
		{&sample.AccountExample, "Account or card digits (blank to skip)", false},
	}
	for _, q := range questions {
		if strings.TrimSpace(*q.dst) != "" {
			continue
		}
		answer, err := w.reader.Prompt(ctx, q.label, "")
		if err != nil {
			return model.CustomSmsRule{}, err
		}
		if answer == "" && q.required {
			return model.CustomSmsRule{}, fmt.Errorf("%s: answer is required", strings.ToLower(q.label))
		}
		*q.dst = answer
	}

	priority, err := w.reader.Prompt(ctx, "Priority", strconv.Itoa(sample.Priority))
	if err != nil {
		return model.CustomSmsRule{}, err
	}
	if sample.Priority, err = strconv.Atoi(priority); err != nil {
		return model.CustomSmsRule{}, fmt.Errorf("invalid priority %q: %w", priority, err)
	}

	rule, err := w.suggester.Suggest(sample)
	if err != nil {
		return model.CustomSmsRule{}, err
	}

	w.println(RenderBox("Drafted rule", DescribeRule(rule)))

	ok, err := w.reader.Confirm(ctx, "Save this rule?")
	if err != nil {
		return model.CustomSmsRule{}, err
	}
	if !ok {
		return model.CustomSmsRule{}, ErrWizardAborted
	}
	return rule, nil
}

func (w *RuleWizard) println(s string) {
	_, _ = fmt.Fprintln(w.out, s)
}

// DescribeRule renders the fields of a custom rule one per line.
func DescribeRule(rule model.CustomSmsRule) string {
	lines := []string{
		"Trigger:  " + rule.TriggerPhrase,
		"Priority: " + strconv.Itoa(rule.Priority),
	}
	add := func(label string, v *string) {
		if v != nil && *v != "" {
			lines = append(lines, label+*v)
		}
	}
	add("Amount:   ", rule.AmountRegex)
	add("Merchant: ", rule.MerchantRegex)
	add("Account:  ", rule.AccountRegex)
	return strings.Join(lines, "\n")
}
