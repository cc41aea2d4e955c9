package model

import (
	"fmt"
	"strings"
)

// IgnoreRuleType selects how an IgnoreRule pattern is compared against a message.
type IgnoreRuleType string

// Ignore rule types.
const (
	IgnoreSender     IgnoreRuleType = "SENDER"
	IgnoreBodyPhrase IgnoreRuleType = "BODY_PHRASE"
)

// ParseIgnoreRuleType converts user input such as "sender" or "body_phrase" into a rule type.
func ParseIgnoreRuleType(s string) (IgnoreRuleType, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case string(IgnoreSender):
		return IgnoreSender, nil
	case string(IgnoreBodyPhrase), "BODY", "PHRASE":
		return IgnoreBodyPhrase, nil
	default:
		return "", fmt.Errorf("unknown ignore rule type %q", s)
	}
}

// IgnoreRule marks messages as non-transactions, either by sender or by a body phrase.
type IgnoreRule struct {
	Type      IgnoreRuleType `json:"type"`
	Pattern   string         `json:"pattern"`
	ID        int64          `json:"id"`
	IsEnabled bool           `json:"is_enabled"`
	IsDefault bool           `json:"is_default"`
}

// Validate ensures the rule has a known type and a usable pattern.
func (r *IgnoreRule) Validate() error {
	if r.Type != IgnoreSender && r.Type != IgnoreBodyPhrase {
		return fmt.Errorf("invalid ignore rule type %q", r.Type)
	}
	pattern := strings.TrimSpace(r.Pattern)
	if pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	if r.Type == IgnoreSender && pattern == "*" {
		return fmt.Errorf("sender pattern %q would ignore every message", r.Pattern)
	}
	return nil
}
