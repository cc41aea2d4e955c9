// Package model defines the core data structures for the smsledger engine.
package model

import (
	"fmt"
	"strings"
	"time"
)

// CustomSmsRule is a user-authored extraction rule for one recurring SMS template.
// The trigger phrase must appear in a message body (case-insensitive) before any
// of the regexes are tried.
type CustomSmsRule struct {
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	MerchantRegex       *string   `json:"merchant_regex,omitempty"`
	AmountRegex         *string   `json:"amount_regex,omitempty"`
	AccountRegex        *string   `json:"account_regex,omitempty"`
	MerchantNameExample *string   `json:"merchant_name_example,omitempty"`
	AmountExample       *string   `json:"amount_example,omitempty"`
	AccountNameExample  *string   `json:"account_name_example,omitempty"`
	TriggerPhrase       string    `json:"trigger_phrase"`
	SourceSmsBody       string    `json:"source_sms_body"`
	ID                  int64     `json:"id"`
	Priority            int       `json:"priority"`
}

// Validate ensures the rule can ever match something.
func (r *CustomSmsRule) Validate() error {
	if strings.TrimSpace(r.TriggerPhrase) == "" {
		return fmt.Errorf("trigger phrase is required")
	}
	if isBlank(r.AmountRegex) && isBlank(r.MerchantRegex) && isBlank(r.AccountRegex) {
		return fmt.Errorf("at least one of amount, merchant or account regex is required")
	}
	return nil
}

// MatchesTrigger reports whether the trigger phrase occurs in body, ignoring case.
func (r *CustomSmsRule) MatchesTrigger(body string) bool {
	trigger := strings.TrimSpace(r.TriggerPhrase)
	if trigger == "" {
		return false
	}
	return strings.Contains(strings.ToLower(body), strings.ToLower(trigger))
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
