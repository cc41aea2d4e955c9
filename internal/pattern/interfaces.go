// Package pattern evaluates user-authored rules against SMS messages: ignore rules
// that drop a message and custom extraction rules that override the heuristics.
package pattern

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/smsledger/internal/model"
)

// Matcher evaluates custom extraction rules against a message.
type Matcher interface {
	// TryCustomRules returns the first rule, by priority, that yields an amount.
	TryCustomRules(msg model.SmsMessage, rules []model.CustomSmsRule) *Match
}

// Filter decides whether a message is a known non-transaction.
type Filter interface {
	// ShouldIgnore reports whether the message must be dropped before extraction.
	ShouldIgnore(msg model.SmsMessage, rules []model.IgnoreRule) bool
}

// RuleSuggester drafts a custom rule from a sample message.
type RuleSuggester interface {
	Suggest(sample Sample) (model.CustomSmsRule, error)
}

// Match is what a custom rule extracted. Merchant and Account are optional.
type Match struct {
	Merchant *string
	Account  *string
	Amount   decimal.Decimal
	RuleID   int64
}
