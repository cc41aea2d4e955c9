package pattern

import (
	"strings"

	"github.com/Veraticus/smsledger/internal/bank"
	"github.com/Veraticus/smsledger/internal/classification"
	"github.com/Veraticus/smsledger/internal/model"
)

// Ensure IgnoreFilter implements Filter interface.
var _ Filter = (*IgnoreFilter)(nil)

// IgnoreFilter combines user ignore rules with the built-in non-transaction classes.
type IgnoreFilter struct {
	detector *classification.PatternDetector
}

// NewIgnoreFilter creates a filter backed by detector, or by the default patterns when nil.
func NewIgnoreFilter(detector *classification.PatternDetector) *IgnoreFilter {
	if detector == nil {
		detector = classification.MustDefault()
	}
	return &IgnoreFilter{detector: detector}
}

// ShouldIgnore reports whether msg is a non-transaction. Disabled rules are skipped.
func (f *IgnoreFilter) ShouldIgnore(msg model.SmsMessage, rules []model.IgnoreRule) bool {
	for _, rule := range rules {
		if rule.IsEnabled && RuleMatches(rule, msg) {
			return true
		}
	}
	return f.detector.Ignored(msg.Body) != nil
}

// RuleMatches applies one ignore rule according to its type.
func RuleMatches(rule model.IgnoreRule, msg model.SmsMessage) bool {
	pattern := strings.TrimSpace(rule.Pattern)
	if pattern == "" {
		return false
	}

	switch rule.Type {
	case model.IgnoreSender:
		return SenderMatches(msg.Sender, pattern)
	case model.IgnoreBodyPhrase:
		return strings.Contains(strings.ToLower(msg.Body), strings.ToLower(pattern))
	default:
		return false
	}
}

// SenderMatches compares a sender address with a SENDER pattern. The pattern may
// name the full address, the bare short code, or a short-code family ending in "*".
func SenderMatches(sender, pattern string) bool {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return false
	}
	code := bank.ShortCode(sender)

	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		prefix = strings.ToUpper(strings.TrimSpace(prefix))
		if prefix == "" {
			return false
		}
		return strings.HasPrefix(strings.ToUpper(sender), prefix) || strings.HasPrefix(code, prefix)
	}

	return strings.EqualFold(sender, pattern) || strings.EqualFold(code, pattern)
}
