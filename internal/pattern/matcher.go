package pattern

import (
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/extract"
	"github.com/Veraticus/smsledger/internal/model"
)

// Ensure CustomMatcher implements Matcher interface.
var _ Matcher = (*CustomMatcher)(nil)

// CustomMatcher evaluates user extraction rules. It is safe for concurrent use.
type CustomMatcher struct {
	cache  *regexCache
	logger *slog.Logger
}

// NewMatcher creates a matcher whose compiled-regex cache holds cacheSize patterns.
// A nil logger discards rule diagnostics.
func NewMatcher(cacheSize int, logger *slog.Logger) *CustomMatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CustomMatcher{
		cache:  newRegexCache(cacheSize),
		logger: logger,
	}
}

// TryCustomRules returns the first rule, by descending priority, whose trigger
// phrase occurs in the body and whose amount regex yields a positive amount.
func (m *CustomMatcher) TryCustomRules(msg model.SmsMessage, rules []model.CustomSmsRule) *Match {
	for _, rule := range SortRules(rules) {
		if !rule.MatchesTrigger(msg.Body) {
			continue
		}

		amountText, ok := m.apply(rule.ID, rule.AmountRegex, msg.Body)
		if !ok {
			continue
		}
		amount, ok := extract.ParseAmount(amountText)
		if !ok {
			m.logger.Debug("custom rule amount did not parse",
				"rule_id", rule.ID,
				"captured", amountText)
			continue
		}

		match := &Match{RuleID: rule.ID, Amount: amount}
		if v, ok := m.apply(rule.ID, rule.MerchantRegex, msg.Body); ok {
			match.Merchant = &v
		}
		if v, ok := m.apply(rule.ID, rule.AccountRegex, msg.Body); ok {
			match.Account = &v
		}
		return match
	}

	return nil
}

// apply runs one optional rule regex. Compile failures count as no match.
func (m *CustomMatcher) apply(ruleID int64, pattern *string, body string) (string, bool) {
	if pattern == nil || strings.TrimSpace(*pattern) == "" {
		return "", false
	}
	re, err := m.cache.get(ruleID, *pattern)
	if err != nil {
		m.logger.Debug("skipping custom rule regex",
			"rule_id", ruleID,
			"error", err)
		return "", false
	}
	return captured(re, body)
}

func captured(re *regexp.Regexp, body string) (string, bool) {
	v, ok := common.FirstGroup(re, body)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// SortRules returns a copy of rules ordered by priority (highest first), then ID.
func SortRules(rules []model.CustomSmsRule) []model.CustomSmsRule {
	sorted := make([]model.CustomSmsRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
