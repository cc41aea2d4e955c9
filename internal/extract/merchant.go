package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/smsledger/internal/model"
)

// MaxRawMerchantLength caps the span taken after an anchor before normalisation.
const MaxRawMerchantLength = 60

var (
	expenseAnchors = []string{"at", "to", "towards", "on", "from"}
	incomeAnchors  = []string{"from", "by", "at", "to", "on"}

	anchorRes = compileAnchors(append(append([]string{}, expenseAnchors...), "by"))

	// terminatorRe ends a merchant span.
	terminatorRe = regexp.MustCompile(`(?i)\s+(?:on|via|ref|using|for|avl|upi|info|dated|txn|thru|with|is|was|has|debited|credited|from\s+(?:your|a/c|card))\b|\.(?:\s|$)|[,;(\n]|\s-\s|\b\d{1,2}[-/.](?:\d{1,2}|[a-z]{3})[-/.]\d{2,4}\b|\b\d{4}-\d{2}-\d{2}\b`)

	dateOrTimeRe = regexp.MustCompile(`(?i)^(?:\d{1,2}[-/.](?:\d{1,2}|[a-z]{3})|\d{4}-\d{2}|\d{1,2}:\d{2}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d)`)
	maskedRe     = regexp.MustCompile(`(?i)^[x*]{2,}\d`)
	currencyRe   = regexp.MustCompile(`(?i)^(?:rs\.?|inr\.?|₹)(?:\s|\d|$)`)

	// rejectPrefixes start spans that name the reader's own instrument, a currency or an action.
	rejectPrefixes = []string{"your ", "you ", "a/c", "ac ", "acct", "account", "card ", "block ", "dispute", "report "}

	// rejectWords are whole candidates that name a payment rail rather than a party.
	rejectWords = map[string]bool{
		"neft": true, "imps": true, "rtgs": true, "upi": true, "ach": true, "ecs": true,
		"you": true, "your": true, "me": true, "us": true, "card": true,
	}

	fromNameRe = regexp.MustCompile(`\bfrom\s+([A-Z][A-Za-z .&'-]{1,40}?)\.(?:\s|$)`)
)

func compileAnchors(words []string) map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(words))
	for _, w := range words {
		m[w] = regexp.MustCompile(`(?i)\b` + w + `\s+`)
	}
	return m
}

// ExtractMerchant returns the raw counterparty span for a message of the given direction.
// The span still needs normalising.
func ExtractMerchant(body string, txnType model.TransactionType) (string, bool) {
	anchors := expenseAnchors
	if txnType == model.TypeIncome {
		anchors = incomeAnchors
	}

	for _, anchor := range anchors {
		for _, loc := range anchorRes[anchor].FindAllStringIndex(body, -1) {
			if candidate, ok := spanAfter(body[loc[1]:]); ok {
				return candidate, true
			}
		}
	}

	if txnType == model.TypeIncome {
		if m := fromNameRe.FindStringSubmatch(body); m != nil {
			if candidate := strings.TrimSpace(m[1]); acceptable(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}

func spanAfter(rest string) (string, bool) {
	if loc := terminatorRe.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	rest = truncateBytes(rest, MaxRawMerchantLength)
	candidate := strings.TrimSpace(rest)
	if !acceptable(candidate) {
		return "", false
	}
	return candidate, true
}

func acceptable(candidate string) bool {
	if utf8.RuneCountInString(candidate) < 2 {
		return false
	}
	lower := strings.ToLower(candidate)
	if rejectWords[lower] {
		return false
	}
	if lower[0] >= '0' && lower[0] <= '9' {
		return false
	}
	if dateOrTimeRe.MatchString(lower) || maskedRe.MatchString(lower) || currencyRe.MatchString(lower) {
		return false
	}
	for _, p := range rejectPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	return true
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
