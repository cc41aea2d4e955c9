// Package extract pulls individual transaction fields out of free-form SMS text.
// Every extractor reports absence with a false second return rather than an error.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxAmountDigits is the longest digit run accepted as an amount.
const MaxAmountDigits = 12

// Amount is a currency-qualified value found in a message.
type Amount struct {
	Value    decimal.Decimal
	Currency string // ISO 4217 code
	Foreign  bool   // Currency differs from the configured home currency
}

var (
	numberRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

	// isoCodes lists the three-letter codes recognised as currency cues.
	isoCodes = map[string]bool{
		"INR": true, "USD": true, "EUR": true, "GBP": true, "AED": true,
		"SGD": true, "AUD": true, "CAD": true, "JPY": true, "CHF": true,
		"SAR": true, "QAR": true, "KWD": true, "OMR": true, "BHD": true,
		"HKD": true, "NZD": true, "THB": true, "MYR": true, "LKR": true,
		"NPR": true, "BDT": true, "ZAR": true, "CNY": true,
	}

	symbolCodes = map[string]string{
		"₹": "INR",
		"$": "USD",
		"€": "EUR",
		"£": "GBP",
	}

	// referenceLabels precede numbers that identify something rather than price it.
	referenceLabels = []string{"ref", "ref no", "ref no.", "ref:", "ref no:", "txn no", "txn no.", "txn no:", "call", "upi:", "upi ref", "upi ref no"}

	// balanceLabels mark an amount as a balance or limit rather than the transacted value.
	balanceLabels = []string{"bal", "avl", "available", "limit", "lmt", "o/s", "outstanding"}
)

// IsCurrencyCode reports whether code is in the recognised ISO table.
func IsCurrencyCode(code string) bool {
	return isoCodes[strings.ToUpper(code)]
}

// ExtractAmount finds the first currency-qualified amount in body.
// Balances, limits and reference numbers are skipped.
func ExtractAmount(body, homeCurrency string) (Amount, bool) {
	home := strings.ToUpper(strings.TrimSpace(homeCurrency))
	if home == "" {
		home = "INR"
	}

	prevEnd := 0
	for _, loc := range numberRe.FindAllStringIndex(body, -1) {
		start, end := loc[0], loc[1]
		token := strings.TrimRight(body[start:end], ",")
		end = start + len(token)

		before := strings.TrimRightFunc(body[:start], unicode.IsSpace)
		after := strings.TrimLeftFunc(body[end:], unicode.IsSpace)

		code, cueStart, ok := cueBefore(before)
		if !ok {
			code, ok = cueAfter(after)
			cueStart = start
		}
		if !ok || !adjacentIsClean(body, start, cueStart < start) {
			prevEnd = end
			continue
		}

		if cueStart < prevEnd || cueStart > start {
			cueStart = prevEnd
		}
		label := strings.ToLower(body[prevEnd:cueStart])
		prevEnd = end

		if hasReferenceLabel(label) || hasBalanceLabel(label) {
			continue
		}

		value, ok := ParseAmount(token)
		if !ok {
			continue
		}

		return Amount{Value: value, Currency: code, Foreign: code != home}, true
	}

	return Amount{}, false
}

// ParseAmount parses the first numeric token in raw using the shared amount grammar:
// optional thousands separators, at most one decimal point, one or two fraction digits.
// Non-positive values are rejected.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	token := strings.TrimRight(numberRe.FindString(raw), ",")
	if token == "" {
		return decimal.Zero, false
	}

	whole, frac, hasFrac := strings.Cut(token, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return decimal.Zero, false
	}
	digits := strings.ReplaceAll(whole, ",", "")
	if len(digits)+len(frac) > MaxAmountDigits {
		return decimal.Zero, false
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(token, ",", ""))
	if err != nil || !value.IsPositive() {
		return decimal.Zero, false
	}
	return value, true
}

// cueBefore reports the currency whose cue ends the text preceding a number,
// and the byte offset where that cue starts.
func cueBefore(before string) (string, int, bool) {
	for sym, code := range symbolCodes {
		if strings.HasSuffix(before, sym) {
			return code, len(before) - len(sym), true
		}
	}

	for _, cue := range []string{"rs.", "rs", "inr.", "inr"} {
		if i := len(before) - len(cue); hasSuffixFold(before, cue) && wordStart(before, i) {
			return "INR", i, true
		}
	}

	if i := len(before) - 3; i >= 0 {
		code := strings.ToUpper(before[i:])
		if isoCodes[code] && wordStart(before, i) {
			return code, i, true
		}
	}

	return "", 0, false
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// cueAfter reports the currency whose code immediately follows a number.
func cueAfter(after string) (string, bool) {
	if len(after) < 3 {
		return "", false
	}
	code := strings.ToUpper(after[:3])
	if !isoCodes[code] {
		return "", false
	}
	if len(after) > 3 {
		r, _ := utf8.DecodeRuneInString(after[3:])
		if unicode.IsLetter(r) {
			return "", false
		}
	}
	return code, true
}

// adjacentIsClean rejects numbers glued to letters, e.g. the digits of "XX1234".
// A letter directly before the number is allowed when it ends the cue itself.
func adjacentIsClean(body string, start int, cueAttached bool) bool {
	if start == 0 || cueAttached {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(body[:start])
	return !unicode.IsLetter(r)
}

func wordStart(s string, i int) bool {
	if i <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func hasReferenceLabel(text string) bool {
	text = strings.TrimSpace(text)
	for _, l := range referenceLabels {
		if strings.HasSuffix(text, l) {
			return true
		}
	}
	return false
}

func hasBalanceLabel(text string) bool {
	if len(text) > 25 {
		text = text[len(text)-25:]
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ':' || r == '.' || r == '-' || r == ','
	})
	for _, f := range fields {
		for _, l := range balanceLabels {
			if f == l {
				return true
			}
		}
	}
	return false
}
