// Package merchant cleans raw counterparty spans and applies user renames.
package merchant

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
)

// MaxLength is the longest merchant name kept, in characters.
const MaxLength = 50

var (
	// disclaimerRe finds the first boilerplate fragment that bleeds into a merchant span.
	disclaimerRe = regexp.MustCompile(`(?i)\b(?:not you|not|call|dispute|report|to block|sms block|avl\.?\s*bal|avl\.?\s*lmt)\b`)

	prefixRe = regexp.MustCompile(`(?i)^(?:vpa\s+|upi[-/:]\s*)`)
)

const trailingJunk = "_-.,:;/*#!?' "

// Normalize turns a raw span into a display name. The second result is false
// when nothing usable is left.
func Normalize(raw string) (string, bool) {
	name := gomoji.RemoveEmojis(raw)
	name = strings.Join(strings.Fields(name), " ")

	for {
		stripped := prefixRe.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = strings.TrimSpace(stripped)
	}

	if loc := disclaimerRe.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}

	name = strings.TrimRight(name, trailingJunk)
	name = strings.TrimLeft(name, trailingJunk)
	name = truncate(name, MaxLength)

	if name == "" {
		return "", false
	}
	return name, true
}

// Key is the comparison form of a merchant name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Rename applies the first matching rename: an exact key, then a case-insensitive
// match. Case-insensitive collisions resolve to the lexically smallest key.
func Rename(name string, renames map[string]string) (string, bool) {
	if len(renames) == 0 || name == "" {
		return name, false
	}
	if v, ok := renames[name]; ok && v != "" {
		return v, true
	}

	keys := make([]string, 0, len(renames))
	for k := range renames {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	want := Key(name)
	for _, k := range keys {
		if Key(k) == want && renames[k] != "" {
			return renames[k], true
		}
	}
	return name, false
}

// truncate caps s at n runes, backing up to a word boundary when it cuts a word.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if runes[n] != ' ' {
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, trailingJunk)
}
