package common

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxPatternLength bounds user-supplied patterns before they reach the compiler.
const MaxPatternLength = 1024

var flagGroupRe = regexp.MustCompile(`^\(\?[imsU-]+[):]`)

// CompileInsensitive compiles pattern with the (?i) flag unless the pattern
// already starts with its own flag group.
func CompileInsensitive(pattern string) (*regexp.Regexp, error) {
	if len(pattern) > MaxPatternLength {
		return nil, fmt.Errorf("%w: pattern longer than %d bytes", ErrInvalidRegex, MaxPatternLength)
	}
	if !flagGroupRe.MatchString(pattern) {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegex, err)
	}
	return re, nil
}

// FirstGroup returns the first non-empty capture group of the leftmost match,
// or the whole match when the pattern has no groups.
func FirstGroup(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	for _, g := range m[1:] {
		if strings.TrimSpace(g) != "" {
			return g, true
		}
	}
	if strings.TrimSpace(m[0]) == "" {
		return "", false
	}
	return m[0], true
}
