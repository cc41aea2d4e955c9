// Package classification decides what kind of message an SMS body is: a debit,
// a credit, or one of the known non-transaction notices banks send.
package classification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// PatternType represents what a matching pattern says about a message.
type PatternType string

const (
	// PatternTypeDebit marks money leaving the account holder.
	PatternTypeDebit PatternType = "debit"
	// PatternTypeCredit marks money arriving for the account holder.
	PatternTypeCredit PatternType = "credit"
	// PatternTypeIgnore marks a notice that is never a transaction.
	PatternTypeIgnore PatternType = "ignore"
)

// Pattern represents a message classification pattern.
type Pattern struct {
	Name     string
	Type     PatternType
	Regex    string
	Priority int // Higher priority patterns are checked first
}

// CompiledPattern holds a compiled regex pattern with metadata.
type CompiledPattern struct {
	compiledRegex *regexp.Regexp
	Pattern
}

// Match represents a pattern match result.
type Match struct {
	PatternName string
	Type        PatternType
}

// Direction is the outcome of keyword classification.
type Direction int

// Possible directions.
const (
	DirectionNone Direction = iota
	DirectionDebit
	DirectionCredit
	DirectionAmbiguous
)

func (d Direction) String() string {
	switch d {
	case DirectionDebit:
		return "debit"
	case DirectionCredit:
		return "credit"
	case DirectionAmbiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// PatternDetector classifies SMS bodies against a priority-ordered pattern set.
// It is safe for concurrent use.
type PatternDetector struct {
	patterns []CompiledPattern
	mu       sync.RWMutex
}

// NewPatternDetector creates a new pattern detector with the given patterns.
func NewPatternDetector(patterns []Pattern) (*PatternDetector, error) {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return nil, err
	}
	return &PatternDetector{patterns: compiled}, nil
}

// MustDefault returns a detector loaded with DefaultPatterns.
// The built-in table is static, so a compile failure is a programming error.
func MustDefault() *PatternDetector {
	pd, err := NewPatternDetector(DefaultPatterns())
	if err != nil {
		panic(err)
	}
	return pd
}

func compilePatterns(patterns []Pattern) ([]CompiledPattern, error) {
	compiled := make([]CompiledPattern, 0, len(patterns))

	for _, p := range patterns {
		regexStr := p.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr // Make case-insensitive by default
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}

		compiled = append(compiled, CompiledPattern{
			Pattern:       p,
			compiledRegex: regex,
		})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return compiled, nil
}

// Ignored returns the first non-transaction class the body belongs to, or nil.
func (pd *PatternDetector) Ignored(body string) *Match {
	pd.mu.RLock()
	defer pd.mu.RUnlock()

	for _, p := range pd.patterns {
		if p.Type == PatternTypeIgnore && p.compiledRegex.MatchString(body) {
			return &Match{PatternName: p.Name, Type: p.Type}
		}
	}

	if IsTransferConfirmation(body) {
		return &Match{PatternName: "Transfer Confirmation", Type: PatternTypeIgnore}
	}

	return nil
}

// Classify scans the body for debit and credit markers.
// A body carrying both is reported as ambiguous rather than guessed.
func (pd *PatternDetector) Classify(body string) Direction {
	pd.mu.RLock()
	defer pd.mu.RUnlock()

	var debit, credit bool
	for _, p := range pd.patterns {
		switch p.Type {
		case PatternTypeDebit:
			debit = debit || p.compiledRegex.MatchString(body)
		case PatternTypeCredit:
			credit = credit || p.compiledRegex.MatchString(body)
		case PatternTypeIgnore:
		}
	}

	switch {
	case debit && credit:
		return DirectionAmbiguous
	case debit:
		return DirectionDebit
	case credit:
		return DirectionCredit
	default:
		return DirectionNone
	}
}

// UpdatePatterns replaces the detector's pattern set.
func (pd *PatternDetector) UpdatePatterns(patterns []Pattern) error {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return err
	}

	pd.mu.Lock()
	pd.patterns = compiled
	pd.mu.Unlock()

	return nil
}

// GetPatternCount returns the number of loaded patterns.
func (pd *PatternDetector) GetPatternCount() int {
	pd.mu.RLock()
	defer pd.mu.RUnlock()
	return len(pd.patterns)
}

var (
	creditedToRe = regexp.MustCompile(`(?i)\b(?:has been|have been|is|was)\s+credited\s+to\b`)

	// accountTokenRe matches a word that names an account or instrument rather than a payee.
	accountTokenRe = regexp.MustCompile(`(?i)^(?:a/?c|acc|acct|account|card|wallet|[x*]+\d*|\d{3,})$`)
)

// ownerWords open a phrase that names the reader's own account.
var ownerWords = map[string]bool{
	"your": true,
	"ur":   true,
	"my":   true,
}

// IsTransferConfirmation reports whether the body is the payer-side notice
// "... has been credited to <name>" rather than a credit to the reader's own account.
// The reader's account is recognised by a possessive or an account token within
// the first three words after "credited to".
func IsTransferConfirmation(body string) bool {
	for _, loc := range creditedToRe.FindAllStringIndex(body, -1) {
		if !namesOwnAccount(body[loc[1]:]) {
			return true
		}
	}
	return false
}

func namesOwnAccount(rest string) bool {
	words := strings.Fields(rest)
	if len(words) > 3 {
		words = words[:3]
	}
	for i, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,:;-"))
		if i == 0 && ownerWords[w] {
			return true
		}
		if accountTokenRe.MatchString(w) {
			return true
		}
		if strings.HasPrefix(w, "a/c") || strings.HasPrefix(w, "xx") {
			return true
		}
	}
	return false
}
