// Package engine runs the parser over batches of messages against one rule snapshot.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/service"
)

// Outcome records what happened to a single message.
type Outcome string

// Message outcomes.
const (
	OutcomeTransaction Outcome = "transaction"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeSkipped     Outcome = "skipped"
)

// Result pairs an input message with its outcome.
type Result struct {
	Transaction *model.PotentialTransaction
	Outcome     Outcome
	Message     model.SmsMessage
}

// Stats summarises a review run.
type Stats struct {
	Expense      decimal.Decimal `json:"expense_total"`
	Income       decimal.Decimal `json:"income_total"`
	Total        int             `json:"total"`
	Transactions int             `json:"transactions"`
	Skipped      int             `json:"skipped"`
	Duplicates   int             `json:"duplicates"`
	Foreign      int             `json:"foreign_currency"`
}

// MerchantSummary aggregates the transactions seen for one merchant.
type MerchantSummary struct {
	Total decimal.Decimal `json:"total"`
	Name  string          `json:"name"`
	Count int             `json:"count"`
}

// Report is the result of one review run.
type Report struct {
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	RunID      string            `json:"run_id"`
	Results    []Result          `json:"-"`
	Merchants  []MerchantSummary `json:"merchants"`
	Stats      Stats             `json:"stats"`
}

// Transactions returns the parsed transactions in input order.
func (r *Report) Transactions() []model.PotentialTransaction {
	txns := make([]model.PotentialTransaction, 0, r.Stats.Transactions)
	for _, res := range r.Results {
		if res.Outcome == OutcomeTransaction {
			txns = append(txns, *res.Transaction)
		}
	}
	return txns
}

// ReviewEngine parses message batches.
type ReviewEngine struct {
	rules     service.RuleStore
	parser    Parser
	logger    *slog.Logger
	logEvery  int
	keepDupes bool
}

// Config holds configuration options for the review engine.
type Config struct {
	// LogEvery emits a progress log line every N messages; zero disables it.
	LogEvery int
	// KeepDuplicates reports repeated messages as transactions instead of duplicates.
	KeepDuplicates bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogEvery: 500,
	}
}

// New creates a review engine with the default configuration.
func New(rules service.RuleStore, parser Parser) *ReviewEngine {
	return NewWithConfig(rules, parser, DefaultConfig())
}

// NewWithConfig creates a review engine with custom configuration.
func NewWithConfig(rules service.RuleStore, parser Parser, config Config) *ReviewEngine {
	return &ReviewEngine{
		rules:     rules,
		parser:    parser,
		logger:    slog.Default(),
		logEvery:  config.LogEvery,
		keepDupes: config.KeepDuplicates,
	}
}

// Review parses every message against a single rule snapshot taken at the start
// of the run. Cancelling ctx stops the run between messages.
func (e *ReviewEngine) Review(ctx context.Context, messages []model.SmsMessage, progress ProgressFunc) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Results:   make([]Result, 0, len(messages)),
		Stats: Stats{
			Total:   len(messages),
			Expense: decimal.Zero,
			Income:  decimal.Zero,
		},
	}

	snap, err := e.rules.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	e.logger.Info("Starting review",
		"run_id", report.RunID,
		"messages", len(messages),
		"custom_rules", len(snap.CustomRules),
		"ignore_rules", len(snap.IgnoreRules),
		"renames", len(snap.Renames))

	seen := make(map[string]struct{}, len(messages))
	for i, msg := range messages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("review cancelled after %d of %d messages: %w", i, len(messages), err)
		}

		res := Result{Message: msg, Outcome: OutcomeSkipped}
		if txn := e.parser.Parse(msg, snap.Renames, snap.CustomRules, snap.IgnoreRules); txn != nil {
			res.Transaction = txn
			res.Outcome = OutcomeTransaction
			if hash := txn.SourceSmsHash; hash != nil && !e.keepDupes {
				if _, dup := seen[*hash]; dup {
					res.Outcome = OutcomeDuplicate
				}
				seen[*hash] = struct{}{}
			}
		}
		report.Results = append(report.Results, res)
		report.Stats.add(res)

		if progress != nil {
			progress(i+1, len(messages))
		}
		if e.logEvery > 0 && (i+1)%e.logEvery == 0 {
			e.logger.Debug("Review progress", "run_id", report.RunID, "processed", i+1, "total", len(messages))
		}
	}

	report.Merchants = summarizeMerchants(report.Results)
	report.FinishedAt = time.Now()

	e.logger.Info("Review complete",
		"run_id", report.RunID,
		"transactions", report.Stats.Transactions,
		"skipped", report.Stats.Skipped,
		"duplicates", report.Stats.Duplicates,
		"duration", report.FinishedAt.Sub(report.StartedAt))

	return report, nil
}

func (s *Stats) add(res Result) {
	switch res.Outcome {
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeDuplicate:
		s.Duplicates++
	case OutcomeTransaction:
		s.Transactions++
		txn := res.Transaction
		// Foreign amounts are counted but never summed into home-currency totals.
		if txn.IsForeignCurrency != nil && *txn.IsForeignCurrency {
			s.Foreign++
			return
		}
		if txn.TransactionType == model.TypeIncome {
			s.Income = s.Income.Add(txn.Amount)
		} else {
			s.Expense = s.Expense.Add(txn.Amount)
		}
	}
}

// summarizeMerchants groups transactions by merchant name and sorts them by
// transaction count, then name.
func summarizeMerchants(results []Result) []MerchantSummary {
	groups := make(map[string]*MerchantSummary)
	var order []string

	for _, res := range results {
		if res.Outcome != OutcomeTransaction {
			continue
		}
		name := strings.TrimSpace(res.Transaction.Merchant())
		key := strings.ToLower(name)
		g, ok := groups[key]
		if !ok {
			g = &MerchantSummary{Name: name, Total: decimal.Zero}
			groups[key] = g
			order = append(order, key)
		}
		g.Count++
		if foreign := res.Transaction.IsForeignCurrency; foreign != nil && *foreign {
			continue
		}
		g.Total = g.Total.Add(res.Transaction.Amount)
	}

	summaries := make([]MerchantSummary, 0, len(order))
	for _, key := range order {
		summaries = append(summaries, *groups[key])
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Count != summaries[j].Count {
			return summaries[i].Count > summaries[j].Count
		}
		return summaries[i].Name < summaries[j].Name
	})

	return summaries
}
