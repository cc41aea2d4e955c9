package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/engine"
	"github.com/Veraticus/smsledger/internal/inbox"
	"github.com/Veraticus/smsledger/internal/metrics"
	"github.com/Veraticus/smsledger/internal/ofx"
)

// Output formats for review results.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputCSV   = "csv"
	outputOFX   = "ofx"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Parse a batch of exported SMS",
		Long: `Parse every message in a JSON or CSV export and report the transactions found.

JSON input is an array of {"id", "sender", "body", "timestamp"} objects.
CSV input needs a header row with at least sender and body columns.
Timestamps are Unix milliseconds.

Examples:
  smsledger review inbox.json
  smsledger review inbox.csv --output csv --out transactions.csv
  smsledger review inbox.json --output ofx --out statement.ofx
  smsledger review inbox.json --metrics-file /var/lib/node_exporter/smsledger.prom`,
		Args: cobra.ExactArgs(1),
		RunE: runReview,
	}

	cmd.Flags().String("format", "", "input format: json or csv (default: from file extension)")
	cmd.Flags().StringP("output", "o", outputTable, "output format: table, json, csv or ofx")
	cmd.Flags().String("out", "", "write output to this file instead of stdout")
	cmd.Flags().Bool("keep-duplicates", false, "report repeated messages as separate transactions")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")
	cmd.Flags().Int("top", 10, "number of merchants to summarise")
	cmd.Flags().String("metrics-file", "", "write Prometheus textfile metrics for this run")

	return cmd
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	formatFlag, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	outPath, _ := cmd.Flags().GetString("out")
	keepDupes, _ := cmd.Flags().GetBool("keep-duplicates")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	top, _ := cmd.Flags().GetInt("top")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	switch output {
	case outputTable, outputJSON, outputCSV, outputOFX:
	default:
		return common.NewUserError(fmt.Sprintf("unknown output format %q", output), nil)
	}

	format, err := inputFormat(path, formatFlag)
	if err != nil {
		return err
	}

	f, err := os.Open(path) //nolint:gosec // user-supplied input file
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	messages, err := inbox.Load(f, format)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	p, err := newParser()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	cfg := engine.DefaultConfig()
	cfg.KeepDuplicates = keepDupes
	reviewer := engine.NewWithConfig(store, p, cfg)

	var progress engine.ProgressFunc
	if !noProgress {
		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(messages), "Reviewing messages...")
		progress = cli.ProgressTo(bar)
	}

	report, err := reviewer.Review(ctx, messages, progress)
	if err != nil {
		return err
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile, report, top); err != nil {
			return err
		}
		common.LogInfo("Wrote metrics", common.Fields{"path": metricsFile, "run_id": report.RunID})
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		file, err := os.Create(outPath) //nolint:gosec // user-supplied output file
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				slog.Error("failed to close output file", "error", closeErr)
			}
		}()
		out = file
	}

	switch output {
	case outputJSON:
		return writeJSON(out, struct {
			*engine.Report
			Transactions any `json:"transactions"`
		}{report, report.Transactions()})
	case outputCSV:
		return writeReviewCSV(out, report)
	case outputOFX:
		return ofx.NewWriter(p.HomeCurrency()).Write(out, ofxEntries(report))
	default:
		return writeReviewTable(out, report, top)
	}
}

func inputFormat(path, flag string) (inbox.Format, error) {
	if flag != "" {
		return inbox.ParseFormat(flag)
	}
	return inbox.DetectFormat(path)
}

func postedAt(timestampMillis int64, fallback time.Time) time.Time {
	if timestampMillis <= 0 {
		return fallback
	}
	return time.UnixMilli(timestampMillis)
}

func ofxEntries(report *engine.Report) []ofx.Entry {
	var entries []ofx.Entry
	for _, res := range report.Results {
		if res.Outcome != engine.OutcomeTransaction {
			continue
		}
		entries = append(entries, ofx.Entry{
			Transaction: *res.Transaction,
			PostedAt:    postedAt(res.Message.Timestamp, report.StartedAt),
		})
	}
	return entries
}

var csvHeader = []string{
	"sms_id", "timestamp", "sender", "type", "amount", "currency",
	"merchant", "account", "account_type", "signature",
}

func writeReviewCSV(w io.Writer, report *engine.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, res := range report.Results {
		if res.Outcome != engine.OutcomeTransaction {
			continue
		}
		txn := res.Transaction
		var account, accountType string
		if txn.PotentialAccount != nil {
			account = txn.PotentialAccount.FormattedName
			accountType = txn.PotentialAccount.AccountType
		}
		ts := ""
		if res.Message.Timestamp > 0 {
			ts = time.UnixMilli(res.Message.Timestamp).UTC().Format(time.RFC3339)
		}
		record := []string{
			strconv.FormatInt(txn.SourceSmsID, 10),
			ts,
			txn.SmsSender,
			string(txn.TransactionType),
			txn.Amount.StringFixed(2),
			deref(txn.DetectedCurrencyCode),
			txn.Merchant(),
			account,
			accountType,
			deref(txn.SmsSignature),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeReviewTable(w io.Writer, report *engine.Report, top int) error {
	stats := report.Stats
	if _, err := fmt.Fprintln(w, cli.FormatTitle("Review")); err != nil {
		return err
	}

	if stats.Transactions > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			cli.HeaderStyle.Render("ID"),
			cli.HeaderStyle.Render("Type"),
			cli.HeaderStyle.Render("Amount"),
			cli.HeaderStyle.Render("Merchant"),
			cli.HeaderStyle.Render("Account")); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			strings.Repeat("─", 4),
			strings.Repeat("─", 7),
			strings.Repeat("─", 12),
			strings.Repeat("─", 24),
			strings.Repeat("─", 24)); err != nil {
			return fmt.Errorf("failed to write separator: %w", err)
		}

		for _, txn := range report.Transactions() {
			amount := txn.Amount.StringFixed(2)
			if txn.DetectedCurrencyCode != nil {
				amount = *txn.DetectedCurrencyCode + " " + amount
			}
			account := ""
			if txn.PotentialAccount != nil {
				account = txn.PotentialAccount.FormattedName
			}
			if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
				txn.SourceSmsID, txn.TransactionType, amount, txn.Merchant(), account); err != nil {
				return fmt.Errorf("failed to write transaction row: %w", err)
			}
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to flush table: %w", err)
		}
	}

	summary := fmt.Sprintf("%d messages: %d transactions, %d skipped, %d duplicates\nSpent %s, received %s",
		stats.Total, stats.Transactions, stats.Skipped, stats.Duplicates,
		stats.Expense.StringFixed(2), stats.Income.StringFixed(2))
	if stats.Foreign > 0 {
		summary += fmt.Sprintf(" (%d foreign currency transactions not totalled)", stats.Foreign)
	}
	for i, m := range report.Merchants {
		if i >= top {
			break
		}
		if i == 0 {
			summary += "\n\nTop merchants:"
		}
		summary += fmt.Sprintf("\n  %-24s %3d  %s", m.Name, m.Count, m.Total.StringFixed(2))
	}

	_, err := fmt.Fprintln(w, "\n"+cli.RenderBox("Summary", summary))
	return err
}
