// Package metrics exposes review runs as Prometheus metrics for the node
// exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Veraticus/smsledger/internal/engine"
	"github.com/Veraticus/smsledger/internal/model"
)

// Namespace prefixes every metric name.
const Namespace = "smsledger"

// ReviewCollector reports the outcome of one review run.
type ReviewCollector struct {
	Messages     *prometheus.Desc
	Amount       *prometheus.Desc
	Foreign      *prometheus.Desc
	MerchantTxns *prometheus.Desc
	Duration     *prometheus.Desc
	LastRun      *prometheus.Desc
	report       *engine.Report
	topMerchants int
}

// NewReviewCollector creates a collector for report. Only the topMerchants
// busiest merchants get their own series.
func NewReviewCollector(report *engine.Report, topMerchants int) *ReviewCollector {
	return &ReviewCollector{
		Messages: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "review", "messages"),
			"Messages seen in the last review run by outcome",
			[]string{"outcome"},
			nil,
		),
		Amount: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "review", "amount"),
			"Home currency total of parsed transactions by type",
			[]string{"type"},
			nil,
		),
		Foreign: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "review", "foreign_transactions"),
			"Transactions in a currency other than the home currency",
			nil,
			nil,
		),
		MerchantTxns: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "merchant", "transactions"),
			"Transactions per merchant in the last review run",
			[]string{"merchant"},
			nil,
		),
		Duration: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "review", "duration_seconds"),
			"Wall time of the last review run",
			nil,
			nil,
		),
		LastRun: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "review", "last_run_timestamp_seconds"),
			"Unix time the last review run finished",
			[]string{"run_id"},
			nil,
		),
		report:       report,
		topMerchants: topMerchants,
	}
}

// Describe implements prometheus.Collector.
func (c *ReviewCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.Messages
	ch <- c.Amount
	ch <- c.Foreign
	ch <- c.MerchantTxns
	ch <- c.Duration
	ch <- c.LastRun
}

// Collect implements prometheus.Collector.
func (c *ReviewCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.report.Stats

	outcomes := map[engine.Outcome]int{
		engine.OutcomeTransaction: stats.Transactions,
		engine.OutcomeSkipped:     stats.Skipped,
		engine.OutcomeDuplicate:   stats.Duplicates,
	}
	for outcome, n := range outcomes {
		ch <- prometheus.MustNewConstMetric(c.Messages, prometheus.GaugeValue, float64(n), string(outcome))
	}

	expense, _ := stats.Expense.Float64()
	income, _ := stats.Income.Float64()
	ch <- prometheus.MustNewConstMetric(c.Amount, prometheus.GaugeValue, expense, string(model.TypeExpense))
	ch <- prometheus.MustNewConstMetric(c.Amount, prometheus.GaugeValue, income, string(model.TypeIncome))
	ch <- prometheus.MustNewConstMetric(c.Foreign, prometheus.GaugeValue, float64(stats.Foreign))

	for i, m := range c.report.Merchants {
		if i >= c.topMerchants {
			break
		}
		ch <- prometheus.MustNewConstMetric(c.MerchantTxns, prometheus.GaugeValue, float64(m.Count), m.Name)
	}

	ch <- prometheus.MustNewConstMetric(c.Duration, prometheus.GaugeValue,
		c.report.FinishedAt.Sub(c.report.StartedAt).Seconds())
	ch <- prometheus.MustNewConstMetric(c.LastRun, prometheus.GaugeValue,
		float64(c.report.FinishedAt.Unix()), c.report.RunID)
}

// WriteTextfile writes the report's metrics to path in the text exposition format.
func WriteTextfile(path string, report *engine.Report, topMerchants int) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewReviewCollector(report, topMerchants)); err != nil {
		return fmt.Errorf("failed to register review collector: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
