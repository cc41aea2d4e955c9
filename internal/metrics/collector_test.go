package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smsledger/internal/engine"
)

func testReport() *engine.Report {
	start := time.Date(2025, 6, 22, 10, 0, 0, 0, time.UTC)
	return &engine.Report{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Stats: engine.Stats{
			Total:        5,
			Transactions: 3,
			Skipped:      1,
			Duplicates:   1,
			Foreign:      1,
			Expense:      decimal.RequireFromString("750.50"),
			Income:       decimal.RequireFromString("5000"),
		},
		Merchants: []engine.MerchantSummary{
			{Name: "Amazon", Count: 2, Total: decimal.NewFromInt(800)},
			{Name: "Swiggy", Count: 1, Total: decimal.NewFromInt(200)},
		},
	}
}

func TestReviewCollector(t *testing.T) {
	c := NewReviewCollector(testReport(), 1)

	assert.Equal(t, 3, testutil.CollectAndCount(c, "smsledger_review_messages"))
	assert.Equal(t, 2, testutil.CollectAndCount(c, "smsledger_review_amount"))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "smsledger_merchant_transactions"))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "smsledger_review_duration_seconds"))
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smsledger.prom")

	require.NoError(t, WriteTextfile(path, testReport(), 10))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `smsledger_review_messages{outcome="transaction"} 3`)
	assert.Contains(t, out, `smsledger_review_amount{type="expense"} 750.5`)
	assert.Contains(t, out, `smsledger_merchant_transactions{merchant="Swiggy"} 1`)
	assert.Contains(t, out, `smsledger_review_duration_seconds 1.5`)
	assert.Contains(t, out, `run_id="run-1"`)
}
