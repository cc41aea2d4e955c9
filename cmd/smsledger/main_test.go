package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amazonDebit = "Your account with HDFC Bank has been debited for Rs. 750.50 at Amazon on 22-Jun-2025."

// executeCommand runs the root command against a throwaway database.
func executeCommand(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--db", dbPath}, args...))

	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "smsledger.db")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"parse", "review", "rules", "ignore", "rename", "banks", "migrate", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "db", "log-level", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestParseCmd(t *testing.T) {
	tests := []struct {
		name          string
		errorContains string
		contains      []string
		args          []string
		wantErr       bool
	}{
		{
			name:     "debit as json",
			args:     []string{"parse", "--no-rules", "--json", "-s", "AM-HDFCBK", amazonDebit},
			contains: []string{`"transaction_type": "expense"`, `"merchant_name": "Amazon"`},
		},
		{
			name:     "debit as box",
			args:     []string{"parse", "-s", "AM-HDFCBK", amazonDebit},
			contains: []string{"Transaction", "Amazon", "750.50"},
		},
		{
			name:     "not a transaction",
			args:     []string{"parse", "--no-rules", "-s", "VM-NBHOOD", "Your OTP is 123456"},
			contains: []string{"Not a transaction"},
		},
		{
			name:          "empty body",
			args:          []string{"parse", "--no-rules"},
			wantErr:       true,
			errorContains: "nothing to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, testDBPath(t), tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestRulesCmd_Lifecycle(t *testing.T) {
	db := testDBPath(t)
	sample := "Rs 120 spent from Pluxee Meal at CAFE X on 01-02-25"

	out, err := executeCommand(t, db, "rules", "add",
		"--trigger", "Pluxee Meal",
		"--amount-regex", `Rs\.?\s*([\d,.]+)`,
		"--merchant-regex", `at (.+?) on`,
		"--priority", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Created rule 1")

	out, err = executeCommand(t, db, "rules", "list", "--json")
	require.NoError(t, err)
	var rules []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "Pluxee Meal", rules[0]["trigger_phrase"])
	assert.EqualValues(t, 5, rules[0]["priority"])

	out, err = executeCommand(t, db, "rules", "test", "1", sample)
	require.NoError(t, err)
	assert.Contains(t, out, "CAFE X")
	assert.Contains(t, out, "Rule would produce a transaction")

	out, err = executeCommand(t, db, "rules", "test", "1", "Rs 120 spent at CAFE X on 01-02-25")
	require.NoError(t, err)
	assert.Contains(t, out, "Rule would not produce a transaction")

	out, err = executeCommand(t, db, "parse", "--json", "-s", "PLUXEE", sample)
	require.NoError(t, err)
	assert.Contains(t, out, `"merchant_name": "CAFE X"`)

	_, err = executeCommand(t, db, "rules", "priority", "1", "9")
	require.NoError(t, err)
	out, err = executeCommand(t, db, "rules", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Priority: 9")

	_, err = executeCommand(t, db, "rules", "delete", "1")
	require.NoError(t, err)

	_, err = executeCommand(t, db, "rules", "show", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no custom rule with ID 1")
}

func TestRulesCmd_AddInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no trigger", []string{"rules", "add", "--amount-regex", `(\d+)`}},
		{"no regex", []string{"rules", "add", "--trigger", "spent"}},
		{"bad regex", []string{"rules", "add", "--trigger", "spent", "--amount-regex", `(\d+`}},
		{"interactive without sample", []string{"rules", "add", "--interactive"}},
		{"bad id", []string{"rules", "show", "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, testDBPath(t), tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestIgnoreCmd(t *testing.T) {
	db := testDBPath(t)

	out, err := executeCommand(t, db, "ignore", "add", "cashback offer")
	require.NoError(t, err)
	assert.Contains(t, out, "Created ignore rule")

	_, err = executeCommand(t, db, "ignore", "add", "CASHBACK OFFER")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = executeCommand(t, db, "ignore", "add", "--type", "regex", "x")
	require.Error(t, err)

	out, err = executeCommand(t, db, "ignore", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "cashback offer")
	assert.Contains(t, out, "will be debited")
	assert.Contains(t, out, "(built-in)")

	_, err = executeCommand(t, db, "ignore", "delete", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "built in")

	out, err = executeCommand(t, db, "ignore", "disable", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Ignore rule 1 disabled")

	_, err = executeCommand(t, db, "ignore", "enable", "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ignore rule with ID 999")
}

func TestIgnoreCmd_AppliedByParse(t *testing.T) {
	db := testDBPath(t)

	_, err := executeCommand(t, db, "ignore", "add", "--type", "sender", "AM-HDFCBK")
	require.NoError(t, err)

	out, err := executeCommand(t, db, "parse", "-s", "AM-HDFCBK", amazonDebit)
	require.NoError(t, err)
	assert.Contains(t, out, "Not a transaction")
}

func TestRenameCmd(t *testing.T) {
	db := testDBPath(t)

	_, err := executeCommand(t, db, "rename", "set", "Amazon", "Amazon India")
	require.NoError(t, err)

	out, err := executeCommand(t, db, "rename", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Amazon India")

	out, err = executeCommand(t, db, "parse", "--json", "-s", "AM-HDFCBK", amazonDebit)
	require.NoError(t, err)
	assert.Contains(t, out, `"merchant_name": "Amazon India"`)

	_, err = executeCommand(t, db, "rename", "delete", "amazon")
	require.NoError(t, err)

	_, err = executeCommand(t, db, "rename", "delete", "amazon")
	require.Error(t, err)
}

func writeInbox(t *testing.T) string {
	t.Helper()
	messages := []map[string]any{
		{"id": 1, "sender": "AM-HDFCBK", "body": amazonDebit, "timestamp": 1750579200000},
		{"id": 2, "sender": "AM-HDFCBK", "body": amazonDebit, "timestamp": 1750579260000},
		{"id": 3, "sender": "VM-ICICIB", "body": "You have received a credit of INR 5,000.00 from Freelance Client.", "timestamp": 1750665600000},
		{"id": 4, "sender": "VM-NBHOOD", "body": "Your OTP is 123456", "timestamp": 1750665700000},
	}
	data, err := json.Marshal(messages)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "inbox.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestReviewCmd_JSON(t *testing.T) {
	out, err := executeCommand(t, testDBPath(t), "review", "--no-progress", "--output", "json", writeInbox(t))
	require.NoError(t, err)

	var report struct {
		Transactions []map[string]any `json:"transactions"`
		Stats        struct {
			Total        int `json:"total"`
			Transactions int `json:"transactions"`
			Skipped      int `json:"skipped"`
			Duplicates   int `json:"duplicates"`
		} `json:"stats"`
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 4, report.Stats.Total)
	assert.Equal(t, 2, report.Stats.Transactions)
	assert.Equal(t, 1, report.Stats.Duplicates)
	assert.Equal(t, 1, report.Stats.Skipped)
	require.Len(t, report.Transactions, 2)
	assert.Equal(t, "Amazon", report.Transactions[0]["merchant_name"])
}

func TestReviewCmd_Outputs(t *testing.T) {
	inbox := writeInbox(t)

	tests := []struct {
		name     string
		output   string
		contains []string
	}{
		{name: "table", output: "table", contains: []string{"Amazon", "Freelance Client", "Top merchants"}},
		{name: "csv", output: "csv", contains: []string{"sms_id,timestamp,sender", "1,2025-06-22T08:00:00Z,AM-HDFCBK,expense,750.50"}},
		{name: "ofx", output: "ofx", contains: []string{"<OFX>", "<NAME>Amazon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outFile := filepath.Join(t.TempDir(), "out."+tt.output)
			_, err := executeCommand(t, testDBPath(t), "review", "--no-progress", "-o", tt.output, "--out", outFile, inbox)
			require.NoError(t, err)

			data, err := os.ReadFile(outFile)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, string(data), s)
			}
		})
	}
}

func TestReviewCmd_MetricsFile(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "smsledger.prom")

	_, err := executeCommand(t, testDBPath(t), "review", "--no-progress", "-o", "json", "--metrics-file", metricsFile, writeInbox(t))
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "smsledger_review_messages")
}

func TestReviewCmd_Errors(t *testing.T) {
	inbox := writeInbox(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"review", filepath.Join(t.TempDir(), "nope.json")}},
		{"unknown output", []string{"review", "-o", "xml", inbox}},
		{"unknown format", []string{"review", "--format", "xml", inbox}},
		{"no args", []string{"review"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, testDBPath(t), tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestBanksCmd(t *testing.T) {
	out, err := executeCommand(t, testDBPath(t), "banks", "lookup", "JD-SBICRD-S")
	require.NoError(t, err)
	assert.Contains(t, out, "SBI")

	out, err = executeCommand(t, testDBPath(t), "banks", "lookup", "VM-NOBANK")
	require.NoError(t, err)
	assert.Contains(t, out, "No bank known")

	out, err = executeCommand(t, testDBPath(t), "banks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "HDFCBK")
}

func TestMigrateCmd_Status(t *testing.T) {
	db := testDBPath(t)
	out, err := executeCommand(t, db, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 3")
	assert.Contains(t, out, db)
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCommand(t, testDBPath(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "smsledger dev")
}
