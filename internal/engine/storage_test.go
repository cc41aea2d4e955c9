package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smsledger/internal/engine"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/parser"
	"github.com/Veraticus/smsledger/internal/testutil"
)

func TestReviewEngine_WithStoredRules(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.NewRuleBuilder().
		WithCustomRule("Pluxee Meal", `Rs\.?\s*([\d,.]+)`, `at (.+?) on`, 1).
		WithIgnorePhrase("cashback offer").
		WithRename("AMAZON", "Amazon India").
		Rules())

	msgs := []model.SmsMessage{
		{ID: 1, Sender: "AM-HDFCBK", Body: "Your account with HDFC Bank has been debited for Rs. 750.50 at Amazon on 22-Jun-2025."},
		{ID: 2, Sender: "PLUXEE", Body: "Rs 120 spent from Pluxee Meal at CAFE X on 01-02-25"},
		{ID: 3, Sender: "AM-HDFCBK", Body: "Get a cashback offer: Rs 500 credited when you spend Rs 5000"},
		{ID: 4, Sender: "AM-HDFCBK", Body: "Rs 2,000.00 will be debited from your a/c XX9922 on 05-07-25 towards SIP"},
	}

	report, err := engine.New(db.Storage, parser.New()).Review(context.Background(), msgs, nil)
	require.NoError(t, err)

	txns := report.Transactions()
	require.Len(t, txns, 2)
	assert.Equal(t, "Amazon India", txns[0].Merchant())
	assert.Equal(t, "CAFE X", txns[1].Merchant())
	assert.Equal(t, "120", txns[1].Amount.String())
	assert.Equal(t, 2, report.Stats.Skipped)
}
