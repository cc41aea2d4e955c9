package ofx

import (
	"bytes"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smsledger/internal/model"
)

func entry(id int64, amount string, txnType model.TransactionType, merchant, account, accountType string, at time.Time) Entry {
	hash := model.GenerateSmsHash("AM-HDFCBK", amount+merchant)
	txn := model.PotentialTransaction{
		SourceSmsID:     id,
		Amount:          decimal.RequireFromString(amount),
		TransactionType: txnType,
		MerchantName:    model.StringPtr(merchant),
		SourceSmsHash:   &hash,
		OriginalMessage: "Rs " + amount + " at " + merchant,
	}
	if account != "" {
		txn.PotentialAccount = &model.PotentialAccount{FormattedName: account, AccountType: accountType}
	}
	return Entry{Transaction: txn, PostedAt: at}
}

func TestWriter_RoundTrip(t *testing.T) {
	base := time.Date(2025, 6, 22, 10, 30, 0, 0, time.UTC)
	entries := []Entry{
		entry(1, "750.50", model.TypeExpense, "Amazon", "HDFC Bank - xx9922", "Bank Account", base),
		entry(2, "5000", model.TypeIncome, "Freelance Client", "HDFC Bank - xx9922", "Bank Account", base.Add(2*time.Hour)),
		entry(3, "267", model.TypeExpense, "HALLI THOTA", "SBI - xx3201", "Credit Card", base.Add(time.Hour)),
		entry(4, "99", model.TypeExpense, "Tea Point", "", "", base.Add(-time.Hour)),
	}

	w := NewWriter("inr")
	w.now = func() time.Time { return base }

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, entries))

	resp, err := ofxgo.ParseResponse(&buf)
	require.NoError(t, err)

	require.Len(t, resp.CreditCard, 1)
	cc, ok := resp.CreditCard[0].(*ofxgo.CCStatementResponse)
	require.True(t, ok)
	assert.Equal(t, ofxgo.String("SBI - xx3201"), cc.CCAcctFrom.AcctID)
	require.NotNil(t, cc.BankTranList)
	require.Len(t, cc.BankTranList.Transactions, 1)
	assert.Equal(t, ofxgo.String("HALLI THOTA"), cc.BankTranList.Transactions[0].Name)

	require.Len(t, resp.Bank, 2)
	hdfc, ok := resp.Bank[0].(*ofxgo.StatementResponse)
	require.True(t, ok)
	assert.Equal(t, ofxgo.String("HDFC Bank"), hdfc.BankAcctFrom.BankID)
	assert.Equal(t, ofxgo.String("HDFC Bank - xx9922"), hdfc.BankAcctFrom.AcctID)
	assert.Equal(t, "INR", hdfc.CurDef.String())

	txns := hdfc.BankTranList.Transactions
	require.Len(t, txns, 2)
	debit, _ := txns[0].TrnAmt.Float64()
	credit, _ := txns[1].TrnAmt.Float64()
	assert.InDelta(t, -750.50, debit, 0.001)
	assert.InDelta(t, 5000.0, credit, 0.001)
	assert.Equal(t, ofxgo.TrnTypeDebit, txns[0].TrnType)
	assert.Equal(t, ofxgo.TrnTypeCredit, txns[1].TrnType)
	assert.Equal(t, ofxgo.String(*entries[0].Transaction.SourceSmsHash), txns[0].FiTID)
	assert.WithinDuration(t, base, hdfc.BankTranList.DtStart.Time, time.Second)
	assert.WithinDuration(t, base.Add(2*time.Hour), hdfc.BankTranList.DtEnd.Time, time.Second)

	unknown, ok := resp.Bank[1].(*ofxgo.StatementResponse)
	require.True(t, ok)
	assert.Equal(t, ofxgo.String(unknownAccount), unknown.BankAcctFrom.AcctID)
}

func TestWriter_InvalidCurrency(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter("RUPEES").Write(&buf, nil)
	assert.Error(t, err)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "HDFC Bank", bankID("HDFC Bank - xx9922"))
	assert.Equal(t, "SMS", bankID("SMS"))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "₹₹", truncate("₹₹₹", 2))
	assert.Equal(t, "short", truncate("short", 10))
}
