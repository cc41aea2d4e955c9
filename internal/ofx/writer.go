// Package ofx exports parsed SMS transactions as an OFX statement file that
// desktop finance tools can import.
package ofx

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"

	"github.com/Veraticus/smsledger/internal/extract"
	"github.com/Veraticus/smsledger/internal/model"
)

// OFX field limits.
const (
	maxNameLength   = 32
	maxMemoLength   = 255
	maxAcctIDLength = 22
	unknownAccount  = "SMS"
)

// Entry is one transaction to export with the time its message arrived.
type Entry struct {
	PostedAt    time.Time
	Transaction model.PotentialTransaction
}

// Writer builds OFX statements grouped by account.
type Writer struct {
	now          func() time.Time
	homeCurrency string
}

// NewWriter creates a writer that declares homeCurrency as the statement currency.
func NewWriter(homeCurrency string) *Writer {
	return &Writer{
		homeCurrency: strings.ToUpper(homeCurrency),
		now:          time.Now,
	}
}

type statement struct {
	entries  []Entry
	account  string
	isCredit bool
	savings  bool
}

// Write renders entries as an OFX 2.0.3 document.
func (w *Writer) Write(out io.Writer, entries []Entry) error {
	curDef, err := ofxgo.NewCurrSymbol(w.homeCurrency)
	if err != nil {
		return fmt.Errorf("invalid statement currency %q: %w", w.homeCurrency, err)
	}

	resp := ofxgo.Response{
		Version: ofxgo.OfxVersion203,
		Signon: ofxgo.SignonResponse{
			Status:   ofxgo.Status{Code: 0, Severity: "INFO"},
			DtServer: ofxgo.Date{Time: w.now()},
			Language: "ENG",
		},
	}

	for _, st := range groupByAccount(entries) {
		list, err := transactionList(st.entries)
		if err != nil {
			return err
		}
		uid := ofxgo.UID(uuid.NewString())

		if st.isCredit {
			resp.CreditCard = append(resp.CreditCard, &ofxgo.CCStatementResponse{
				TrnUID:       uid,
				Status:       ofxgo.Status{Code: 0, Severity: "INFO"},
				CurDef:       *curDef,
				CCAcctFrom:   ofxgo.CCAcct{AcctID: ofxgo.String(accountID(st.account))},
				BankTranList: list,
				DtAsOf:       list.DtEnd,
			})
			continue
		}

		acctType := ofxgo.AcctTypeChecking
		if st.savings {
			acctType = ofxgo.AcctTypeSavings
		}
		resp.Bank = append(resp.Bank, &ofxgo.StatementResponse{
			TrnUID: uid,
			Status: ofxgo.Status{Code: 0, Severity: "INFO"},
			CurDef: *curDef,
			BankAcctFrom: ofxgo.BankAcct{
				BankID:   ofxgo.String(bankID(st.account)),
				AcctID:   ofxgo.String(accountID(st.account)),
				AcctType: acctType,
			},
			BankTranList: list,
			DtAsOf:       list.DtEnd,
		})
	}

	buf, err := resp.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal OFX: %w", err)
	}
	if _, err := buf.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write OFX: %w", err)
	}
	return nil
}

// groupByAccount splits entries into one statement per potential account,
// ordered by account name.
func groupByAccount(entries []Entry) []*statement {
	groups := make(map[string]*statement)
	for _, e := range entries {
		name := unknownAccount
		var accountType string
		if acct := e.Transaction.PotentialAccount; acct != nil && acct.FormattedName != "" {
			name = acct.FormattedName
			accountType = acct.AccountType
		}
		st, ok := groups[name]
		if !ok {
			st = &statement{
				account:  name,
				isCredit: accountType == extract.AccountTypeCreditCard,
				savings:  accountType == extract.AccountTypeSavings,
			}
			groups[name] = st
		}
		st.entries = append(st.entries, e)
	}

	statements := make([]*statement, 0, len(groups))
	for _, st := range groups {
		statements = append(statements, st)
	}
	sort.Slice(statements, func(i, j int) bool { return statements[i].account < statements[j].account })
	return statements
}

func transactionList(entries []Entry) (*ofxgo.TransactionList, error) {
	list := &ofxgo.TransactionList{}
	for i, e := range entries {
		txn, err := convert(e)
		if err != nil {
			return nil, err
		}
		if i == 0 || e.PostedAt.Before(list.DtStart.Time) {
			list.DtStart = ofxgo.Date{Time: e.PostedAt}
		}
		if i == 0 || e.PostedAt.After(list.DtEnd.Time) {
			list.DtEnd = ofxgo.Date{Time: e.PostedAt}
		}
		list.Transactions = append(list.Transactions, txn)
	}
	return list, nil
}

func convert(e Entry) (ofxgo.Transaction, error) {
	t := e.Transaction

	amount := t.Amount
	trnType := ofxgo.TrnTypeCredit
	if t.TransactionType == model.TypeExpense {
		amount = amount.Neg()
		trnType = ofxgo.TrnTypeDebit
	}

	var trnAmt ofxgo.Amount
	trnAmt.Set(amount.Rat())

	fitID := fmt.Sprintf("sms-%d", t.SourceSmsID)
	if t.SourceSmsHash != nil {
		fitID = *t.SourceSmsHash
	}

	memo := t.OriginalMessage
	if t.DetectedCurrencyCode != nil {
		memo = "[" + *t.DetectedCurrencyCode + "] " + memo
	}

	return ofxgo.Transaction{
		TrnType:  trnType,
		DtPosted: ofxgo.Date{Time: e.PostedAt},
		TrnAmt:   trnAmt,
		FiTID:    ofxgo.String(fitID),
		Name:     ofxgo.String(truncate(t.Merchant(), maxNameLength)),
		Memo:     ofxgo.String(truncate(strings.Join(strings.Fields(memo), " "), maxMemoLength)),
	}, nil
}

// bankID is the institution part of "HDFC Bank - xx1234".
func bankID(account string) string {
	name, _, _ := strings.Cut(account, " - ")
	return truncate(strings.TrimSpace(name), maxAcctIDLength)
}

func accountID(account string) string {
	return truncate(account, maxAcctIDLength)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
