package model

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SmsMessage is an inbound SMS as handed to the parser. The parser never mutates it.
type SmsMessage struct {
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	ID        int64  `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// TransactionType is the direction of money movement from the account holder's view.
type TransactionType string

// Transaction types. These literals are part of the output contract.
const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// PotentialAccount is a best-effort guess at the instrument a transaction ran against.
type PotentialAccount struct {
	FormattedName string `json:"formatted_name"`
	AccountType   string `json:"account_type"`
}

// PotentialTransaction is the parser's output for a message recognised as a transaction.
type PotentialTransaction struct {
	Amount               decimal.Decimal   `json:"amount"`
	MerchantName         *string           `json:"merchant_name,omitempty"`
	PotentialAccount     *PotentialAccount `json:"potential_account,omitempty"`
	SourceSmsHash        *string           `json:"source_sms_hash,omitempty"`
	SmsSignature         *string           `json:"sms_signature,omitempty"`
	IsForeignCurrency    *bool             `json:"is_foreign_currency,omitempty"`
	DetectedCurrencyCode *string           `json:"detected_currency_code,omitempty"`
	SmsSender            string            `json:"sms_sender"`
	TransactionType      TransactionType   `json:"transaction_type"`
	OriginalMessage      string            `json:"original_message"`
	SourceSmsID          int64             `json:"source_sms_id"`
}

// Merchant returns the merchant name or "Unknown" when none was extracted.
func (t *PotentialTransaction) Merchant() string {
	if t.MerchantName == nil || *t.MerchantName == "" {
		return "Unknown"
	}
	return *t.MerchantName
}

// GenerateSignature fingerprints the fields that identify a recurring payment.
// Message identity and timestamps are deliberately excluded.
func GenerateSignature(merchant string, amount decimal.Decimal, txnType TransactionType, accountName string) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		strings.ToLower(strings.TrimSpace(merchant)),
		amount.StringFixed(2),
		txnType,
		strings.ToLower(strings.TrimSpace(accountName)))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// GenerateSmsHash creates a hash of the raw message for duplicate detection.
func GenerateSmsHash(sender, body string) string {
	data := fmt.Sprintf("%s|%s", strings.ToUpper(strings.TrimSpace(sender)), strings.TrimSpace(body))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
