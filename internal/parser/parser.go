// Package parser turns a single SMS into a potential transaction.
//
// Parse runs the ignore filter, the user's custom rules and the built-in
// heuristics in that order, then normalises and renames the merchant and
// fingerprints the result. It performs no I/O and is safe for concurrent use.
package parser

import (
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/smsledger/internal/bank"
	"github.com/Veraticus/smsledger/internal/classification"
	"github.com/Veraticus/smsledger/internal/extract"
	"github.com/Veraticus/smsledger/internal/merchant"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/pattern"
)

// Defaults applied when no option overrides them.
const (
	DefaultHomeCurrency  = "INR"
	DefaultMaxBodyLength = 2048
)

// Parser extracts transactions from SMS bodies.
type Parser struct {
	logger        *slog.Logger
	detector      *classification.PatternDetector
	ignore        *pattern.IgnoreFilter
	matcher       *pattern.CustomMatcher
	homeCurrency  string
	maxBodyLength int
	cacheSize     int
}

// Option configures a Parser.
type Option func(*Parser)

// WithHomeCurrency sets the ISO code amounts are compared against for the foreign flag.
func WithHomeCurrency(code string) Option {
	return func(p *Parser) {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			p.homeCurrency = code
		}
	}
}

// WithMaxBodyLength caps the number of body bytes inspected.
func WithMaxBodyLength(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxBodyLength = n
		}
	}
}

// WithRegexCacheSize bounds the compiled custom-rule regex cache.
func WithRegexCacheSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.cacheSize = n
		}
	}
}

// WithLogger enables debug logging of parse decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDetector replaces the built-in classification patterns.
func WithDetector(detector *classification.PatternDetector) Option {
	return func(p *Parser) {
		if detector != nil {
			p.detector = detector
		}
	}
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		homeCurrency:  DefaultHomeCurrency,
		maxBodyLength: DefaultMaxBodyLength,
		cacheSize:     pattern.DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.detector == nil {
		p.detector = classification.MustDefault()
	}
	p.ignore = pattern.NewIgnoreFilter(p.detector)
	p.matcher = pattern.NewMatcher(p.cacheSize, p.logger)
	return p
}

// HomeCurrency returns the configured home currency code.
func (p *Parser) HomeCurrency() string {
	return p.homeCurrency
}

// Parse returns the transaction described by msg, or nil when msg is not one.
// The rule snapshots are read, never modified.
func (p *Parser) Parse(
	msg model.SmsMessage,
	renames map[string]string,
	customRules []model.CustomSmsRule,
	ignoreRules []model.IgnoreRule,
) *model.PotentialTransaction {
	view := msg
	view.Body = TruncateBody(msg.Body, p.maxBodyLength)
	body := view.Body

	if p.ignore.ShouldIgnore(view, ignoreRules) {
		p.logger.Debug("message ignored", "sms_id", msg.ID, "sender", msg.Sender)
		return nil
	}

	var txnType model.TransactionType
	switch direction := p.detector.Classify(body); direction {
	case classification.DirectionDebit:
		txnType = model.TypeExpense
	case classification.DirectionCredit:
		txnType = model.TypeIncome
	case classification.DirectionNone, classification.DirectionAmbiguous:
		p.logger.Debug("message not classified", "sms_id", msg.ID, "direction", direction.String())
		return nil
	}

	builtInAmount, hasBuiltInAmount := extract.ExtractAmount(body, p.homeCurrency)

	amount := builtInAmount.Value
	var (
		rawMerchant string
		hasMerchant bool
		account     *model.PotentialAccount
	)

	if match := p.matcher.TryCustomRules(view, customRules); match != nil {
		p.logger.Debug("custom rule matched", "sms_id", msg.ID, "rule_id", match.RuleID)
		amount = match.Amount
		if match.Merchant != nil {
			rawMerchant, hasMerchant = *match.Merchant, true
		}
		if match.Account != nil {
			account = customAccount(*match.Account, msg.Sender, body)
		}
	} else if !hasBuiltInAmount {
		p.logger.Debug("no amount found", "sms_id", msg.ID)
		return nil
	}

	if !hasMerchant {
		rawMerchant, hasMerchant = extract.ExtractMerchant(body, txnType)
	}
	if account == nil {
		account = extract.ExtractAccount(msg.Sender, body)
	}

	txn := &model.PotentialTransaction{
		SourceSmsID:      msg.ID,
		SmsSender:        msg.Sender,
		Amount:           amount,
		TransactionType:  txnType,
		OriginalMessage:  msg.Body,
		PotentialAccount: account,
	}

	var normalized string
	if hasMerchant {
		if name, ok := merchant.Normalize(rawMerchant); ok {
			normalized = name
			display := name
			if renamed, ok := merchant.Rename(name, renames); ok {
				display = renamed
			}
			txn.MerchantName = &display
		}
	}

	foreign := false
	// The currency cue only describes the rule's amount when both agree on the number.
	if hasBuiltInAmount && builtInAmount.Foreign && builtInAmount.Value.Equal(amount) {
		foreign = true
		code := builtInAmount.Currency
		txn.DetectedCurrencyCode = &code
	}
	txn.IsForeignCurrency = &foreign

	accountName := ""
	if account != nil {
		accountName = account.FormattedName
	}
	signature := model.GenerateSignature(normalized, amount, txnType, accountName)
	hash := model.GenerateSmsHash(msg.Sender, msg.Body)
	txn.SmsSignature = &signature
	txn.SourceSmsHash = &hash

	return txn
}

var digitsRe = regexp.MustCompile(`\d{3,}`)

// customAccount shapes a value captured by a custom rule's account regex.
// Captures carrying digits are formatted like built-in account names.
func customAccount(captured, sender, body string) *model.PotentialAccount {
	captured = strings.TrimSpace(captured)
	if captured == "" {
		return nil
	}

	accountType := extract.AccountTypeBankAccount
	if heuristic := extract.ExtractAccount(sender, body); heuristic != nil {
		accountType = heuristic.AccountType
	}

	digits := digitsRe.FindAllString(captured, -1)
	if len(digits) == 0 {
		return &model.PotentialAccount{FormattedName: captured, AccountType: accountType}
	}

	name := "Bank"
	if b, ok := bank.Resolve(sender, body); ok {
		name = b.Name
	}
	return &model.PotentialAccount{
		FormattedName: extract.FormatAccountName(name, digits[len(digits)-1]),
		AccountType:   accountType,
	}
}

// TruncateBody cuts body to at most n bytes on a UTF-8 boundary.
func TruncateBody(body string, n int) string {
	if n <= 0 || len(body) <= n {
		return body
	}
	for n > 0 && !utf8.RuneStart(body[n]) {
		n--
	}
	return body[:n]
}
