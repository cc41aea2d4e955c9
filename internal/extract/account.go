package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Veraticus/smsledger/internal/bank"
	"github.com/Veraticus/smsledger/internal/model"
)

// Account types produced by the built-in extractor.
const (
	AccountTypeCard        = "Card"
	AccountTypeCreditCard  = "Credit Card"
	AccountTypeSavings     = "Savings Account"
	AccountTypeBankAccount = "Bank Account"
)

var (
	cardRe = regexp.MustCompile(`(?i)\bcard\b\s*(?:(?:no\.?|number|ending(?:\s+(?:with|in))?|ends\s+(?:with|in))\s*)?[:#]?\s*(?:[x*]+\s*)?(\d{3,4})\b`)

	accountRe = regexp.MustCompile(`(?i)\b(?:a/c|acct|account|ac)\b\.?\s*(?:no\.?\s*)?[:#]?\s*[x*]+\s*(\d{3,12})\b`)

	walletRe = regexp.MustCompile(`(?i)\b(?:from|via|using|in|on)\s+(?:your\s+)?([a-z][a-z0-9&' ]{0,30}?)\s+wallet\b[^.]{0,60}?\bcard\s*(?:no\.?|number)?\s*[:#]?\s*[x*]*\s*(\d{3,6})\b`)

	genericAccountRe = regexp.MustCompile(`(?i)\b(?:a/c|acct|account)\b\.?\s*(?:no\.?\s*)?[:#]?\s*[x*]+\s*(\d{3,12})\b[^.]{0,40}?\b(?:credited|debited)\b`)
)

// ExtractAccount guesses the instrument a message refers to. Families are tried
// in order: card, bank account, wallet card, then a generic masked account.
func ExtractAccount(sender, body string) *model.PotentialAccount {
	b, known := bank.Resolve(sender, body)

	if acct := cardAccount(body, b, known); acct != nil {
		return acct
	}
	if known {
		if acct := bankAccount(body, b); acct != nil {
			return acct
		}
	}
	if acct := walletAccount(body); acct != nil {
		return acct
	}
	if !known {
		if m := genericAccountRe.FindStringSubmatch(body); m != nil {
			return &model.PotentialAccount{
				FormattedName: FormatAccountName("Bank", m[1]),
				AccountType:   AccountTypeBankAccount,
			}
		}
	}
	return nil
}

// FormatAccountName renders "<name> - xx<last four digits>".
func FormatAccountName(name, digits string) string {
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return name + " - xx" + digits
}

func cardAccount(body string, b bank.Bank, known bool) *model.PotentialAccount {
	for _, loc := range cardRe.FindAllStringSubmatchIndex(body, -1) {
		if strings.Contains(window(body, loc[0], 40), "wallet") {
			continue
		}

		accountType := AccountTypeCard
		if strings.Contains(window(body, loc[0], 20), "credit") {
			accountType = AccountTypeCreditCard
		}

		name := AccountTypeCard
		if known {
			name = b.Name
		}
		return &model.PotentialAccount{
			FormattedName: FormatAccountName(name, body[loc[2]:loc[3]]),
			AccountType:   accountType,
		}
	}
	return nil
}

func bankAccount(body string, b bank.Bank) *model.PotentialAccount {
	m := accountRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	accountType := AccountTypeSavings
	if strings.Contains(strings.ToLower(body), "credit card") {
		accountType = AccountTypeCreditCard
	}
	return &model.PotentialAccount{
		FormattedName: FormatAccountName(b.Name, m[1]),
		AccountType:   accountType,
	}
}

func walletAccount(body string) *model.PotentialAccount {
	m := walletRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	phrase := strings.Join(strings.Fields(m[1]), " ")
	if phrase == "" {
		return nil
	}
	provider := strings.Fields(phrase)[0]
	title := cases.Title(language.English)
	return &model.PotentialAccount{
		FormattedName: FormatAccountName(title.String(provider), m[2]),
		AccountType:   title.String(phrase) + " wallet",
	}
}

// window returns up to n bytes of s ending at i, lower-cased.
func window(s string, i, n int) string {
	start := i - n
	if start < 0 {
		start = 0
	}
	return strings.ToLower(s[start:i])
}
