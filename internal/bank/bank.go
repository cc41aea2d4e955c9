// Package bank maps SMS sender short codes and body literals to canonical bank names.
// The same table backs account naming in the parser and logo lookup in the UI layer.
package bank

import (
	"regexp"
	"sort"
	"strings"
)

// Bank describes an institution that sends transaction SMS.
type Bank struct {
	Name  string   // Canonical display name, e.g. "HDFC Bank"
	Logo  string   // Logo asset key
	Codes []string // Sender short codes without routing prefix
	Words []string // Literals that identify the bank inside a message body
}

var banks = []Bank{
	{Name: "HDFC Bank", Logo: "hdfc", Codes: []string{"HDFCBK", "HDFCBN", "HDFCCC"}, Words: []string{"HDFC Bank", "HDFC"}},
	{Name: "SBI", Logo: "sbi", Codes: []string{"SBIINB", "SBICRD", "SBIPSG", "SBMSMS", "CBSSBI", "ATMSBI", "SBIUPI"}, Words: []string{"State Bank of India", "SBI"}},
	{Name: "ICICI Bank", Logo: "icici", Codes: []string{"ICICIB", "ICICIT", "ICICIO"}, Words: []string{"ICICI Bank", "ICICI"}},
	{Name: "Axis Bank", Logo: "axis", Codes: []string{"AXISBK", "AXISMR", "AXISCC"}, Words: []string{"Axis Bank"}},
	{Name: "Kotak Bank", Logo: "kotak", Codes: []string{"KOTAKB", "KOTAK"}, Words: []string{"Kotak Mahindra Bank", "Kotak"}},
	{Name: "IDFC First Bank", Logo: "idfc", Codes: []string{"IDFCFB", "IDFCBK"}, Words: []string{"IDFC FIRST Bank", "IDFC"}},
	{Name: "Yes Bank", Logo: "yes", Codes: []string{"YESBNK", "YESBK"}, Words: []string{"YES BANK"}},
	{Name: "IndusInd Bank", Logo: "indusind", Codes: []string{"INDUSB", "INDUSL"}, Words: []string{"IndusInd Bank", "IndusInd"}},
	{Name: "Federal Bank", Logo: "federal", Codes: []string{"FEDBNK", "FEDFIB"}, Words: []string{"Federal Bank"}},
	{Name: "PNB", Logo: "pnb", Codes: []string{"PNBSMS", "PUNBNK"}, Words: []string{"Punjab National Bank", "PNB"}},
	{Name: "Bank of Baroda", Logo: "bob", Codes: []string{"BOBTXN", "BOBSMS", "BARODA"}, Words: []string{"Bank of Baroda", "BoB"}},
	{Name: "Bank of India", Logo: "boi", Codes: []string{"BOIIND", "BOISMS"}, Words: []string{"Bank of India"}},
	{Name: "Canara Bank", Logo: "canara", Codes: []string{"CANBNK", "CANARA"}, Words: []string{"Canara Bank"}},
	{Name: "Union Bank", Logo: "union", Codes: []string{"UNIONB", "UBOI"}, Words: []string{"Union Bank of India", "Union Bank"}},
	{Name: "Citibank", Logo: "citi", Codes: []string{"CITIBK", "CITIBA"}, Words: []string{"Citibank", "Citi"}},
	{Name: "Standard Chartered", Logo: "sc", Codes: []string{"SCBANK", "STANCB"}, Words: []string{"Standard Chartered", "StanChart"}},
	{Name: "AU Bank", Logo: "au", Codes: []string{"AUBANK", "AUSFBL"}, Words: []string{"AU Small Finance Bank", "AU Bank"}},
	{Name: "RBL Bank", Logo: "rbl", Codes: []string{"RBLBNK", "RBLCRD"}, Words: []string{"RBL Bank"}},
	{Name: "Paytm Payments Bank", Logo: "paytm", Codes: []string{"PAYTMB", "PYTMBK"}, Words: []string{"Paytm Payments Bank", "Paytm Bank"}},
	{Name: "Airtel Payments Bank", Logo: "airtel", Codes: []string{"AIRBNK", "AIRTBK"}, Words: []string{"Airtel Payments Bank"}},
	{Name: "OneCard", Logo: "onecard", Codes: []string{"OneCrd", "ONECRD"}, Words: []string{"OneCard"}},
	{Name: "Slice", Logo: "slice", Codes: []string{"SLICEIT", "SLCEIT"}, Words: []string{"slice"}},
	{Name: "Pluxee", Logo: "pluxee", Codes: []string{"PLUXEE", "SODEXO"}, Words: []string{"Pluxee", "Sodexo"}},
}

var (
	codeIndex   = buildCodeIndex()
	prefixCodes = buildPrefixCodes(codeIndex)
	wordIndex = buildWordIndex()

	// routingPrefix is the operator/circle header carried by Indian commercial senders,
	// e.g. the "AM-" in "AM-HDFCBK" or the "JD-" in "JD-SBIINB-S".
	routingPrefix = regexp.MustCompile(`^[A-Za-z]{2}-`)
	// routingSuffix is the message category marker appended by newer DLT senders.
	routingSuffix = regexp.MustCompile(`-[SsTtPpGg]$`)
)

type wordEntry struct {
	re   *regexp.Regexp
	bank *Bank
}

func buildCodeIndex() map[string]*Bank {
	idx := make(map[string]*Bank)
	for i := range banks {
		for _, code := range banks[i].Codes {
			idx[strings.ToUpper(code)] = &banks[i]
		}
	}
	return idx
}

// buildPrefixCodes lists the codes usable as prefixes, longest first and then
// alphabetically, so the prefix fallback picks the same bank on every run.
func buildPrefixCodes(idx map[string]*Bank) []string {
	codes := make([]string, 0, len(idx))
	for k := range idx {
		if len(k) >= 5 {
			codes = append(codes, k)
		}
	}
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})
	return codes
}

func buildWordIndex() []wordEntry {
	var entries []wordEntry
	for i := range banks {
		for _, w := range banks[i].Words {
			entries = append(entries, wordEntry{
				re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`),
				bank: &banks[i],
			})
		}
	}
	// Longer literals first so "Bank of India" wins over "India"-style shorter hits.
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].re.String()) > len(entries[j].re.String())
	})
	return entries
}

// ShortCode strips the routing prefix and category suffix from an SMS sender address.
// "AM-HDFCBK" and "JD-HDFCBK-S" both become "HDFCBK".
func ShortCode(sender string) string {
	code := strings.TrimSpace(sender)
	code = routingSuffix.ReplaceAllString(code, "")
	code = routingPrefix.ReplaceAllString(code, "")
	return strings.ToUpper(code)
}

// ForSender resolves the bank behind an SMS sender address.
func ForSender(sender string) (Bank, bool) {
	code := ShortCode(sender)
	if code == "" {
		return Bank{}, false
	}
	if b, ok := codeIndex[code]; ok {
		return *b, true
	}
	// Some senders append a branch or product digit, e.g. "HDFCBK1".
	for _, k := range prefixCodes {
		if strings.HasPrefix(code, k) {
			return *codeIndex[k], true
		}
	}
	return Bank{}, false
}

// FromBody finds the first bank literal mentioned in a message body.
func FromBody(body string) (Bank, bool) {
	bestPos := -1
	var best *Bank
	for _, e := range wordIndex {
		loc := e.re.FindStringIndex(body)
		if loc == nil {
			continue
		}
		if bestPos == -1 || loc[0] < bestPos {
			bestPos = loc[0]
			best = e.bank
		}
	}
	if best == nil {
		return Bank{}, false
	}
	return *best, true
}

// Resolve prefers the sender table and falls back to a literal in the body.
func Resolve(sender, body string) (Bank, bool) {
	if b, ok := ForSender(sender); ok {
		return b, true
	}
	return FromBody(body)
}

// LogoFor returns the logo asset key for a sender, or "" when unknown.
func LogoFor(sender string) string {
	if b, ok := ForSender(sender); ok {
		return b.Logo
	}
	return ""
}

// All returns a copy of the bank table sorted by name.
func All() []Bank {
	out := make([]Bank, len(banks))
	copy(out, banks)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
