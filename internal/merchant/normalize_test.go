package merchant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "plain", raw: "Amazon", want: "Amazon", ok: true},
		{name: "trailing underscore", raw: "MC DONALDS_", want: "MC DONALDS", ok: true},
		{name: "collapses whitespace", raw: "  HALLI \t THOTA  ", want: "HALLI THOTA", ok: true},
		{name: "vpa prefix", raw: "VPA swiggy@ybl", want: "swiggy@ybl", ok: true},
		{name: "upi prefix", raw: "UPI-ZOMATO LTD", want: "ZOMATO LTD", ok: true},
		{name: "not you tail", raw: "Big Bazaar Not You? Call 18002586161", want: "Big Bazaar", ok: true},
		{name: "avl bal tail", raw: "CAFE DAY Avl Bal Rs 200", want: "CAFE DAY", ok: true},
		{name: "dispute tail", raw: "Uber India. Dispute? SMS", want: "Uber India", ok: true},
		{name: "to block tail", raw: "Flipkart To Block card", want: "Flipkart", ok: true},
		{name: "emoji", raw: "Chai Point ☕", want: "Chai Point", ok: true},
		{name: "only disclaimer", raw: "Not you?", ok: false},
		{name: "only punctuation", raw: "__..", ok: false},
		{name: "empty", raw: "", ok: false},
		{name: "keeps case", raw: "FreshMenu", want: "FreshMenu", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			require.Equal(t, tt.ok, ok, "got %q", got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Truncates(t *testing.T) {
	raw := strings.Repeat("Merchant ", 10)
	got, ok := Normalize(raw)
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(got)), MaxLength)
	assert.False(t, strings.HasSuffix(got, " "))
	assert.True(t, strings.HasSuffix(got, "Merchant"), "cut on a word boundary: %q", got)
}

func TestRename(t *testing.T) {
	renames := map[string]string{
		"AMZN":     "Amazon",
		"swiggy":   "Swiggy",
		"Swiggy":   "Swiggy Food",
		"HALLI TH": "",
	}

	tests := []struct {
		name    string
		in      string
		want    string
		renamed bool
	}{
		{"exact", "AMZN", "Amazon", true},
		{"case insensitive", "amzn", "Amazon", true},
		{"exact beats folded", "swiggy", "Swiggy", true},
		{"collision resolves to smallest key", "SWIGGY", "Swiggy Food", true},
		{"empty target ignored", "HALLI TH", "HALLI TH", false},
		{"no match", "Zomato", "Zomato", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Rename(tt.in, renames)
			assert.Equal(t, tt.renamed, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	got, ok := Rename("AMZN", nil)
	assert.False(t, ok)
	assert.Equal(t, "AMZN", got)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "amazon", Key("  Amazon "))
}
