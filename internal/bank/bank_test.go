package bank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortCode(t *testing.T) {
	tests := []struct {
		sender string
		want   string
	}{
		{"AM-HDFCBK", "HDFCBK"},
		{"JD-SBIINB-S", "SBIINB"},
		{"vm-icicib-t", "ICICIB"},
		{"AXISBK", "AXISBK"},
		{"  VK-KOTAKB ", "KOTAKB"},
		{"+919876543210", "+919876543210"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.sender, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortCode(tt.sender))
		})
	}
}

func TestForSender(t *testing.T) {
	tests := []struct {
		sender string
		want   string
		found  bool
	}{
		{"AM-HDFCBK", "HDFC Bank", true},
		{"JD-SBICRD-S", "SBI", true},
		{"BZ-ATMSBI", "SBI", true},
		{"AD-HDFCBK1", "HDFC Bank", true},
		{"AX-PLUXEE", "Pluxee", true},
		{"VM-AMAZON", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.sender, func(t *testing.T) {
			b, ok := ForSender(tt.sender)
			require.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, b.Name)
		})
	}
}

func TestForSender_PrefixFallback(t *testing.T) {
	for i := 1; i < len(prefixCodes); i++ {
		prev, cur := prefixCodes[i-1], prefixCodes[i]
		require.True(t, len(prev) > len(cur) || (len(prev) == len(cur) && prev < cur), "%s before %s", prev, cur)
	}
	assert.NotContains(t, prefixCodes, "UBOI")

	// KOTAK and KOTAKB both prefix the code; the longer one wins.
	assert.Equal(t, "KOTAKB", firstPrefix("KOTAKB9"))
	assert.Equal(t, "KOTAK", firstPrefix("KOTAKX"))

	for range 50 {
		b, ok := ForSender("VM-KOTAKB9")
		require.True(t, ok)
		assert.Equal(t, "Kotak Bank", b.Name)
	}
}

func firstPrefix(code string) string {
	for _, k := range prefixCodes {
		if strings.HasPrefix(code, k) {
			return k
		}
	}
	return ""
}

func TestFromBody(t *testing.T) {
	b, ok := FromBody("Rs.267.00 spent on your SBI Credit Card ending with 3201")
	require.True(t, ok)
	assert.Equal(t, "SBI", b.Name)

	b, ok = FromBody("Your account with HDFC Bank has been debited")
	require.True(t, ok)
	assert.Equal(t, "HDFC Bank", b.Name)

	b, ok = FromBody("Transfer via Bank of India to ICICI")
	require.True(t, ok)
	assert.Equal(t, "Bank of India", b.Name, "earliest mention wins")

	_, ok = FromBody("See you at dinner")
	assert.False(t, ok)

	_, ok = FromBody("SBIN0001234 is an IFSC, not a bank mention")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	b, ok := Resolve("AM-HDFCBK", "spent on your SBI card")
	require.True(t, ok)
	assert.Equal(t, "HDFC Bank", b.Name, "sender wins over body")

	b, ok = Resolve("123456", "spent on your SBI card")
	require.True(t, ok)
	assert.Equal(t, "SBI", b.Name)
}

func TestLogoFor(t *testing.T) {
	assert.Equal(t, "hdfc", LogoFor("AM-HDFCBK"))
	assert.Equal(t, "", LogoFor("AM-UNKNWN"))
}

func TestAll(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}

	all[0].Name = "mutated"
	assert.NotEqual(t, "mutated", All()[0].Name)
}
