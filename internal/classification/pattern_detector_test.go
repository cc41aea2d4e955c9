package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatternDetector(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		patterns []Pattern
		wantErr  bool
	}{
		{
			name: "valid patterns",
			patterns: []Pattern{
				{Name: "Debit", Type: PatternTypeDebit, Regex: `debited`, Priority: 10},
				{Name: "OTP", Type: PatternTypeIgnore, Regex: `otp`, Priority: 100},
			},
		},
		{
			name:     "invalid regex",
			patterns: []Pattern{{Name: "Bad Pattern", Type: PatternTypeIgnore, Regex: `[invalid regex`}},
			wantErr:  true,
			errMsg:   "failed to compile pattern",
		},
		{
			name:     "empty patterns",
			patterns: []Pattern{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd, err := NewPatternDetector(tt.patterns)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.patterns), pd.GetPatternCount())
		})
	}
}

func TestPatternDetector_PriorityOrder(t *testing.T) {
	pd, err := NewPatternDetector([]Pattern{
		{Name: "Low", Type: PatternTypeIgnore, Regex: `offer`, Priority: 10},
		{Name: "High", Type: PatternTypeIgnore, Regex: `offer`, Priority: 100},
	})
	require.NoError(t, err)

	m := pd.Ignored("special OFFER inside")
	require.NotNil(t, m)
	assert.Equal(t, "High", m.PatternName)
}

func TestPatternDetector_Classify(t *testing.T) {
	pd := MustDefault()

	tests := []struct {
		name string
		body string
		want Direction
	}{
		{"debited", "Your a/c XX1234 is debited for Rs 500", DirectionDebit},
		{"spent", "Rs.267.00 spent on your SBI Credit Card ending with 3201", DirectionDebit},
		{"purchase of", "Purchase of INR 99 made on card 4455", DirectionDebit},
		{"credited", "INR 1,000 credited to your account", DirectionCredit},
		{"credit of", "You have received a credit of INR 5,000.00 from Freelance Client.", DirectionCredit},
		{"both", "Rs 500 debited from A/c XX12 and credited to A/c XX34", DirectionAmbiguous},
		{"none", "See you at dinner tonight", DirectionNone},
		{"whole words only", "The unpaid creditor", DirectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pd.Classify(tt.body))
		})
	}
}

func TestPatternDetector_Ignored(t *testing.T) {
	pd := MustDefault()

	tests := []struct {
		name    string
		body    string
		want    string
		ignored bool
	}{
		{"otp", "123456 is your OTP for login. Do not share.", "OTP", true},
		{"otp is", "Your OTP is 4321 for txn of Rs 500", "OTP", true},
		{"invoice raised", "An Invoice of Rs.330.8 for A4 Block-108 is raised. Pay at https://nbhd.co/x", "Invoice Raised", true},
		{"card payment received", "Payment of INR 1180.01 has been received towards your SBI card XX1121", "Card Payment Received", true},
		{"aggregator", "Payment of Rs 450 for electricity bill via BillDesk is successful", "Aggregator Payment Successful", true},
		{"dues", "Your credit card bill of Rs 5000 is due on 05-Jul", "Dues Reminder", true},
		{"collect request", "JOHN has requested money from you on Google Pay", "Collect Request", true},
		{"promo", "You are pre-approved for a personal loan. Apply now!", "Promotional", true},
		{"payer side transfer", "Rs 500 has been credited to RAHUL KUMAR on 01-07-25", "Transfer Confirmation", true},
		{"own account credit", "Rs 500 has been credited to your A/c XX1234", "", false},
		{"short acc credit", "Rs 5000 has been credited to Acc XX1234 on 01-07-25", "", false},
		{"ur a/c credit", "INR 2,000.00 has been credited to ur a/c XX1234 on 01-07-25", "", false},
		{"the a/c credit", "Rs.1000 has been credited to the A/c XX1234 on 01-07-25", "", false},
		{"masked account credit", "Rs 300 has been credited to **5678 via UPI", "", false},
		{"plain debit", "Your account with HDFC Bank has been debited for Rs. 750.50 at Amazon on 22-Jun-2025.", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pd.Ignored(tt.body)
			if !tt.ignored {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.want, m.PatternName)
			assert.Equal(t, PatternTypeIgnore, m.Type)
		})
	}
}

func TestIsTransferConfirmation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"payee name", "Rs 500 has been credited to RAHUL KUMAR on 01-07-25", true},
		{"payee vpa", "Rs 500 was credited to rahul@okaxis", true},
		{"your account", "Rs 500 has been credited to your account", false},
		{"my wallet", "Rs 50 is credited to my wallet", false},
		{"acc digits", "Rs 5000 has been credited to Acc XX1234", false},
		{"ac dot", "Rs 5000 has been credited to A/c. XX1234", false},
		{"the card", "Rs 99 has been credited to the card ending 4455", false},
		{"masked x", "Rs 99 has been credited to x4455", false},
		{"no phrase", "Rs 99 credited to your a/c", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransferConfirmation(tt.body))
		})
	}
}

func TestUpdatePatterns(t *testing.T) {
	pd, err := NewPatternDetector(nil)
	require.NoError(t, err)
	assert.Equal(t, DirectionNone, pd.Classify("Rs 10 debited"))

	require.NoError(t, pd.UpdatePatterns(DefaultPatterns()))
	assert.Equal(t, DirectionDebit, pd.Classify("Rs 10 debited"))

	assert.Error(t, pd.UpdatePatterns([]Pattern{{Name: "bad", Regex: `(`}}))
	assert.Equal(t, DirectionDebit, pd.Classify("Rs 10 debited"), "failed update keeps old patterns")
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "debit", DirectionDebit.String())
	assert.Equal(t, "credit", DirectionCredit.String())
	assert.Equal(t, "ambiguous", DirectionAmbiguous.String())
	assert.Equal(t, "none", DirectionNone.String())
}
