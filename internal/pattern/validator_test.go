package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
)

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		rule    model.CustomSmsRule
		wantErr bool
	}{
		{
			name: "valid",
			rule: model.CustomSmsRule{TriggerPhrase: "spent", AmountRegex: model.StringPtr(`Rs\s*(\d+)`)},
		},
		{
			name:    "no trigger",
			rule:    model.CustomSmsRule{AmountRegex: model.StringPtr(`Rs\s*(\d+)`)},
			wantErr: true,
		},
		{
			name:    "bad merchant regex",
			rule:    model.CustomSmsRule{TriggerPhrase: "spent", MerchantRegex: model.StringPtr(`at (`)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidRule)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckRule(t *testing.T) {
	rule := model.CustomSmsRule{
		TriggerPhrase: "spent",
		AmountRegex:   model.StringPtr(`Rs\s*(\d+)`),
		MerchantRegex: model.StringPtr(`at (`),
	}

	check := CheckRule(rule, "Rs 40 spent at Tea Stall")
	assert.True(t, check.Trigger)
	assert.True(t, check.Amount.Matched)
	assert.Equal(t, "40", check.Amount.Value)
	assert.True(t, check.Merchant.Set)
	require.Error(t, check.Merchant.Err)
	assert.False(t, check.Account.Set)
	assert.True(t, check.Succeeds())

	assert.False(t, CheckRule(rule, "Rs 40 paid at Tea Stall").Succeeds())
}
