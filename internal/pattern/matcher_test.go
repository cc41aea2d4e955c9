package pattern

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smsledger/internal/model"
)

func TestCustomMatcher_TryCustomRules(t *testing.T) {
	pluxee := model.SmsMessage{
		ID:     1,
		Sender: "AX-PLUXEE",
		Body:   "Rs 120 spent from Pluxee Meal wallet, card no.xx1345 at CAFE COFFEE DAY on 01-07-25",
	}

	tests := []struct {
		name         string
		wantMerchant *string
		wantAccount  *string
		rules        []model.CustomSmsRule
		wantAmount   string
		wantRuleID   int64
		wantMatch    bool
	}{
		{
			name: "full rule",
			rules: []model.CustomSmsRule{{
				ID:            1,
				TriggerPhrase: "pluxee meal",
				AmountRegex:   model.StringPtr(`Rs\s*([\d,.]+)`),
				MerchantRegex: model.StringPtr(`at\s+(.+?)\s+on`),
				AccountRegex:  model.StringPtr(`card no\.(xx\d+)`),
			}},
			wantMatch:    true,
			wantRuleID:   1,
			wantAmount:   "120",
			wantMerchant: model.StringPtr("CAFE COFFEE DAY"),
			wantAccount:  model.StringPtr("xx1345"),
		},
		{
			name: "trigger missing",
			rules: []model.CustomSmsRule{{
				ID:            1,
				TriggerPhrase: "sodexo",
				AmountRegex:   model.StringPtr(`Rs\s*([\d,.]+)`),
			}},
		},
		{
			name: "no amount means no match",
			rules: []model.CustomSmsRule{{
				ID:            1,
				TriggerPhrase: "pluxee",
				MerchantRegex: model.StringPtr(`at\s+(.+?)\s+on`),
			}},
		},
		{
			name: "bad regex is skipped",
			rules: []model.CustomSmsRule{
				{ID: 1, TriggerPhrase: "pluxee", AmountRegex: model.StringPtr(`Rs\s*([\d`), Priority: 10},
				{ID: 2, TriggerPhrase: "pluxee", AmountRegex: model.StringPtr(`Rs\s*(\d+)`), Priority: 1},
			},
			wantMatch:  true,
			wantRuleID: 2,
			wantAmount: "120",
		},
		{
			name: "higher priority wins",
			rules: []model.CustomSmsRule{
				{ID: 1, TriggerPhrase: "pluxee", AmountRegex: model.StringPtr(`Rs\s*(\d+)`), MerchantRegex: model.StringPtr(`(Pluxee)`), Priority: 1},
				{ID: 2, TriggerPhrase: "pluxee", AmountRegex: model.StringPtr(`Rs\s*(\d+)`), MerchantRegex: model.StringPtr(`at\s+(\w+)`), Priority: 5},
			},
			wantMatch:    true,
			wantRuleID:   2,
			wantAmount:   "120",
			wantMerchant: model.StringPtr("CAFE"),
		},
		{
			name: "equal priority prefers lower id",
			rules: []model.CustomSmsRule{
				{ID: 9, TriggerPhrase: "pluxee", AmountRegex: model.StringPtr(`Rs\s*(\d+)`)},
				{ID: 3, TriggerPhrase: "pluxee", AmountRegex: model.StringPtr(`Rs\s*(\d+)`)},
			},
			wantMatch:  true,
			wantRuleID: 3,
			wantAmount: "120",
		},
		{
			name: "unparseable amount falls through",
			rules: []model.CustomSmsRule{
				{ID: 1, TriggerPhrase: "pluxee", AmountRegex: model.StringPtr(`(Pluxee)`), Priority: 9},
				{ID: 2, TriggerPhrase: "pluxee", AmountRegex: model.StringPtr(`Rs\s*(\d+)`)},
			},
			wantMatch:  true,
			wantRuleID: 2,
			wantAmount: "120",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(8, nil)
			got := m.TryCustomRules(pluxee, tt.rules)
			if !tt.wantMatch {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantRuleID, got.RuleID)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(got.Amount))
			assert.Equal(t, tt.wantMerchant, got.Merchant)
			assert.Equal(t, tt.wantAccount, got.Account)
		})
	}
}

func TestSortRules_DoesNotMutateInput(t *testing.T) {
	rules := []model.CustomSmsRule{{ID: 1, Priority: 1}, {ID: 2, Priority: 5}}
	sorted := SortRules(rules)
	assert.Equal(t, int64(2), sorted[0].ID)
	assert.Equal(t, int64(1), rules[0].ID)
}

func TestRegexCache(t *testing.T) {
	c := newRegexCache(2)

	re1, err := c.get(1, `a`)
	require.NoError(t, err)
	again, err := c.get(1, `a`)
	require.NoError(t, err)
	assert.Same(t, re1, again)

	_, err = c.get(2, `(`)
	assert.Error(t, err)
	_, err = c.get(2, `(`)
	assert.Error(t, err, "compile failures are cached too")

	_, err = c.get(3, `b`)
	require.NoError(t, err)
	assert.Equal(t, 2, c.len())

	evicted, err := c.get(1, `a`)
	require.NoError(t, err)
	assert.NotSame(t, re1, evicted, "oldest entry was evicted")
}

func TestRegexCache_EditedPatternMisses(t *testing.T) {
	c := newRegexCache(0)
	a, err := c.get(1, `old`)
	require.NoError(t, err)
	b, err := c.get(1, `new`)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.True(t, b.MatchString("NEW"))
}

func TestCustomMatcher_Concurrent(t *testing.T) {
	m := NewMatcher(4, nil)
	msg := model.SmsMessage{Body: "Rs 50 spent via Pluxee"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rule := model.CustomSmsRule{
				ID:            int64(i % 6),
				TriggerPhrase: "pluxee",
				AmountRegex:   model.StringPtr(fmt.Sprintf(`Rs\s*(\d+)(?:x{0,%d})`, i)),
			}
			got := m.TryCustomRules(msg, []model.CustomSmsRule{rule})
			if assert.NotNil(t, got) {
				assert.True(t, decimal.NewFromInt(50).Equal(got.Amount))
			}
		}(i)
	}
	wg.Wait()
}
