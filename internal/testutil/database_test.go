package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smsledger/internal/service"
	"github.com/Veraticus/smsledger/internal/storage"
)

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t, NewRuleBuilder().
		WithCustomRule("Pluxee Meal", `Rs\.?\s*([\d,.]+)`, `at (.+?) on`, 3).
		WithIgnoreSender("VM-OFFERS").
		WithDisabledIgnorePhrase("cashback offer").
		WithRename("AMZN MKTP", "Amazon").
		Rules())

	require.Len(t, db.Rules.CustomRules, 1)
	assert.Positive(t, db.Rules.CustomRules[0].ID)
	require.Len(t, db.Rules.IgnoreRules, 2)
	assert.Positive(t, db.Rules.IgnoreRules[1].ID)

	snap := db.MustSnapshot()
	require.Len(t, snap.CustomRules, 1)
	assert.Equal(t, 3, snap.CustomRules[0].Priority)
	assert.Len(t, snap.IgnoreRules, len(storage.DefaultIgnorePhrases)+2)
	assert.Equal(t, map[string]string{"AMZN MKTP": "Amazon"}, snap.Renames)

	for _, r := range snap.IgnoreRules {
		if r.Pattern == "cashback offer" {
			assert.False(t, r.IsEnabled)
		}
	}
}

func TestSetupTestDBWithOptions_CustomSetup(t *testing.T) {
	called := false
	db := SetupTestDBWithOptions(t, TestDBOptions{
		CustomSetup: func(ctx context.Context, s service.Storage) error {
			called = true
			return s.SetMerchantRename(ctx, "SWIGGY", "Swiggy")
		},
	})

	assert.True(t, called)
	assert.Equal(t, "Swiggy", db.MustSnapshot().Renames["SWIGGY"])
}

func TestRules_SeedInvalid(t *testing.T) {
	db := SetupTestDB(t, Rules{})

	_, err := NewRuleBuilder().WithCustomRule("spent", "", "", 0).Rules().Seed(context.Background(), db.Storage)
	assert.Error(t, err)
}
