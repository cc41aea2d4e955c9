// Package testutil provides database fixtures for tests that need real rule storage.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/smsledger/internal/service"
	"github.com/Veraticus/smsledger/internal/storage"
)

// TestDB is a migrated in-memory database seeded with rules.
type TestDB struct {
	Storage service.Storage
	Rules   Rules
	t       *testing.T
}

// SetupTestDB creates a new in-memory database, migrates it and seeds rules.
// The database is closed when the test finishes.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.NewRuleBuilder().
//		WithRename("AMZN MKTP", "Amazon").
//		WithIgnorePhrase("cashback offer").
//		Rules())
func SetupTestDB(t *testing.T, rules Rules) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Rules: rules})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Rules          Rules
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		seeded, err := opts.Rules.Seed(ctx, store)
		if err != nil {
			t.Fatalf("failed to seed rules: %v", err)
		}
		opts.Rules = seeded
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		Rules:   opts.Rules,
		t:       t,
	}
}

// MustSnapshot reads the current rules or fails the test.
func (db *TestDB) MustSnapshot() *service.RuleSnapshot {
	db.t.Helper()
	snap, err := db.Storage.Snapshot(context.Background())
	if err != nil {
		db.t.Fatalf("failed to snapshot rules: %v", err)
	}
	return snap
}
