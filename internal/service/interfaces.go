// Package service defines the interfaces shared by the engine, storage and CLI.
package service

import (
	"context"

	"github.com/Veraticus/smsledger/internal/model"
)

// RuleSnapshot is an immutable view of every user rule, taken at one point in time.
type RuleSnapshot struct {
	Renames     map[string]string
	CustomRules []model.CustomSmsRule
	IgnoreRules []model.IgnoreRule
}

// RuleStore supplies the rule collections the parser reads.
type RuleStore interface {
	// GetCustomRules returns custom rules ordered by priority (highest first), then ID.
	GetCustomRules(ctx context.Context) ([]model.CustomSmsRule, error)
	// GetIgnoreRules returns every ignore rule, enabled or not.
	GetIgnoreRules(ctx context.Context) ([]model.IgnoreRule, error)
	// GetMerchantRenameMap returns original name to preferred name.
	GetMerchantRenameMap(ctx context.Context) (map[string]string, error)
	// Snapshot reads all three collections consistently.
	Snapshot(ctx context.Context) (*RuleSnapshot, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	RuleStore

	// Custom rule operations
	CreateCustomRule(ctx context.Context, rule *model.CustomSmsRule) error
	GetCustomRule(ctx context.Context, id int64) (*model.CustomSmsRule, error)
	UpdateCustomRule(ctx context.Context, rule *model.CustomSmsRule) error
	DeleteCustomRule(ctx context.Context, id int64) error

	// Ignore rule operations
	CreateIgnoreRule(ctx context.Context, rule *model.IgnoreRule) error
	GetIgnoreRule(ctx context.Context, id int64) (*model.IgnoreRule, error)
	SetIgnoreRuleEnabled(ctx context.Context, id int64, enabled bool) error
	DeleteIgnoreRule(ctx context.Context, id int64) error

	// Merchant rename operations
	SetMerchantRename(ctx context.Context, originalName, newName string) error
	GetMerchantRenameRules(ctx context.Context) ([]model.MerchantRenameRule, error)
	DeleteMerchantRename(ctx context.Context, originalName string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
