package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
)

// CreateIgnoreRule stores a user ignore rule. User rules are never defaults.
func (s *SQLiteStorage) CreateIgnoreRule(ctx context.Context, rule *model.IgnoreRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIgnoreRule(rule); err != nil {
		return err
	}

	pattern := strings.TrimSpace(rule.Pattern)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO ignore_rules (type, pattern, is_enabled, is_default)
		VALUES (?, ?, ?, 0)
	`, string(rule.Type), pattern, rule.IsEnabled)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ignore rule %s %q: %w", rule.Type, pattern, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create ignore rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get ignore rule ID: %w", err)
	}

	rule.ID = id
	rule.Pattern = pattern
	rule.IsDefault = false
	return nil
}

// GetIgnoreRule retrieves an ignore rule by ID.
func (s *SQLiteStorage) GetIgnoreRule(ctx context.Context, id int64) (*model.IgnoreRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	var rule model.IgnoreRule
	var ruleType string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, pattern, is_enabled, is_default
		FROM ignore_rules
		WHERE id = ?
	`, id).Scan(&rule.ID, &ruleType, &rule.Pattern, &rule.IsEnabled, &rule.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ignore rule %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ignore rule: %w", err)
	}
	rule.Type = model.IgnoreRuleType(ruleType)
	return &rule, nil
}

// GetIgnoreRules retrieves every ignore rule, defaults first.
func (s *SQLiteStorage) GetIgnoreRules(ctx context.Context) ([]model.IgnoreRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return queryIgnoreRules(ctx, s.db)
}

func queryIgnoreRules(ctx context.Context, q querier) ([]model.IgnoreRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, type, pattern, is_enabled, is_default
		FROM ignore_rules
		ORDER BY is_default DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ignore rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.IgnoreRule
	for rows.Next() {
		var rule model.IgnoreRule
		var ruleType string
		if err := rows.Scan(&rule.ID, &ruleType, &rule.Pattern, &rule.IsEnabled, &rule.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan ignore rule: %w", err)
		}
		rule.Type = model.IgnoreRuleType(ruleType)
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// SetIgnoreRuleEnabled toggles a rule. Default rules may be disabled but not deleted.
func (s *SQLiteStorage) SetIgnoreRuleEnabled(ctx context.Context, id int64, enabled bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE ignore_rules SET is_enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return fmt.Errorf("failed to update ignore rule: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("ignore rule %d: %w", id, err)
	}
	return nil
}

// DeleteIgnoreRule removes a user ignore rule. Deleting a default rule fails
// with common.ErrDefaultRuleProtected.
func (s *SQLiteStorage) DeleteIgnoreRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var isDefault bool
	err = tx.QueryRowContext(ctx, `SELECT is_default FROM ignore_rules WHERE id = ?`, id).Scan(&isDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ignore rule %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up ignore rule: %w", err)
	}
	if isDefault {
		return fmt.Errorf("ignore rule %d: %w", id, common.ErrDefaultRuleProtected)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ignore_rules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete ignore rule: %w", err)
	}

	return tx.Commit()
}
