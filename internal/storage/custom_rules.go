package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
)

const customRuleColumns = `id, trigger_phrase, merchant_regex, amount_regex, account_regex,
	merchant_name_example, amount_example, account_name_example,
	priority, source_sms_body, created_at, updated_at`

// CreateCustomRule stores a new custom rule and fills in its ID and timestamps.
func (s *SQLiteStorage) CreateCustomRule(ctx context.Context, rule *model.CustomSmsRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCustomRule(rule); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Second)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_sms_rules (
			trigger_phrase, merchant_regex, amount_regex, account_regex,
			merchant_name_example, amount_example, account_name_example,
			priority, source_sms_body, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		strings.TrimSpace(rule.TriggerPhrase), rule.MerchantRegex, rule.AmountRegex, rule.AccountRegex,
		rule.MerchantNameExample, rule.AmountExample, rule.AccountNameExample,
		rule.Priority, rule.SourceSmsBody, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create custom rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get custom rule ID: %w", err)
	}

	rule.ID = id
	rule.TriggerPhrase = strings.TrimSpace(rule.TriggerPhrase)
	rule.CreatedAt = now
	rule.UpdatedAt = now
	return nil
}

// GetCustomRule retrieves a custom rule by ID.
func (s *SQLiteStorage) GetCustomRule(ctx context.Context, id int64) (*model.CustomSmsRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+customRuleColumns+` FROM custom_sms_rules WHERE id = ?`, id)
	rule, err := scanCustomRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("custom rule %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custom rule: %w", err)
	}
	return rule, nil
}

// GetCustomRules retrieves all custom rules, highest priority first.
func (s *SQLiteStorage) GetCustomRules(ctx context.Context) ([]model.CustomSmsRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return queryCustomRules(ctx, s.db)
}

func queryCustomRules(ctx context.Context, q querier) ([]model.CustomSmsRule, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+customRuleColumns+` FROM custom_sms_rules ORDER BY priority DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CustomSmsRule
	for rows.Next() {
		rule, err := scanCustomRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custom rule: %w", err)
		}
		rules = append(rules, *rule)
	}

	return rules, rows.Err()
}

// UpdateCustomRule replaces every editable field of an existing rule.
func (s *SQLiteStorage) UpdateCustomRule(ctx context.Context, rule *model.CustomSmsRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCustomRule(rule); err != nil {
		return err
	}
	if err := validateID(rule.ID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE custom_sms_rules SET
			trigger_phrase = ?, merchant_regex = ?, amount_regex = ?, account_regex = ?,
			merchant_name_example = ?, amount_example = ?, account_name_example = ?,
			priority = ?, source_sms_body = ?
		WHERE id = ?
	`,
		strings.TrimSpace(rule.TriggerPhrase), rule.MerchantRegex, rule.AmountRegex, rule.AccountRegex,
		rule.MerchantNameExample, rule.AmountExample, rule.AccountNameExample,
		rule.Priority, rule.SourceSmsBody, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update custom rule: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("custom rule %d: %w", rule.ID, err)
	}
	return nil
}

// DeleteCustomRule removes a custom rule.
func (s *SQLiteStorage) DeleteCustomRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM custom_sms_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete custom rule: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("custom rule %d: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomRule(row scanner) (*model.CustomSmsRule, error) {
	var rule model.CustomSmsRule
	var merchantRe, amountRe, accountRe sql.NullString
	var merchantEx, amountEx, accountEx sql.NullString

	err := row.Scan(
		&rule.ID, &rule.TriggerPhrase, &merchantRe, &amountRe, &accountRe,
		&merchantEx, &amountEx, &accountEx,
		&rule.Priority, &rule.SourceSmsBody, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.MerchantRegex = nullStringPtr(merchantRe)
	rule.AmountRegex = nullStringPtr(amountRe)
	rule.AccountRegex = nullStringPtr(accountRe)
	rule.MerchantNameExample = nullStringPtr(merchantEx)
	rule.AmountExample = nullStringPtr(amountEx)
	rule.AccountNameExample = nullStringPtr(accountEx)
	return &rule, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
