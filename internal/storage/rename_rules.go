package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
)

// SetMerchantRename creates or replaces the preferred name for a parsed merchant.
func (s *SQLiteStorage) SetMerchantRename(ctx context.Context, originalName, newName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(originalName, "originalName"); err != nil {
		return err
	}
	if err := validateString(newName, "newName"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merchant_rename_rules (original_name, new_name, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(original_name) DO UPDATE SET
			new_name = excluded.new_name,
			last_updated = excluded.last_updated
	`, strings.TrimSpace(originalName), strings.TrimSpace(newName), time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return fmt.Errorf("failed to save merchant rename: %w", err)
	}
	return nil
}

// GetMerchantRenameRules retrieves all rename rules ordered by original name.
func (s *SQLiteStorage) GetMerchantRenameRules(ctx context.Context) ([]model.MerchantRenameRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return queryRenameRules(ctx, s.db)
}

func queryRenameRules(ctx context.Context, q querier) ([]model.MerchantRenameRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT original_name, new_name, last_updated
		FROM merchant_rename_rules
		ORDER BY original_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant renames: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.MerchantRenameRule
	for rows.Next() {
		var rule model.MerchantRenameRule
		if err := rows.Scan(&rule.OriginalName, &rule.NewName, &rule.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan merchant rename: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// GetMerchantRenameMap returns the rename rules as a lookup table.
func (s *SQLiteStorage) GetMerchantRenameMap(ctx context.Context) (map[string]string, error) {
	rules, err := s.GetMerchantRenameRules(ctx)
	if err != nil {
		return nil, err
	}
	return model.RenameMap(rules), nil
}

// DeleteMerchantRename removes the rename rule for originalName.
func (s *SQLiteStorage) DeleteMerchantRename(ctx context.Context, originalName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(originalName, "originalName"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM merchant_rename_rules WHERE original_name = ?`, strings.TrimSpace(originalName))
	if err != nil {
		return fmt.Errorf("failed to delete merchant rename: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("merchant rename %q: %w", originalName, err)
	}
	return nil
}
