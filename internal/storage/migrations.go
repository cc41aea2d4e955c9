package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/smsledger/internal/model"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// DefaultIgnorePhrases are seeded as protected BODY_PHRASE rules. Users may
// disable them but not delete them.
var DefaultIgnorePhrases = []string{
	"will be debited",
	"has been declined",
	"is declined",
	"transaction failed",
	"e-mandate",
	"collect request",
	"is scheduled",
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial rule schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS custom_sms_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					trigger_phrase TEXT NOT NULL,
					merchant_regex TEXT,
					amount_regex TEXT,
					account_regex TEXT,
					merchant_name_example TEXT,
					amount_example TEXT,
					account_name_example TEXT,
					priority INTEGER NOT NULL DEFAULT 0,
					source_sms_body TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_custom_sms_rules_priority ON custom_sms_rules(priority DESC, id ASC)`,

				`CREATE TABLE IF NOT EXISTS ignore_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					type TEXT NOT NULL CHECK (type IN ('SENDER', 'BODY_PHRASE')),
					pattern TEXT NOT NULL COLLATE NOCASE,
					is_enabled BOOLEAN NOT NULL DEFAULT 1,
					is_default BOOLEAN NOT NULL DEFAULT 0,
					UNIQUE(type, pattern)
				)`,

				`CREATE TABLE IF NOT EXISTS merchant_rename_rules (
					original_name TEXT PRIMARY KEY COLLATE NOCASE,
					new_name TEXT NOT NULL,
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed default ignore rules",
		Up: func(tx *sql.Tx) error {
			for _, phrase := range DefaultIgnorePhrases {
				if _, err := tx.Exec(
					`INSERT OR IGNORE INTO ignore_rules (type, pattern, is_enabled, is_default) VALUES (?, ?, 1, 1)`,
					string(model.IgnoreBodyPhrase), phrase,
				); err != nil {
					return fmt.Errorf("failed to seed ignore rule %q: %w", phrase, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Track custom rule edits",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TRIGGER update_custom_sms_rules_updated_at
				AFTER UPDATE ON custom_sms_rules
				FOR EACH ROW
				BEGIN
					UPDATE custom_sms_rules SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
				END
			`); err != nil {
				return fmt.Errorf("failed to create updated_at trigger: %w", err)
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
