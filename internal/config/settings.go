// Package config loads smsledger settings through Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/extract"
	"github.com/Veraticus/smsledger/internal/parser"
	"github.com/Veraticus/smsledger/internal/pattern"
)

// Configuration keys.
const (
	KeyDatabasePath   = "database.path"
	KeyHomeCurrency   = "parser.home_currency"
	KeyMaxBodyLength  = "parser.max_body_length"
	KeyRegexCacheSize = "parser.regex_cache_size"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

// ParserSettings holds the tunables handed to parser.New.
type ParserSettings struct {
	HomeCurrency   string
	MaxBodyLength  int
	RegexCacheSize int
}

// DefaultParserSettings returns the settings used when nothing is configured.
func DefaultParserSettings() ParserSettings {
	return ParserSettings{
		HomeCurrency:   parser.DefaultHomeCurrency,
		MaxBodyLength:  parser.DefaultMaxBodyLength,
		RegexCacheSize: pattern.DefaultCacheSize,
	}
}

// Validate checks that every setting is usable.
func (s ParserSettings) Validate() error {
	if !extract.IsCurrencyCode(s.HomeCurrency) {
		return fmt.Errorf("%w: unknown home currency %q", common.ErrInvalidConfig, s.HomeCurrency)
	}
	if s.MaxBodyLength < 160 {
		return fmt.Errorf("%w: max body length must be at least 160, got %d", common.ErrInvalidConfig, s.MaxBodyLength)
	}
	if s.RegexCacheSize < 1 {
		return fmt.Errorf("%w: regex cache size must be positive, got %d", common.ErrInvalidConfig, s.RegexCacheSize)
	}
	return nil
}

// Options converts the settings into parser options.
func (s ParserSettings) Options() []parser.Option {
	return []parser.Option{
		parser.WithHomeCurrency(s.HomeCurrency),
		parser.WithMaxBodyLength(s.MaxBodyLength),
		parser.WithRegexCacheSize(s.RegexCacheSize),
	}
}

// LoadParserSettings reads parser settings from Viper.
// It follows this precedence:
// 1. Viper configuration (from config file or SMSLEDGER_ env vars)
// 2. Default values
func LoadParserSettings() (ParserSettings, error) {
	settings := DefaultParserSettings()

	if v := strings.TrimSpace(viper.GetString(KeyHomeCurrency)); v != "" {
		settings.HomeCurrency = strings.ToUpper(v)
	}
	if viper.IsSet(KeyMaxBodyLength) {
		settings.MaxBodyLength = viper.GetInt(KeyMaxBodyLength)
	}
	if viper.IsSet(KeyRegexCacheSize) {
		settings.RegexCacheSize = viper.GetInt(KeyRegexCacheSize)
	}

	if err := settings.Validate(); err != nil {
		return ParserSettings{}, err
	}
	return settings, nil
}

// DefaultDatabasePath returns $HOME/.local/share/smsledger/smsledger.db.
func DefaultDatabasePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "smsledger", "smsledger.db"), nil
}

// DatabasePath resolves the configured database path, falling back to the default.
func DatabasePath() (string, error) {
	if p := viper.GetString(KeyDatabasePath); p != "" {
		return ExpandPath(p), nil
	}
	return DefaultDatabasePath()
}

// ExpandPath resolves a leading ~ and $VAR references in a configured path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}
