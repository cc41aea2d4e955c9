// Package inbox loads exported SMS messages from JSON or CSV files.
package inbox

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
)

// Format identifies an input file layout.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q (use .json or .csv)", common.ErrInvalidFormat, filepath.Ext(path))
	}
}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrInvalidFormat, s)
	}
}

// Load reads every message from r. Messages without an ID are numbered by
// position, starting at 1.
func Load(r io.Reader, format Format) ([]model.SmsMessage, error) {
	var (
		msgs []model.SmsMessage
		err  error
	)
	switch format {
	case FormatJSON:
		msgs, err = loadJSON(r)
	case FormatCSV:
		msgs, err = loadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, common.ErrNoMessages
	}

	for i := range msgs {
		if msgs[i].ID == 0 {
			msgs[i].ID = int64(i + 1)
		}
	}
	return msgs, nil
}

func loadJSON(r io.Reader) ([]model.SmsMessage, error) {
	var msgs []model.SmsMessage
	if err := json.NewDecoder(r).Decode(&msgs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode JSON messages: %w", err)
	}
	return msgs, nil
}

// loadCSV reads a file with a header row naming at least sender and body.
// id and timestamp columns are optional.
func loadCSV(r io.Reader) ([]model.SmsMessage, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"sender", "body"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: CSV header is missing %q", common.ErrInvalidFormat, required)
		}
	}

	var msgs []model.SmsMessage
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		msg := model.SmsMessage{
			Sender: field(record, cols, "sender"),
			Body:   field(record, cols, "body"),
		}
		if v := field(record, cols, "id"); v != "" {
			if msg.ID, err = strconv.ParseInt(v, 10, 64); err != nil {
				return nil, fmt.Errorf("line %d: invalid id %q: %w", line, v, err)
			}
		}
		if v := field(record, cols, "timestamp"); v != "" {
			if msg.Timestamp, err = strconv.ParseInt(v, 10, 64); err != nil {
				return nil, fmt.Errorf("line %d: invalid timestamp %q: %w", line, v, err)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
