package model

import "time"

// MerchantRenameRule maps a parsed merchant name to the name the user prefers.
type MerchantRenameRule struct {
	LastUpdated  time.Time `json:"last_updated"`
	OriginalName string    `json:"original_name"`
	NewName      string    `json:"new_name"`
}

// RenameMap flattens rename rules into the lookup table the parser consumes.
// Later rules win when the same original name appears twice.
func RenameMap(rules []MerchantRenameRule) map[string]string {
	m := make(map[string]string, len(rules))
	for _, r := range rules {
		if r.OriginalName == "" || r.NewName == "" {
			continue
		}
		m[r.OriginalName] = r.NewName
	}
	return m
}
