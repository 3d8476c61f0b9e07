// Package translate resolves filter identifiers to operator-facing display
// text. Lookup is best effort: identifiers without a table entry come back
// unchanged, so predicate generation never fails on a missing translation.
package translate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table maps identifiers to display text.
type Table struct {
	entries map[string]string
}

// NewTable creates a table from the given entries. A nil map is allowed.
func NewTable(entries map[string]string) *Table {
	merged := make(map[string]string, len(defaultEntries)+len(entries))
	for k, v := range defaultEntries {
		merged[k] = v
	}
	for k, v := range entries {
		merged[k] = v
	}
	return &Table{entries: merged}
}

// LoadTable reads a translation table from a YAML file of identifier:
// display-text pairs and merges it over the built-in defaults.
func LoadTable(path string) (*Table, error) {
	// #nosec G304 -- Path is from configuration, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file: %w", err)
	}
	var entries map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse translation YAML: %w", err)
	}
	return NewTable(entries), nil
}

// Translate returns the display text for identifier, or the identifier
// itself when no entry exists.
func (t *Table) Translate(identifier string) string {
	if t == nil {
		return identifier
	}
	if text, ok := t.entries[identifier]; ok {
		return text
	}
	return identifier
}

// defaultEntries covers the well-known alarm state and band identifiers so a
// deployment without a translation file still renders sensible predicates.
var defaultEntries = map[string]string{
	"HighHighState":      "HighHigh",
	"HighState":          "High",
	"HighHighHighState":  "HighHigh High",
	"LowLowState":        "LowLow",
	"LowLowLowState":     "LowLow Low",
	"LowState":           "Low",
	"ActiveStateDigital": "Active",
	"InactiveState":      "Inactive",
	"UrgentSeverity":     "Urgent",
	"HighSeverity":       "High",
	"MediumSeverity":     "Medium",
	"LowSeverity":        "Low",
}
