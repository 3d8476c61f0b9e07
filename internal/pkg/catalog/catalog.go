// Package catalog defines the supported filter attributes and the rules
// that turn a checked filter into a predicate fragment. The override table
// is immutable and injected; composition never mutates it.
package catalog

import (
	"strings"

	"github.com/opgrid/alarmlens/internal/pkg/translate"
)

// Attribute is a filter category exposed to operators.
type Attribute string

const (
	AttrName       Attribute = "Name"
	AttrMessage    Attribute = "Message"
	AttrClass      Attribute = "Class"
	AttrGroup      Attribute = "Group"
	AttrSeverity   Attribute = "Severity"
	AttrEventTime  Attribute = "EventTime"
	AttrAlarmState Attribute = "AlarmState"
	AttrStatus     Attribute = "Status"
)

// Severity bounds used when no explicit range is stored.
const (
	SeverityMin = 1
	SeverityMax = 1000
)

// Structural field names shared by the schema, instances, and filter sets.
const (
	FieldFromEventTime = "FromEventTime"
	FieldToEventTime   = "ToEventTime"
	FieldFromSeverity  = "FromSeverity"
	FieldToSeverity    = "ToSeverity"
	CheckedSuffix      = "Checked"
	ConfigVisibleLeaf  = "Visible"
)

// attributeOrder fixes the order attributes appear in configuration trees,
// schema types, and composed predicates.
var attributeOrder = []Attribute{
	AttrName,
	AttrMessage,
	AttrClass,
	AttrGroup,
	AttrSeverity,
	AttrEventTime,
	AttrAlarmState,
	AttrStatus,
}

// columns maps attributes to the record-store column they filter on.
var columns = map[Attribute]string{
	AttrName:       "RAAlarmData.AlarmName",
	AttrMessage:    "RAAlarmData.Message",
	AttrClass:      "RAAlarmData.AlarmClass",
	AttrGroup:      "RAAlarmData.AlarmGroup",
	AttrSeverity:   "RAAlarmData.Severity",
	AttrEventTime:  "RAAlarmData.EventTime",
	AttrAlarmState: "RAAlarmData.AlarmState",
	AttrStatus:     "RAAlarmData.Status",
}

// stateVariants maps an alarm-state checkbox identifier to the identifiers
// of every classification it matches. States are not mutually exclusive:
// a combined HighHigh+High alarm must be matched by both the HighHigh and
// the High checkbox, so each entry lists display-text variants for an
// IN-style disjunction.
var stateVariants = map[string][]string{
	"HighHighState":      {"HighHighState", "HighHighHighState"},
	"HighState":          {"HighState", "HighHighHighState"},
	"LowLowState":        {"LowLowState", "LowLowLowState"},
	"LowState":           {"LowState", "LowLowLowState"},
	"ActiveStateDigital": {"ActiveStateDigital"},
	"InactiveState":      {"InactiveState"},
}

// defaultOverrides is the hand-authored fragment table for well-known
// identifiers. An empty fragment means the identifier is handled
// structurally (range bounds) and contributes no leaf predicate.
var defaultOverrides = map[Attribute]map[string]string{
	AttrSeverity: {
		"UrgentSeverity":  "RAAlarmData.Severity >= 751 AND RAAlarmData.Severity <= 1000",
		"HighSeverity":    "RAAlarmData.Severity >= 501 AND RAAlarmData.Severity <= 750",
		"MediumSeverity":  "RAAlarmData.Severity >= 251 AND RAAlarmData.Severity <= 500",
		"LowSeverity":     "RAAlarmData.Severity >= 1 AND RAAlarmData.Severity <= 250",
		"Severity":        "",
		"FromSeverity":    "",
		"ToSeverity":      "",
	},
	AttrEventTime: {
		FieldFromEventTime: "",
		FieldToEventTime:   "",
	},
	AttrStatus: {
		"Acked":              "RAAlarmData.Acked = 1",
		"Unacked":            "RAAlarmData.Acked = 0",
		"Enabled":            "RAAlarmData.Enabled = 1",
		"Disabled":           "RAAlarmData.Enabled = 0",
		"Suppressed":         "RAAlarmData.Suppressed = 1",
		"Unsuppressed":       "RAAlarmData.Suppressed = 0",
		"AckedAndEnabled":    "RAAlarmData.Acked = 1 AND RAAlarmData.Enabled = 1",
		"UnackedAndEnabled":  "RAAlarmData.Acked = 0 AND RAAlarmData.Enabled = 1",
		"AckedAndDisabled":   "RAAlarmData.Acked = 1 AND RAAlarmData.Enabled = 0",
		"UnackedAndDisabled": "RAAlarmData.Acked = 0 AND RAAlarmData.Enabled = 0",
	},
}

// Catalog pairs the attribute rules with a translation table. The zero
// value is not usable; construct with New.
type Catalog struct {
	table     *translate.Table
	overrides map[Attribute]map[string]string
}

// New creates a catalog with the built-in override table.
func New(table *translate.Table) *Catalog {
	return &Catalog{table: table, overrides: defaultOverrides}
}

// NewWithOverrides creates a catalog with a caller-supplied override table.
// The map is used as-is and must not be mutated afterwards.
func NewWithOverrides(table *translate.Table, overrides map[Attribute]map[string]string) *Catalog {
	return &Catalog{table: table, overrides: overrides}
}

// Attributes returns all supported attributes in canonical order.
func Attributes() []Attribute {
	out := make([]Attribute, len(attributeOrder))
	copy(out, attributeOrder)
	return out
}

// DefaultOptions returns the well-known checkbox identifiers for an
// attribute. Attributes whose options are authored by administrators
// (Name, Class, Group, ...) have none.
func DefaultOptions(attr Attribute) []string {
	switch attr {
	case AttrSeverity:
		return []string{"UrgentSeverity", "HighSeverity", "MediumSeverity", "LowSeverity"}
	case AttrEventTime:
		return []string{FieldFromEventTime, FieldToEventTime}
	case AttrAlarmState:
		return []string{
			"HighHighState", "HighState", "LowLowState",
			"LowState", "ActiveStateDigital", "InactiveState",
		}
	case AttrStatus:
		return []string{
			"Acked", "Unacked", "Enabled",
			"Disabled", "Suppressed", "Unsuppressed",
		}
	default:
		return nil
	}
}

// Column returns the record-store column an attribute filters on. Unknown
// attributes fall back to the attribute's own name.
func Column(attr Attribute) string {
	if col, ok := columns[attr]; ok {
		return col
	}
	return string(attr)
}

// IsRanged reports whether the attribute carries from/to bounds instead of
// a plain checkbox list.
func IsRanged(attr Attribute) bool {
	return attr == AttrSeverity || attr == AttrEventTime
}

// StateNamesFor returns the display-text variants an alarm-state checkbox
// matches, nil for identifiers that are not alarm states.
func (c *Catalog) StateNamesFor(identifier string) []string {
	variants, ok := stateVariants[identifier]
	if !ok {
		return nil
	}
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = c.table.Translate(v)
	}
	return names
}

// PredicateFor returns the predicate fragment for one checked filter.
// Overrides win over the state-disjunction rule, which wins over the
// generic LIKE template. An empty string means the identifier contributes
// no leaf predicate. Unknown attributes never fail; they use the generic
// template with the attribute name as the column.
func (c *Catalog) PredicateFor(attr Attribute, identifier string) string {
	if byName, ok := c.overrides[attr]; ok {
		if frag, ok := byName[identifier]; ok {
			return frag
		}
	}
	if attr == AttrAlarmState {
		if names := c.StateNamesFor(identifier); names != nil {
			quoted := make([]string, len(names))
			for i, n := range names {
				quoted[i] = quote(n)
			}
			return Column(attr) + " IN (" + strings.Join(quoted, ", ") + ")"
		}
	}
	text := escapeQuotes(c.table.Translate(identifier))
	return Column(attr) + " LIKE '%" + text + "%'"
}

func quote(s string) string {
	return "'" + escapeQuotes(s) + "'"
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
