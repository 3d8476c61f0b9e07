// Package query compiles the checked subset of a filter set into the
// predicate handed to the record store. Checked filters broaden within an
// attribute (OR) and narrow across attributes (AND); attributes with
// nothing checked are omitted entirely rather than contributing vacuous
// always-true clauses.
package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/opgrid/alarmlens/internal/pkg/catalog"
	"github.com/opgrid/alarmlens/internal/pkg/filterset"
)

// MatchAll is the sentinel predicate for an entirely unchecked filter set.
const MatchAll = "1 = 1"

// Compose builds the predicate for the set's current checked state.
func Compose(set *filterset.Set) string {
	groups := make(map[catalog.Attribute][]string)
	for _, f := range set.Checked() {
		if catalog.IsRanged(f.Attribute) && f.Fragment == "" {
			// Range gates contribute structurally below.
			continue
		}
		if f.Fragment == "" {
			continue
		}
		groups[f.Attribute] = append(groups[f.Attribute], f.Fragment)
	}

	var clauses []string
	for _, attr := range catalog.Attributes() {
		var attrClauses []string
		if frags := groups[attr]; len(frags) > 0 {
			attrClauses = append(attrClauses, disjoin(frags))
		}
		if ranged := rangeClauses(set, attr); len(ranged) > 0 {
			attrClauses = append(attrClauses, ranged...)
		}
		clauses = append(clauses, attrClauses...)
	}

	if len(clauses) == 0 {
		return MatchAll
	}
	return strings.Join(clauses, " AND ")
}

// rangeClauses returns the bound fragments of a ranged attribute. A bound
// contributes only while its gate filter is checked; an attribute with
// neither bound checked is omitted.
func rangeClauses(set *filterset.Set, attr catalog.Attribute) []string {
	var out []string
	col := catalog.Column(attr)
	switch attr {
	case catalog.AttrEventTime:
		from, to := set.EventTimeRange()
		if boundChecked(set, catalog.FieldFromEventTime) {
			out = append(out, col+" >= '"+from.UTC().Format(time.RFC3339)+"'")
		}
		if boundChecked(set, catalog.FieldToEventTime) {
			out = append(out, col+" <= '"+to.UTC().Format(time.RFC3339)+"'")
		}
	case catalog.AttrSeverity:
		from, to := set.SeverityRange()
		if boundChecked(set, catalog.FieldFromSeverity) {
			out = append(out, col+" >= "+strconv.Itoa(from))
		}
		if boundChecked(set, catalog.FieldToSeverity) {
			out = append(out, col+" <= "+strconv.Itoa(to))
		}
	}
	return out
}

func boundChecked(set *filterset.Set, name string) bool {
	f, ok := set.Get(name)
	return ok && f.Checked
}

// disjoin ORs an attribute's fragments together, parenthesized when there
// is more than one.
func disjoin(frags []string) string {
	if len(frags) == 1 {
		return frags[0]
	}
	return "(" + strings.Join(frags, " OR ") + ")"
}
