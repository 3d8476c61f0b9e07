// Package filterset materializes the live collection of filter value
// objects from an edit-model instance. A set is built fresh on every load,
// never patched in place, so it can never go partially stale against the
// instance it came from.
package filterset

import (
	"fmt"
	"strconv"
	"time"

	"github.com/opgrid/alarmlens/internal/pkg/catalog"
	"github.com/opgrid/alarmlens/internal/pkg/logger"
	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
	"github.com/opgrid/alarmlens/internal/pkg/schema"
)

// Filter is one selectable condition: an immutable identity (attribute and
// name), a checked flag, and the precomputed predicate fragment it
// contributes when checked. Range-bound filters carry an empty fragment;
// their contribution is composed structurally from the set's range state.
type Filter struct {
	Attribute catalog.Attribute
	Name      string
	Checked   bool
	Fragment  string

	path []string // location of the checked flag inside the instance
}

// Set is the ordered, name-keyed collection of filters loaded from one
// instance, plus the range state for the two structural attributes.
type Set struct {
	filters []*Filter
	byName  map[string]*Filter

	fromTime     time.Time
	toTime       time.Time
	fromSeverity int
	toSeverity   int

	// writeThrough sets keep the authoritative checked state in the
	// instance; control-backed sets keep it in memory until SaveAll.
	writeThrough bool
	inst         *nodetree.Node

	now func() time.Time
}

// Option configures set construction.
type Option func(*Set)

// ToggleBacked makes the set write every check change straight through to
// the instance instead of buffering until SaveAll.
func ToggleBacked() Option {
	return func(s *Set) { s.writeThrough = true }
}

// WithClock pins the clock used for default time bounds.
func WithClock(now func() time.Time) Option {
	return func(s *Set) { s.now = now }
}

// Load builds a set from an instance, walking the configuration tree so the
// set holds exactly the filters an operator can currently see. Range bounds
// are read from the instance only while their gate is checked; unchecked
// bounds reset to defaults (current time, severity 1/1000).
func Load(inst, cfg *nodetree.Node, cat *catalog.Catalog, opts ...Option) *Set {
	s := &Set{
		byName: make(map[string]*Filter),
		inst:   inst,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.fromTime = s.now()
	s.toTime = s.now()
	s.fromSeverity = catalog.SeverityMin
	s.toSeverity = catalog.SeverityMax

	for _, attrCfg := range cfg.Children() {
		if !schema.Visible(attrCfg) {
			continue
		}
		attr := catalog.Attribute(attrCfg.Name())
		instGroup := inst.GetChild(attrCfg.Name())
		switch attr {
		case catalog.AttrEventTime:
			s.loadEventTime(instGroup, attrCfg, cat)
		case catalog.AttrSeverity:
			s.loadSeverity(instGroup, attrCfg, cat)
		default:
			s.loadOptions(instGroup, attrCfg, cat, attr, []string{attrCfg.Name()})
		}
	}
	return s
}

func (s *Set) loadOptions(instGroup, cfgNode *nodetree.Node, cat *catalog.Catalog, attr catalog.Attribute, path []string) {
	for _, opt := range cfgNode.Children() {
		if opt.Name() == catalog.ConfigVisibleLeaf || !schema.Visible(opt) {
			continue
		}
		if opt.Kind() == nodetree.KindObject {
			var nested *nodetree.Node
			if instGroup != nil {
				nested = instGroup.GetChild(opt.Name())
			}
			s.loadOptions(nested, opt, cat, attr, append(append([]string(nil), path...), opt.Name()))
			continue
		}
		checked := false
		if instGroup != nil {
			if leaf := instGroup.GetChild(opt.Name()); leaf != nil {
				checked = leaf.Bool()
			} else {
				logger.Warn("instance field missing, loading unchecked",
					"attribute", attr, "name", opt.Name())
			}
		}
		s.add(&Filter{
			Attribute: attr,
			Name:      opt.Name(),
			Checked:   checked,
			Fragment:  cat.PredicateFor(attr, opt.Name()),
			path:      append(append([]string(nil), path...), opt.Name()),
		})
	}
}

func (s *Set) loadEventTime(instGroup, cfgNode *nodetree.Node, cat *catalog.Catalog) {
	for _, bound := range []string{catalog.FieldFromEventTime, catalog.FieldToEventTime} {
		opt := cfgNode.GetChild(bound)
		if opt == nil || !schema.Visible(opt) {
			continue
		}
		checked := false
		value := s.now()
		if instGroup != nil {
			if gate := instGroup.GetChild(bound + catalog.CheckedSuffix); gate != nil {
				checked = gate.Bool()
			}
			if checked {
				if leaf := instGroup.GetChild(bound); leaf != nil {
					value = leaf.Time()
				}
			}
		}
		if bound == catalog.FieldFromEventTime {
			s.fromTime = value
		} else {
			s.toTime = value
		}
		s.add(&Filter{
			Attribute: catalog.AttrEventTime,
			Name:      bound,
			Checked:   checked,
			Fragment:  cat.PredicateFor(catalog.AttrEventTime, bound),
			path:      []string{cfgNode.Name(), bound + catalog.CheckedSuffix},
		})
	}
}

func (s *Set) loadSeverity(instGroup, cfgNode *nodetree.Node, cat *catalog.Catalog) {
	s.loadOptions(instGroup, cfgNode, cat, catalog.AttrSeverity, []string{cfgNode.Name()})
	for _, bound := range []string{catalog.FieldFromSeverity, catalog.FieldToSeverity} {
		checked := false
		value := catalog.SeverityMin
		if bound == catalog.FieldToSeverity {
			value = catalog.SeverityMax
		}
		if instGroup != nil {
			if gate := instGroup.GetChild(bound + catalog.CheckedSuffix); gate != nil {
				checked = gate.Bool()
			}
			if checked {
				if leaf := instGroup.GetChild(bound); leaf != nil {
					value = leaf.Int()
				}
			}
		}
		if bound == catalog.FieldFromSeverity {
			s.fromSeverity = value
		} else {
			s.toSeverity = value
		}
		s.add(&Filter{
			Attribute: catalog.AttrSeverity,
			Name:      bound,
			Checked:   checked,
			Fragment:  cat.PredicateFor(catalog.AttrSeverity, bound),
			path:      []string{cfgNode.Name(), bound + catalog.CheckedSuffix},
		})
	}
}

func (s *Set) add(f *Filter) {
	if _, exists := s.byName[f.Name]; exists {
		logger.Warn("duplicate filter name, keeping first", "name", f.Name)
		return
	}
	s.filters = append(s.filters, f)
	s.byName[f.Name] = f
}

// Filters returns every filter in load order.
func (s *Set) Filters() []*Filter { return s.filters }

// Get returns the filter with the given name.
func (s *Set) Get(name string) (*Filter, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Checked returns the checked filters in load order.
func (s *Set) Checked() []*Filter {
	var out []*Filter
	for _, f := range s.filters {
		if f.Checked {
			out = append(out, f)
		}
	}
	return out
}

// Check sets the checked flag of a named filter. An unknown name is logged
// and ignored; late-bound UI input is not trusted to be in the set.
func (s *Set) Check(name string, checked bool) {
	f, ok := s.byName[name]
	if !ok {
		logger.Warn("unknown filter name", "name", name)
		return
	}
	f.Checked = checked
	if s.writeThrough {
		s.writeChecked(f)
	}
}

// ClearAll unchecks every filter.
func (s *Set) ClearAll() {
	for _, f := range s.filters {
		f.Checked = false
		if s.writeThrough {
			s.writeChecked(f)
		}
	}
}

// EventTimeRange returns the current from/to time bounds.
func (s *Set) EventTimeRange() (from, to time.Time) {
	return s.fromTime, s.toTime
}

// SetEventTimeRange stores the from/to time bounds.
func (s *Set) SetEventTimeRange(from, to time.Time) {
	s.fromTime = from
	s.toTime = to
}

// SeverityRange returns the current from/to severity bounds.
func (s *Set) SeverityRange() (from, to int) {
	return s.fromSeverity, s.toSeverity
}

// SetSeverityRange stores the from/to severity bounds.
func (s *Set) SetSeverityRange(from, to int) {
	s.fromSeverity = from
	s.toSeverity = to
}

// SetSeverityText parses operator-typed severity bounds. Unparseable text
// falls back to the default bound and logs a warning.
func (s *Set) SetSeverityText(fromText, toText string) {
	s.fromSeverity = parseSeverity(fromText, catalog.SeverityMin)
	s.toSeverity = parseSeverity(toText, catalog.SeverityMax)
}

func parseSeverity(text string, fallback int) int {
	v, err := strconv.Atoi(text)
	if err != nil {
		logger.Warn("unparseable severity bound, using default",
			"text", text, "default", fallback)
		return fallback
	}
	return v
}

// SaveAll persists every checked flag and both range values into the
// instance the set was loaded from.
func (s *Set) SaveAll() error {
	if s.inst == nil {
		return fmt.Errorf("filter set has no backing instance: %w", nodetree.ErrNodeMissing)
	}
	for _, f := range s.filters {
		s.writeChecked(f)
	}
	s.writeRange(catalog.AttrEventTime, catalog.FieldFromEventTime, s.fromTime)
	s.writeRange(catalog.AttrEventTime, catalog.FieldToEventTime, s.toTime)
	s.writeRange(catalog.AttrSeverity, catalog.FieldFromSeverity, s.fromSeverity)
	s.writeRange(catalog.AttrSeverity, catalog.FieldToSeverity, s.toSeverity)
	return nil
}

func (s *Set) writeChecked(f *Filter) {
	node := s.inst
	for _, name := range f.path {
		if node = node.GetChild(name); node == nil {
			logger.Warn("instance field missing, checked state not saved",
				"attribute", f.Attribute, "name", f.Name)
			return
		}
	}
	if err := node.SetValue(f.Checked); err != nil {
		logger.Warn("failed to save checked state", "name", f.Name, "error", err)
	}
}

func (s *Set) writeRange(attr catalog.Attribute, field string, value any) {
	group := s.inst.GetChild(string(attr))
	if group == nil {
		return
	}
	leaf := group.GetChild(field)
	if leaf == nil {
		logger.Warn("instance field missing, range bound not saved",
			"attribute", attr, "name", field)
		return
	}
	if err := leaf.SetValue(value); err != nil {
		logger.Warn("failed to save range bound", "name", field, "error", err)
	}
}
