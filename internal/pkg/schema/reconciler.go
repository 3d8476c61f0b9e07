// Package schema keeps the generated filter schema type and every edit-model
// instance structurally synchronized with the administrator's configuration
// tree. Both directions run as a recursive diff/merge over the node tree and
// are idempotent: re-running a reconciliation against unchanged inputs is a
// no-op.
package schema

import (
	"time"

	"github.com/opgrid/alarmlens/internal/pkg/catalog"
	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
)

// Reconciler derives schema types from configuration and conforms instances
// to them.
type Reconciler struct {
	registry *catalog.Registry
	now      func() time.Time
}

// NewReconciler creates a reconciler using the catalog's structural field
// registry.
func NewReconciler() *Reconciler {
	return &Reconciler{registry: catalog.NewRegistry(), now: time.Now}
}

// NewReconcilerAt creates a reconciler with a fixed clock. Tests use this to
// pin the default timestamps seeded into EventTime fields.
func NewReconcilerAt(now func() time.Time) *Reconciler {
	return &Reconciler{registry: catalog.NewRegistry(), now: now}
}

// UpdateType diffs the schema type against the configuration tree: every
// enabled configuration node gets exactly one field, every disabled one is
// removed, and the ranged attributes additionally get their structural
// value fields. The type's existing field values are preserved.
func (r *Reconciler) UpdateType(typ, cfg *nodetree.Node) {
	for _, attrCfg := range cfg.Children() {
		name := attrCfg.Name()
		if !Visible(attrCfg) {
			typ.RemoveChildNamed(name)
			continue
		}
		switch catalog.Attribute(name) {
		case catalog.AttrEventTime:
			r.updateEventTime(typ, attrCfg)
		case catalog.AttrSeverity:
			r.updateSeverity(typ, attrCfg)
		default:
			r.updateGeneric(typ, attrCfg)
		}
	}
	// Drop type fields whose configuration node is gone entirely.
	for _, field := range append([]*nodetree.Node(nil), typ.Children()...) {
		if cfg.GetChild(field.Name()) == nil {
			typ.RemoveChild(field)
		}
	}
}

// updateGeneric mirrors a configuration node into the type: a boolean field
// per visible leaf, an object per group, recursively.
func (r *Reconciler) updateGeneric(parent *nodetree.Node, cfgNode *nodetree.Node) {
	if cfgNode.Kind() != nodetree.KindObject {
		ensureLeaf(parent, cfgNode.Name(), nodetree.KindBool)
		return
	}
	group := parent.GetChild(cfgNode.Name())
	if group == nil || group.Kind() != nodetree.KindObject {
		group = nodetree.NewObject(cfgNode.Name())
		parent.AddChild(group)
	}
	for _, opt := range cfgNode.Children() {
		if opt.Name() == catalog.ConfigVisibleLeaf {
			continue
		}
		if !Visible(opt) {
			group.RemoveChildNamed(opt.Name())
			continue
		}
		r.updateGeneric(group, opt)
	}
	for _, field := range append([]*nodetree.Node(nil), group.Children()...) {
		if cfgNode.GetChild(field.Name()) == nil {
			group.RemoveChild(field)
		}
	}
}

// updateEventTime expands the EventTime attribute: per visible bound, a
// boolean gate and a timestamp value seeded with the current time.
func (r *Reconciler) updateEventTime(typ *nodetree.Node, cfgNode *nodetree.Node) {
	group := ensureObject(typ, cfgNode.Name())
	for _, bound := range []string{catalog.FieldFromEventTime, catalog.FieldToEventTime} {
		opt := cfgNode.GetChild(bound)
		if opt == nil || !Visible(opt) {
			group.RemoveChildNamed(bound)
			group.RemoveChildNamed(bound + catalog.CheckedSuffix)
			continue
		}
		if ensureLeaf(group, bound, nodetree.KindTime) {
			// Fresh bound starts at the current time.
			_ = group.GetChild(bound).SetValue(r.now())
		}
		ensureLeaf(group, bound+catalog.CheckedSuffix, nodetree.KindBool)
	}
	// The type holds exactly the structural fields, nothing else.
	for _, field := range append([]*nodetree.Node(nil), group.Children()...) {
		if _, ok := r.registry.Lookup(catalog.AttrEventTime, field.Name()); !ok {
			group.RemoveChild(field)
		}
	}
}

// updateSeverity expands the Severity attribute: band checkboxes mirror the
// visible options, and the from/to range fields exist whenever the attribute
// itself is visible, seeded with the 1/1000 default bounds.
func (r *Reconciler) updateSeverity(typ *nodetree.Node, cfgNode *nodetree.Node) {
	group := ensureObject(typ, cfgNode.Name())
	for _, opt := range cfgNode.Children() {
		if opt.Name() == catalog.ConfigVisibleLeaf {
			continue
		}
		if !Visible(opt) {
			group.RemoveChildNamed(opt.Name())
			continue
		}
		ensureLeaf(group, opt.Name(), nodetree.KindBool)
	}
	if ensureLeaf(group, catalog.FieldFromSeverity, nodetree.KindInt) {
		_ = group.GetChild(catalog.FieldFromSeverity).SetValue(catalog.SeverityMin)
	}
	ensureLeaf(group, catalog.FieldFromSeverity+catalog.CheckedSuffix, nodetree.KindBool)
	if ensureLeaf(group, catalog.FieldToSeverity, nodetree.KindInt) {
		_ = group.GetChild(catalog.FieldToSeverity).SetValue(catalog.SeverityMax)
	}
	ensureLeaf(group, catalog.FieldToSeverity+catalog.CheckedSuffix, nodetree.KindBool)
	// Band checkboxes whose configuration option was deleted outright.
	for _, field := range append([]*nodetree.Node(nil), group.Children()...) {
		if _, ok := r.registry.Lookup(catalog.AttrSeverity, field.Name()); ok {
			continue
		}
		if cfgNode.GetChild(field.Name()) == nil {
			group.RemoveChild(field)
		}
	}
}

// ReconcileInstance conforms an instance to the schema type: fields absent
// from the type are removed depth-first, fields absent from the instance are
// added as clones of the type's field (carrying a prototype link and the
// type's current value). Existing instance values are never overwritten.
func (r *Reconciler) ReconcileInstance(inst, typ *nodetree.Node) {
	removeExtra(inst, typ)
	addMissing(inst, typ)
}

func removeExtra(inst, typ *nodetree.Node) {
	for _, field := range append([]*nodetree.Node(nil), inst.Children()...) {
		counterpart := typ.GetChild(field.Name())
		if counterpart == nil || counterpart.Kind() != field.Kind() {
			inst.RemoveChild(field)
			continue
		}
		if field.Kind() == nodetree.KindObject {
			removeExtra(field, counterpart)
		}
	}
}

func addMissing(inst, typ *nodetree.Node) {
	for _, field := range typ.Children() {
		existing := inst.GetChild(field.Name())
		if existing == nil {
			inst.AddChild(field.Clone())
			continue
		}
		if field.Kind() == nodetree.KindObject {
			addMissing(existing, field)
		}
	}
}

// Visible reports whether a configuration node is enabled: leaves carry the
// flag as their value, groups carry a Visible leaf. A group without the leaf
// is disabled.
func Visible(cfgNode *nodetree.Node) bool {
	if cfgNode.Kind() != nodetree.KindObject {
		return cfgNode.Bool()
	}
	leaf := cfgNode.GetChild(catalog.ConfigVisibleLeaf)
	return leaf != nil && leaf.Bool()
}

// ensureObject returns parent's object child with the given name, creating
// it if needed.
func ensureObject(parent *nodetree.Node, name string) *nodetree.Node {
	group := parent.GetChild(name)
	if group == nil || group.Kind() != nodetree.KindObject {
		group = nodetree.NewObject(name)
		parent.AddChild(group)
	}
	return group
}

// ensureLeaf ensures a typed leaf exists under parent, returning true when
// it had to be created.
func ensureLeaf(parent *nodetree.Node, name string, kind nodetree.Kind) bool {
	if existing := parent.GetChild(name); existing != nil && existing.Kind() == kind {
		return false
	}
	parent.AddChild(nodetree.NewLeaf(name, kind))
	return true
}
