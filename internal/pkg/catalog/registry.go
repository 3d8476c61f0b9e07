package catalog

import "github.com/opgrid/alarmlens/internal/pkg/nodetree"

// FieldKind is the value type a structural field holds.
type FieldKind int

const (
	FieldBool FieldKind = iota
	FieldInt
	FieldTime
)

// Field describes one structural schema field: the attribute it belongs to,
// its name, kind, and the node kind it materializes as.
type Field struct {
	Attribute Attribute
	Name      string
	Kind      FieldKind
}

// NodeKind returns the node-tree kind a field materializes as.
func (f Field) NodeKind() nodetree.Kind {
	switch f.Kind {
	case FieldInt:
		return nodetree.KindInt
	case FieldTime:
		return nodetree.KindTime
	default:
		return nodetree.KindBool
	}
}

// Registry is the load-time mapping from (attribute, field name) to a typed
// field description. It replaces per-lookup string reflection over the node
// tree: the set of structural fields is fixed by the catalog, so lookups on
// names outside it can fail soft without probing the tree.
type Registry struct {
	fields map[Attribute]map[string]Field
}

// NewRegistry builds the registry of structural fields.
func NewRegistry() *Registry {
	r := &Registry{fields: make(map[Attribute]map[string]Field)}
	for _, f := range []Field{
		{AttrEventTime, FieldFromEventTime, FieldTime},
		{AttrEventTime, FieldFromEventTime + CheckedSuffix, FieldBool},
		{AttrEventTime, FieldToEventTime, FieldTime},
		{AttrEventTime, FieldToEventTime + CheckedSuffix, FieldBool},
		{AttrSeverity, FieldFromSeverity, FieldInt},
		{AttrSeverity, FieldFromSeverity + CheckedSuffix, FieldBool},
		{AttrSeverity, FieldToSeverity, FieldInt},
		{AttrSeverity, FieldToSeverity + CheckedSuffix, FieldBool},
	} {
		byName, ok := r.fields[f.Attribute]
		if !ok {
			byName = make(map[string]Field)
			r.fields[f.Attribute] = byName
		}
		byName[f.Name] = f
	}
	return r
}

// Lookup returns the field description for (attr, name). The second return
// is false for names outside the structural set; callers log and skip.
func (r *Registry) Lookup(attr Attribute, name string) (Field, bool) {
	if byName, ok := r.fields[attr]; ok {
		f, ok := byName[name]
		return f, ok
	}
	return Field{}, false
}

// StructuralFields returns the structural fields of attr in a stable order,
// nil for attributes that have none.
func (r *Registry) StructuralFields(attr Attribute) []Field {
	switch attr {
	case AttrEventTime:
		return []Field{
			r.fields[attr][FieldFromEventTime],
			r.fields[attr][FieldFromEventTime+CheckedSuffix],
			r.fields[attr][FieldToEventTime],
			r.fields[attr][FieldToEventTime+CheckedSuffix],
		}
	case AttrSeverity:
		return []Field{
			r.fields[attr][FieldFromSeverity],
			r.fields[attr][FieldFromSeverity+CheckedSuffix],
			r.fields[attr][FieldToSeverity],
			r.fields[attr][FieldToSeverity+CheckedSuffix],
		}
	default:
		return nil
	}
}
