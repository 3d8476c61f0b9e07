// Package nodetree implements the structured node store the filter engine
// operates on: ordered trees of object nodes, typed value leaves, and alias
// nodes. Configuration trees, schema types, and edit-model instances are all
// subtrees of the same node kind.
package nodetree

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what a node holds.
type Kind int

const (
	KindObject Kind = iota
	KindBool
	KindInt
	KindTime
	KindString
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindTime:
		return "time"
	case KindString:
		return "string"
	case KindAlias:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one entry in the tree. Children are ordered and unique by name
// within a parent.
type Node struct {
	id        string
	name      string
	kind      Kind
	value     any
	children  []*Node
	parent    *Node
	target    *Node // alias target
	prototype *Node // schema field this node was seeded from, if any
}

// NewObject creates an empty object node.
func NewObject(name string) *Node {
	return &Node{id: uuid.NewString(), name: name, kind: KindObject}
}

// NewLeaf creates a typed value leaf holding the zero value for the kind.
func NewLeaf(name string, kind Kind) *Node {
	n := &Node{id: uuid.NewString(), name: name, kind: kind}
	switch kind {
	case KindBool:
		n.value = false
	case KindInt:
		n.value = 0
	case KindTime:
		n.value = time.Time{}
	case KindString:
		n.value = ""
	}
	return n
}

// NewAlias creates an alias node pointing at target. Target may be nil and
// set later with SetTarget.
func NewAlias(name string, target *Node) *Node {
	return &Node{id: uuid.NewString(), name: name, kind: KindAlias, target: target}
}

// ID returns the node's unique id, stamped at creation.
func (n *Node) ID() string { return n.id }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Kind returns the node's kind.
func (n *Node) Kind() Kind { return n.kind }

// Parent returns the node's parent, nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Prototype returns the schema field this node was seeded from, nil when the
// node was not created by reconciliation.
func (n *Node) Prototype() *Node { return n.prototype }

// SetPrototype records the schema field a reconciled node was seeded from.
func (n *Node) SetPrototype(p *Node) { n.prototype = p }

// Value returns the leaf's current value. Objects and unset aliases return nil.
func (n *Node) Value() any {
	if n.kind == KindAlias && n.target != nil {
		return n.target.Value()
	}
	return n.value
}

// SetValue stores a value on a leaf. Setting a value on an object is an error;
// setting on an alias writes through to the target.
func (n *Node) SetValue(v any) error {
	if n.kind == KindAlias {
		if n.target == nil {
			return fmt.Errorf("%w: alias %q has no target", ErrNodeMissing, n.name)
		}
		return n.target.SetValue(v)
	}
	if n.kind == KindObject {
		return fmt.Errorf("cannot set value on object node %q", n.name)
	}
	coerced, err := coerce(n.kind, v)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.name, err)
	}
	n.value = coerced
	return nil
}

func coerce(kind Kind, v any) (any, error) {
	switch kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}
		return b, nil
	case KindInt:
		switch t := v.(type) {
		case int:
			return t, nil
		case int64:
			return int(t), nil
		}
		return nil, fmt.Errorf("expected int, got %T", v)
	case KindTime:
		ts, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected time.Time, got %T", v)
		}
		return ts, nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	}
	return nil, fmt.Errorf("kind %v holds no value", kind)
}

// Bool returns the leaf's value as a bool, false when it is not one.
func (n *Node) Bool() bool {
	b, _ := n.Value().(bool)
	return b
}

// Int returns the leaf's value as an int, 0 when it is not one.
func (n *Node) Int() int {
	i, _ := n.Value().(int)
	return i
}

// Time returns the leaf's value as a time.Time, zero when it is not one.
func (n *Node) Time() time.Time {
	t, _ := n.Value().(time.Time)
	return t
}

// String returns the leaf's value as a string, "" when it is not one.
func (n *Node) String() string {
	s, _ := n.Value().(string)
	return s
}

// GetChild returns the direct child with the given name, nil if absent.
func (n *Node) GetChild(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Children returns the node's children in insertion order. The returned slice
// must not be mutated.
func (n *Node) Children() []*Node { return n.children }

// AddChild appends child to n, replacing any existing child with the same
// name in place.
func (n *Node) AddChild(child *Node) {
	child.parent = n
	for i, c := range n.children {
		if c.name == child.name {
			c.parent = nil
			n.children[i] = child
			return
		}
	}
	n.children = append(n.children, child)
}

// RemoveChild detaches child from n. Removing a node that is not a child is
// a no-op.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			c.parent = nil
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// RemoveChildNamed detaches the direct child with the given name, if present.
func (n *Node) RemoveChildNamed(name string) {
	if c := n.GetChild(name); c != nil {
		n.RemoveChild(c)
	}
}

// SetTarget repoints an alias node.
func (n *Node) SetTarget(target *Node) { n.target = target }

// ResolveAlias follows alias indirection until a non-alias node is reached.
// A nil or dangling alias resolves to an ErrNodeMissing error.
func ResolveAlias(n *Node) (*Node, error) {
	cur := n
	for cur != nil && cur.kind == KindAlias {
		cur = cur.target
	}
	if cur == nil {
		name := "<nil>"
		if n != nil {
			name = n.name
		}
		return nil, fmt.Errorf("%w: alias %q resolves to nothing", ErrNodeMissing, name)
	}
	return cur, nil
}

// Path returns the slash-joined names from the root down to n.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}
	return n.parent.Path() + "/" + n.name
}

// Clone returns a deep copy of the subtree rooted at n. Cloned nodes get
// fresh ids and carry a prototype link back to their source node. Alias
// targets are not cloned; the copy points at the original target.
func (n *Node) Clone() *Node {
	c := &Node{
		id:        uuid.NewString(),
		name:      n.name,
		kind:      n.kind,
		value:     n.value,
		target:    n.target,
		prototype: n,
	}
	for _, child := range n.children {
		c.AddChild(child.Clone())
	}
	return c
}

// NewObjectFromType creates an object named name whose subtree mirrors the
// given type node, with every field seeded from the type's current values.
func NewObjectFromType(name string, typ *Node) *Node {
	c := typ.Clone()
	c.name = name
	return c
}
