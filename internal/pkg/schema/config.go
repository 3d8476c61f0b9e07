package schema

import (
	"fmt"

	"github.com/opgrid/alarmlens/internal/pkg/catalog"
	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
)

// ConfigurationName is the name of the configuration subtree the engine
// reads. It is one of the two reserved sibling names UpdateAll skips.
const ConfigurationName = "FiltersConfiguration"

// DefaultConfiguration builds a configuration tree with every catalog
// attribute enabled and its well-known options visible. Administrators
// start from this scaffold and toggle flags or add options.
func DefaultConfiguration() *nodetree.Node {
	cfg := nodetree.NewObject(ConfigurationName)
	for _, attr := range catalog.Attributes() {
		attrNode := nodetree.NewObject(string(attr))
		visible := nodetree.NewLeaf(catalog.ConfigVisibleLeaf, nodetree.KindBool)
		_ = visible.SetValue(true)
		attrNode.AddChild(visible)
		for _, opt := range catalog.DefaultOptions(attr) {
			leaf := nodetree.NewLeaf(opt, nodetree.KindBool)
			_ = leaf.SetValue(true)
			attrNode.AddChild(leaf)
		}
		cfg.AddChild(attrNode)
	}
	return cfg
}

// AddOption adds an administrator-authored option leaf (for example a group
// or class name) to an attribute's configuration node, visible by default.
func AddOption(cfg *nodetree.Node, attr catalog.Attribute, name string) error {
	attrNode := cfg.GetChild(string(attr))
	if attrNode == nil {
		return fmt.Errorf("configuration node %q: %w", attr, nodetree.ErrNodeMissing)
	}
	leaf := nodetree.NewLeaf(name, nodetree.KindBool)
	_ = leaf.SetValue(true)
	attrNode.AddChild(leaf)
	return nil
}
