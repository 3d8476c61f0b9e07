package nodetree

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// nodeYAML is the on-disk shape of a subtree. Values are stored as strings
// (RFC 3339 for timestamps) so the files stay diffable.
type nodeYAML struct {
	Name     string      `yaml:"name"`
	Kind     string      `yaml:"kind,omitempty"`
	Value    string      `yaml:"value,omitempty"`
	Children []*nodeYAML `yaml:"children,omitempty"`
}

func toYAML(n *Node) *nodeYAML {
	y := &nodeYAML{Name: n.name}
	switch n.kind {
	case KindObject:
		// object is the default kind on disk
	case KindBool:
		y.Kind = "bool"
		y.Value = fmt.Sprintf("%t", n.Bool())
	case KindInt:
		y.Kind = "int"
		y.Value = fmt.Sprintf("%d", n.Int())
	case KindTime:
		y.Kind = "time"
		y.Value = n.Time().Format(time.RFC3339)
	case KindString:
		y.Kind = "string"
		y.Value = n.String()
	case KindAlias:
		y.Kind = "alias"
		if n.target != nil {
			y.Value = n.target.Path()
		}
	}
	for _, c := range n.children {
		y.Children = append(y.Children, toYAML(c))
	}
	return y
}

func fromYAML(y *nodeYAML) (*Node, error) {
	var n *Node
	switch y.Kind {
	case "", "object":
		n = NewObject(y.Name)
	case "bool":
		n = NewLeaf(y.Name, KindBool)
		if err := n.SetValue(y.Value == "true"); err != nil {
			return nil, err
		}
	case "int":
		n = NewLeaf(y.Name, KindInt)
		var v int
		if _, err := fmt.Sscanf(y.Value, "%d", &v); err != nil {
			return nil, fmt.Errorf("node %q: bad int value %q", y.Name, y.Value)
		}
		if err := n.SetValue(v); err != nil {
			return nil, err
		}
	case "time":
		n = NewLeaf(y.Name, KindTime)
		ts, err := time.Parse(time.RFC3339, y.Value)
		if err != nil {
			return nil, fmt.Errorf("node %q: bad timestamp %q", y.Name, y.Value)
		}
		if err := n.SetValue(ts); err != nil {
			return nil, err
		}
	case "string":
		n = NewLeaf(y.Name, KindString)
		if err := n.SetValue(y.Value); err != nil {
			return nil, err
		}
	case "alias":
		// Targets are not restored from the recorded path; the host repoints
		// aliases after load.
		n = NewAlias(y.Name, nil)
	default:
		return nil, fmt.Errorf("node %q: unknown kind %q", y.Name, y.Kind)
	}
	for _, cy := range y.Children {
		c, err := fromYAML(cy)
		if err != nil {
			return nil, err
		}
		n.AddChild(c)
	}
	return n, nil
}

// Marshal serializes the subtree rooted at n to YAML.
func Marshal(n *Node) ([]byte, error) {
	data, err := yaml.Marshal(toYAML(n))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal node tree: %w", err)
	}
	return data, nil
}

// Unmarshal parses a subtree previously produced by Marshal. Alias targets
// are not restored; aliases load as unset and must be repointed by the host.
func Unmarshal(data []byte) (*Node, error) {
	var y nodeYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse node tree YAML: %w", err)
	}
	return fromYAML(&y)
}

// LoadFile reads a subtree from a YAML file.
func LoadFile(path string) (*Node, error) {
	// #nosec G304 -- Path is from configuration, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read node tree file: %w", err)
	}
	return Unmarshal(data)
}

// SaveFile writes a subtree to a YAML file.
func SaveFile(path string, n *Node) error {
	data, err := Marshal(n)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write node tree file: %w", err)
	}
	return nil
}
