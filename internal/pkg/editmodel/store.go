// Package editmodel manages the named filter edit models: the default
// instance operators edit directly plus any number of saved presets. All
// instances live as children of one host folder node and are kept in shape
// by the schema reconciler.
package editmodel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opgrid/alarmlens/internal/pkg/logger"
	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
	"github.com/opgrid/alarmlens/internal/pkg/schema"
)

const (
	// DefaultInstanceName is the always-present edit model bound to the
	// live filter controls.
	DefaultInstanceName = "CustomFilters"

	// PresetPrefix is the name stem for saved presets. The bare prefix
	// counts as index 0 when allocating the next free name.
	PresetPrefix = "PresetFilters"
)

// Store is CRUD over the edit-model instances under one parent folder.
type Store struct {
	parent     *nodetree.Node
	typ        *nodetree.Node
	reconciler *schema.Reconciler
	reserved   map[string]bool
}

// NewStore creates a store over parent. ownerName is the host node the
// filter logic itself lives on; together with the configuration subtree it
// is a structural sibling of the instances and never treated as one.
func NewStore(parent *nodetree.Node, reconciler *schema.Reconciler, ownerName string) *Store {
	return &Store{
		parent:     parent,
		typ:        nodetree.NewObject("AlarmFilterType"),
		reconciler: reconciler,
		reserved: map[string]bool{
			schema.ConfigurationName: true,
			ownerName:                true,
		},
	}
}

// Type returns the schema type instances are reconciled against.
func (s *Store) Type() *nodetree.Node { return s.typ }

// CreateDefault ensures the default instance exists and is reconciled
// against a freshly rebuilt type.
func (s *Store) CreateDefault(cfg *nodetree.Node) *nodetree.Node {
	s.reconciler.UpdateType(s.typ, cfg)
	inst := s.parent.GetChild(DefaultInstanceName)
	if inst == nil {
		inst = nodetree.NewObject(DefaultInstanceName)
		s.parent.AddChild(inst)
		logger.Info("created default edit model", "name", DefaultInstanceName)
	}
	s.reconciler.ReconcileInstance(inst, s.typ)
	return inst
}

// CreatePreset creates (or finds) a named preset reconciled against a
// freshly rebuilt type. An empty name allocates the next available preset
// name.
func (s *Store) CreatePreset(cfg *nodetree.Node, name string) *nodetree.Node {
	if name == "" {
		name = s.NextAvailablePresetName()
	}
	s.reconciler.UpdateType(s.typ, cfg)
	inst := s.parent.GetChild(name)
	if inst == nil {
		inst = nodetree.NewObject(name)
		s.parent.AddChild(inst)
		logger.Info("created preset edit model", "name", name)
	}
	s.reconciler.ReconcileInstance(inst, s.typ)
	return inst
}

// NextAvailablePresetName returns the smallest unused preset name. The bare
// prefix is index 0; gaps in the numeric suffixes are filled before new
// indexes are appended.
func (s *Store) NextAvailablePresetName() string {
	used := make(map[int]bool)
	for _, child := range s.parent.Children() {
		name := child.Name()
		if !strings.HasPrefix(name, PresetPrefix) {
			continue
		}
		suffix := name[len(PresetPrefix):]
		if suffix == "" {
			used[0] = true
			continue
		}
		if idx, err := strconv.Atoi(suffix); err == nil && idx > 0 {
			used[idx] = true
		}
	}
	for i := 0; ; i++ {
		if !used[i] {
			if i == 0 {
				return PresetPrefix
			}
			return fmt.Sprintf("%s%d", PresetPrefix, i)
		}
	}
}

// Get returns the named instance. A missing instance is a configuration
// error; callers must not substitute defaults silently.
func (s *Store) Get(name string) (*nodetree.Node, error) {
	if s.reserved[name] {
		return nil, fmt.Errorf("edit model %q: reserved structural node: %w", name, nodetree.ErrNodeMissing)
	}
	inst := s.parent.GetChild(name)
	if inst == nil {
		return nil, fmt.Errorf("edit model %q: %w", name, nodetree.ErrNodeMissing)
	}
	return inst, nil
}

// Delete removes the named instance.
func (s *Store) Delete(name string) error {
	inst, err := s.Get(name)
	if err != nil {
		return err
	}
	s.parent.RemoveChild(inst)
	logger.Info("deleted edit model", "name", name)
	return nil
}

// Instances enumerates every edit model under the parent, skipping the
// reserved structural siblings.
func (s *Store) Instances() []*nodetree.Node {
	var out []*nodetree.Node
	for _, child := range s.parent.Children() {
		if s.reserved[child.Name()] || child.Kind() != nodetree.KindObject {
			continue
		}
		out = append(out, child)
	}
	return out
}

// UpdateAll rebuilds the type once against the configuration and reconciles
// every instance against it.
func (s *Store) UpdateAll(cfg *nodetree.Node) {
	s.reconciler.UpdateType(s.typ, cfg)
	for _, inst := range s.Instances() {
		s.reconciler.ReconcileInstance(inst, s.typ)
	}
}
