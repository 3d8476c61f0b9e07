// Package session drives the filter-editing lifecycle for one operator
// surface: it owns the active edit model, the in-memory filter set, and the
// published predicate, and exposes the named operations the host UI wires
// its gestures to. Everything runs synchronously on the caller; the host's
// single-threaded event dispatch is the only serialization required.
package session

import (
	"fmt"
	"time"

	"github.com/opgrid/alarmlens/internal/pkg/catalog"
	"github.com/opgrid/alarmlens/internal/pkg/editmodel"
	"github.com/opgrid/alarmlens/internal/pkg/filterset"
	"github.com/opgrid/alarmlens/internal/pkg/logger"
	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
	"github.com/opgrid/alarmlens/internal/pkg/query"
	"github.com/opgrid/alarmlens/internal/pkg/schema"
)

// State is the editing lifecycle position.
type State int

const (
	// Idle: the published predicate matches the active instance.
	Idle State = iota
	// Editing: the in-memory set has changes the instance does not.
	Editing
	// Applied is transient: SaveAll has run and the predicate was just
	// recomposed; the session settles back to Idle.
	Applied
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Applied:
		return "applied"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session wires the catalog, store, and composer behind the operation names
// the host invokes.
type Session struct {
	parent  *nodetree.Node
	catalog *catalog.Catalog
	store   *editmodel.Store

	active    *nodetree.Node
	set       *filterset.Set
	state     State
	predicate string

	// onPredicate is invoked every time the predicate is republished.
	onPredicate func(string)
	now         func() time.Time
}

// Config configures a session.
type Config struct {
	// Parent is the host folder holding the configuration subtree and the
	// edit-model instances. It may be an alias; it is resolved once at
	// construction.
	Parent *nodetree.Node
	// OwnerName is the host node the filter logic lives on; reserved.
	OwnerName string
	// Catalog supplies predicate generation rules.
	Catalog *catalog.Catalog
	// OnPredicate, if set, receives every recomposed predicate.
	OnPredicate func(string)
	// Now pins the clock; nil means time.Now.
	Now func() time.Time
}

// New creates a session, generates the default edit model, loads it, and
// publishes the initial predicate.
func New(cfg Config) (*Session, error) {
	if cfg.Parent == nil {
		return nil, fmt.Errorf("session parent: %w", nodetree.ErrNodeMissing)
	}
	parent, err := nodetree.ResolveAlias(cfg.Parent)
	if err != nil {
		return nil, fmt.Errorf("session parent: %w", err)
	}
	now := cfg.Now
	var rec *schema.Reconciler
	if now == nil {
		now = time.Now
		rec = schema.NewReconciler()
	} else {
		rec = schema.NewReconcilerAt(now)
	}
	s := &Session{
		parent:      parent,
		catalog:     cfg.Catalog,
		store:       editmodel.NewStore(parent, rec, cfg.OwnerName),
		onPredicate: cfg.OnPredicate,
		now:         now,
	}
	if err := s.GenerateCustomFilters(); err != nil {
		return nil, err
	}
	return s, nil
}

// Store exposes the underlying edit-model store.
func (s *Session) Store() *editmodel.Store { return s.store }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Predicate returns the last published predicate.
func (s *Session) Predicate() string { return s.predicate }

// Set returns the in-memory filter set bound to the active instance.
func (s *Session) Set() *filterset.Set { return s.set }

// ActiveInstance returns the edit model the session is editing.
func (s *Session) ActiveInstance() *nodetree.Node { return s.active }

// configuration resolves the configuration subtree. Its absence is fatal to
// the calling operation.
func (s *Session) configuration() (*nodetree.Node, error) {
	cfg := s.parent.GetChild(schema.ConfigurationName)
	if cfg == nil {
		return nil, fmt.Errorf("configuration %q: %w", schema.ConfigurationName, nodetree.ErrNodeMissing)
	}
	return cfg, nil
}

func (s *Session) loadInstance(inst *nodetree.Node) error {
	cfg, err := s.configuration()
	if err != nil {
		return err
	}
	s.active = inst
	s.set = filterset.Load(inst, cfg, s.catalog, filterset.WithClock(s.now))
	s.publish()
	s.state = Idle
	return nil
}

func (s *Session) publish() {
	s.predicate = query.Compose(s.set)
	if s.onPredicate != nil {
		s.onPredicate(s.predicate)
	}
}

// GenerateCustomFilters ensures the default edit model exists, loads it as
// the active instance, and publishes the predicate.
func (s *Session) GenerateCustomFilters() error {
	cfg, err := s.configuration()
	if err != nil {
		return err
	}
	return s.loadInstance(s.store.CreateDefault(cfg))
}

// GeneratePresetFilters creates (or finds) a preset. An empty name
// allocates the next free preset name. The active instance is unchanged.
func (s *Session) GeneratePresetFilters(name string) (string, error) {
	cfg, err := s.configuration()
	if err != nil {
		return "", err
	}
	return s.store.CreatePreset(cfg, name).Name(), nil
}

// UpdateCustomAndPresetsFilters re-synchronizes the type and every instance
// after a configuration edit, then reloads the active instance so the set
// reflects the new shape.
func (s *Session) UpdateCustomAndPresetsFilters() error {
	cfg, err := s.configuration()
	if err != nil {
		return err
	}
	s.store.UpdateAll(cfg)
	if s.active != nil {
		return s.loadInstance(s.active)
	}
	return nil
}

// Filter toggles the named filter. Unknown names are logged and ignored.
func (s *Session) Filter(name string) {
	f, ok := s.set.Get(name)
	if !ok {
		logger.Warn("unknown filter name", "name", name)
		return
	}
	s.set.Check(name, !f.Checked)
	s.state = Editing
}

// SetChecked sets the named filter's checked flag explicitly.
func (s *Session) SetChecked(name string, checked bool) {
	s.set.Check(name, checked)
	s.state = Editing
}

// LoadPreset makes the named preset the active instance and publishes its
// predicate. A missing preset is a configuration error.
func (s *Session) LoadPreset(name string) error {
	inst, err := s.store.Get(name)
	if err != nil {
		return err
	}
	return s.loadInstance(inst)
}

// Refresh recomposes and republishes the predicate from the current set.
func (s *Session) Refresh() {
	s.publish()
}

// Apply persists the in-memory set into the active instance, recomposes,
// and republishes.
func (s *Session) Apply() error {
	if err := s.set.SaveAll(); err != nil {
		return err
	}
	s.publish()
	// Applied is transient; the session settles straight back to Idle.
	s.state = Idle
	return nil
}

// ClearAll forces every filter unchecked and applies immediately.
func (s *Session) ClearAll() error {
	s.set.ClearAll()
	s.state = Editing
	return s.Apply()
}

// Close discards in-memory edits by reloading from the default instance.
func (s *Session) Close() error {
	inst, err := s.store.Get(editmodel.DefaultInstanceName)
	if err != nil {
		return err
	}
	return s.loadInstance(inst)
}
