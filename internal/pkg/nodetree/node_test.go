package nodetree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddChildReplacesInPlace(t *testing.T) {
	parent := NewObject("parent")
	first := NewLeaf("field", KindBool)
	other := NewLeaf("other", KindBool)
	parent.AddChild(first)
	parent.AddChild(other)

	replacement := NewLeaf("field", KindInt)
	parent.AddChild(replacement)

	require.Len(t, parent.Children(), 2)
	assert.Same(t, replacement, parent.Children()[0], "replacement keeps the original position")
	assert.Same(t, other, parent.Children()[1])
	assert.Nil(t, first.Parent())
}

func TestRemoveChild(t *testing.T) {
	parent := NewObject("parent")
	a := NewLeaf("a", KindBool)
	b := NewLeaf("b", KindBool)
	parent.AddChild(a)
	parent.AddChild(b)

	parent.RemoveChild(a)
	assert.Nil(t, parent.GetChild("a"))
	assert.NotNil(t, parent.GetChild("b"))
	assert.Nil(t, a.Parent())

	// Removing a non-child is a no-op
	parent.RemoveChild(a)
	assert.Len(t, parent.Children(), 1)
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		value   any
		wantErr bool
	}{
		{name: "bool on bool leaf", kind: KindBool, value: true},
		{name: "int on int leaf", kind: KindInt, value: 42},
		{name: "int64 coerces to int", kind: KindInt, value: int64(7)},
		{name: "time on time leaf", kind: KindTime, value: time.Now()},
		{name: "string on string leaf", kind: KindString, value: "x"},
		{name: "bool on int leaf", kind: KindInt, value: true, wantErr: true},
		{name: "string on bool leaf", kind: KindBool, value: "yes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaf := NewLeaf("leaf", tt.kind)
			err := leaf.SetValue(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	obj := NewObject("obj")
	assert.Error(t, obj.SetValue(true))
}

func TestResolveAlias(t *testing.T) {
	target := NewLeaf("target", KindBool)
	require.NoError(t, target.SetValue(true))
	alias := NewAlias("alias", target)

	resolved, err := ResolveAlias(alias)
	require.NoError(t, err)
	assert.Same(t, target, resolved)
	assert.Equal(t, true, alias.Value())

	dangling := NewAlias("dangling", nil)
	_, err = ResolveAlias(dangling)
	assert.ErrorIs(t, err, ErrNodeMissing)
}

func TestAliasWritesThrough(t *testing.T) {
	target := NewLeaf("target", KindInt)
	alias := NewAlias("alias", target)
	require.NoError(t, alias.SetValue(9))
	assert.Equal(t, 9, target.Int())
}

func TestClonePrototypeLinks(t *testing.T) {
	typ := NewObject("type")
	group := NewObject("Group")
	leaf := NewLeaf("Compressor", KindBool)
	require.NoError(t, leaf.SetValue(true))
	group.AddChild(leaf)
	typ.AddChild(group)

	inst := NewObjectFromType("instance", typ)
	assert.Equal(t, "instance", inst.Name())

	clonedLeaf := inst.GetChild("Group").GetChild("Compressor")
	require.NotNil(t, clonedLeaf)
	assert.Equal(t, true, clonedLeaf.Bool(), "value seeded from the type")
	assert.Same(t, leaf, clonedLeaf.Prototype())
	assert.NotEqual(t, leaf.ID(), clonedLeaf.ID())
}

func TestPath(t *testing.T) {
	root := NewObject("root")
	mid := NewObject("mid")
	leaf := NewLeaf("leaf", KindBool)
	root.AddChild(mid)
	mid.AddChild(leaf)
	assert.Equal(t, "root/mid/leaf", leaf.Path())
}

func TestYAMLRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	root := NewObject("AlarmGrid")
	group := NewObject("EventTime")
	from := NewLeaf("FromEventTime", KindTime)
	require.NoError(t, from.SetValue(ts))
	gate := NewLeaf("FromEventTimeChecked", KindBool)
	require.NoError(t, gate.SetValue(true))
	count := NewLeaf("Count", KindInt)
	require.NoError(t, count.SetValue(13))
	label := NewLeaf("Label", KindString)
	require.NoError(t, label.SetValue("compressor deck"))
	group.AddChild(from)
	group.AddChild(gate)
	root.AddChild(group)
	root.AddChild(count)
	root.AddChild(label)

	data, err := Marshal(root)
	require.NoError(t, err)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, "AlarmGrid", loaded.Name())
	loadedGroup := loaded.GetChild("EventTime")
	require.NotNil(t, loadedGroup)
	assert.Equal(t, ts, loadedGroup.GetChild("FromEventTime").Time())
	assert.True(t, loadedGroup.GetChild("FromEventTimeChecked").Bool())
	assert.Equal(t, 13, loaded.GetChild("Count").Int())
	assert.Equal(t, "compressor deck", loaded.GetChild("Label").String())
}

func TestYAMLRoundTripAlias(t *testing.T) {
	root := NewObject("AlarmGrid")
	target := NewObject("FiltersConfiguration")
	root.AddChild(target)
	root.AddChild(NewAlias("GridRef", target))

	data, err := Marshal(root)
	require.NoError(t, err)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)

	ref := loaded.GetChild("GridRef")
	require.NotNil(t, ref)
	assert.Equal(t, KindAlias, ref.Kind())

	// Targets come back unset and are repointed by the host.
	_, err = ResolveAlias(ref)
	assert.ErrorIs(t, err, ErrNodeMissing)
	ref.SetTarget(loaded.GetChild("FiltersConfiguration"))
	resolved, err := ResolveAlias(ref)
	require.NoError(t, err)
	assert.Equal(t, "FiltersConfiguration", resolved.Name())
}

func TestUnmarshalRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown kind", yaml: "name: x\nkind: blob\n"},
		{name: "bad int", yaml: "name: x\nkind: int\nvalue: twelve\n"},
		{name: "bad timestamp", yaml: "name: x\nkind: time\nvalue: yesterday\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
