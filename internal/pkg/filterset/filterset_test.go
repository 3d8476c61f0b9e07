package filterset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opgrid/alarmlens/internal/pkg/catalog"
	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
	"github.com/opgrid/alarmlens/internal/pkg/schema"
	"github.com/opgrid/alarmlens/internal/pkg/translate"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T, visible ...string) (*nodetree.Node, *nodetree.Node, *catalog.Catalog) {
	t.Helper()
	cfg := schema.DefaultConfiguration()
	on := make(map[string]bool, len(visible))
	for _, name := range visible {
		on[name] = true
	}
	for _, attrNode := range cfg.Children() {
		_ = attrNode.GetChild(catalog.ConfigVisibleLeaf).SetValue(on[attrNode.Name()])
	}
	for _, name := range visible {
		if name == "Group" {
			require.NoError(t, schema.AddOption(cfg, catalog.AttrGroup, "Compressor"))
			require.NoError(t, schema.AddOption(cfg, catalog.AttrGroup, "Pump"))
		}
	}

	rec := schema.NewReconcilerAt(testClock)
	typ := nodetree.NewObject("AlarmFilterType")
	rec.UpdateType(typ, cfg)
	inst := nodetree.NewObject("CustomFilters")
	rec.ReconcileInstance(inst, typ)

	return inst, cfg, catalog.New(translate.NewTable(nil))
}

func TestLoadMaterializesVisibleFilters(t *testing.T) {
	inst, cfg, cat := newFixture(t, "Group", "AlarmState")

	set := Load(inst, cfg, cat, WithClock(testClock))

	names := make([]string, 0, len(set.Filters()))
	for _, f := range set.Filters() {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Compressor")
	assert.Contains(t, names, "Pump")
	assert.Contains(t, names, "HighState")
	assert.NotContains(t, names, catalog.FieldFromSeverity, "severity disabled")

	f, ok := set.Get("Compressor")
	require.True(t, ok)
	assert.False(t, f.Checked)
	assert.Equal(t, "RAAlarmData.AlarmGroup LIKE '%Compressor%'", f.Fragment)
}

func TestLoadReadsCheckedStateFromInstance(t *testing.T) {
	inst, cfg, cat := newFixture(t, "Group")
	require.NoError(t, inst.GetChild("Group").GetChild("Compressor").SetValue(true))

	set := Load(inst, cfg, cat, WithClock(testClock))

	f, ok := set.Get("Compressor")
	require.True(t, ok)
	assert.True(t, f.Checked)
	require.Len(t, set.Checked(), 1)
}

func TestRangeGating(t *testing.T) {
	inst, cfg, cat := newFixture(t, "EventTime", "Severity")
	stored := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	group := inst.GetChild("EventTime")
	require.NoError(t, group.GetChild(catalog.FieldFromEventTime).SetValue(stored))

	// Gate unchecked: the stored value is ignored, the bound resets to now.
	set := Load(inst, cfg, cat, WithClock(testClock))
	from, _ := set.EventTimeRange()
	assert.Equal(t, testClock(), from)

	// Gate checked: the persisted value is restored.
	require.NoError(t, group.GetChild(catalog.FieldFromEventTime+catalog.CheckedSuffix).SetValue(true))
	set = Load(inst, cfg, cat, WithClock(testClock))
	from, _ = set.EventTimeRange()
	assert.Equal(t, stored, from)

	// Severity bounds behave the same way with the 1/1000 defaults.
	fromSev, toSev := set.SeverityRange()
	assert.Equal(t, catalog.SeverityMin, fromSev)
	assert.Equal(t, catalog.SeverityMax, toSev)
}

func TestCheckUnknownNameIsIgnored(t *testing.T) {
	inst, cfg, cat := newFixture(t, "Group")
	set := Load(inst, cfg, cat, WithClock(testClock))

	set.Check("NoSuchFilter", true)
	assert.Empty(t, set.Checked())
}

func TestSaveAllPersistsIntoInstance(t *testing.T) {
	inst, cfg, cat := newFixture(t, "Group", "Severity", "EventTime")
	set := Load(inst, cfg, cat, WithClock(testClock))

	set.Check("Compressor", true)
	set.Check(catalog.FieldFromSeverity, true)
	set.SetSeverityRange(300, 900)
	assert.False(t, inst.GetChild("Group").GetChild("Compressor").Bool(),
		"control-backed set buffers until SaveAll")

	require.NoError(t, set.SaveAll())
	assert.True(t, inst.GetChild("Group").GetChild("Compressor").Bool())
	sev := inst.GetChild("Severity")
	assert.True(t, sev.GetChild(catalog.FieldFromSeverity+catalog.CheckedSuffix).Bool())
	assert.Equal(t, 300, sev.GetChild(catalog.FieldFromSeverity).Int())
	assert.Equal(t, 900, sev.GetChild(catalog.FieldToSeverity).Int())
}

func TestToggleBackedWritesThrough(t *testing.T) {
	inst, cfg, cat := newFixture(t, "Group")
	set := Load(inst, cfg, cat, WithClock(testClock), ToggleBacked())

	set.Check("Compressor", true)
	assert.True(t, inst.GetChild("Group").GetChild("Compressor").Bool(),
		"toggle-backed set keeps authoritative state in the instance")
}

func TestClearAll(t *testing.T) {
	inst, cfg, cat := newFixture(t, "Group", "AlarmState")
	set := Load(inst, cfg, cat, WithClock(testClock))

	set.Check("Compressor", true)
	set.Check("HighState", true)
	set.ClearAll()
	assert.Empty(t, set.Checked())
}

func TestSetSeverityTextFallsBack(t *testing.T) {
	inst, cfg, cat := newFixture(t, "Severity")
	set := Load(inst, cfg, cat, WithClock(testClock))

	set.SetSeverityText("250", "oops")
	from, to := set.SeverityRange()
	assert.Equal(t, 250, from)
	assert.Equal(t, catalog.SeverityMax, to, "unparseable bound falls back to default")

	set.SetSeverityText("junk", "800")
	from, to = set.SeverityRange()
	assert.Equal(t, catalog.SeverityMin, from)
	assert.Equal(t, 800, to)
}

func TestLoadIsNeverPartiallyStale(t *testing.T) {
	inst, cfg, cat := newFixture(t, "Group")
	set := Load(inst, cfg, cat, WithClock(testClock))
	set.Check("Compressor", true)

	// A fresh load reflects only the instance, not prior in-memory edits.
	fresh := Load(inst, cfg, cat, WithClock(testClock))
	f, ok := fresh.Get("Compressor")
	require.True(t, ok)
	assert.False(t, f.Checked)
}
