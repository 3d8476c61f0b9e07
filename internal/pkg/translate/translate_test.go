package translate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	table := NewTable(map[string]string{"Compressor": "Kompressor"})

	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{name: "custom entry", identifier: "Compressor", want: "Kompressor"},
		{name: "built-in state name", identifier: "HighState", want: "High"},
		{name: "built-in combined state name", identifier: "HighHighHighState", want: "HighHigh High"},
		{name: "unknown falls back to identifier", identifier: "Boiler", want: "Boiler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Translate(tt.identifier))
		})
	}
}

func TestCustomEntriesOverrideDefaults(t *testing.T) {
	table := NewTable(map[string]string{"HighState": "Hoch"})
	assert.Equal(t, "Hoch", table.Translate("HighState"))
}

func TestNilTableFallsBack(t *testing.T) {
	var table *Table
	assert.Equal(t, "Compressor", table.Translate("Compressor"))
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "translations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Compressor: Kompressor\n"), 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, "Kompressor", table.Translate("Compressor"))
	assert.Equal(t, "High", table.Translate("HighState"), "defaults still merged in")

	_, err = LoadTable(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
