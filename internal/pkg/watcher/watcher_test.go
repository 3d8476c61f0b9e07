package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
	"github.com/opgrid/alarmlens/internal/pkg/schema"
)

func writeConfig(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, nodetree.SaveFile(path, schema.DefaultConfiguration()))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path)

	var reloads atomic.Int32
	w := New(Config{Debounce: 20 * time.Millisecond}, path, func(cfg *nodetree.Node) {
		assert.Equal(t, schema.ConfigurationName, cfg.Name())
		reloads.Add(1)
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	writeConfig(t, path)

	require.Eventually(t, func() bool {
		return reloads.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherCoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path)

	var reloads atomic.Int32
	w := New(Config{Debounce: 100 * time.Millisecond}, path, func(*nodetree.Node) { reloads.Add(1) })
	require.NoError(t, w.Start())
	defer w.Stop()

	for i := 0; i < 5; i++ {
		writeConfig(t, path)
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return reloads.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load(), "writes inside the debounce window collapse to one reload")
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path)

	var reloads atomic.Int32
	w := New(DefaultConfig(), path, func(*nodetree.Node) { reloads.Add(1) })
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600))

	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, reloads.Load())
}

func TestWatcherSkipsUnparseableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path)

	var reloads atomic.Int32
	w := New(Config{Debounce: 20 * time.Millisecond}, path, func(*nodetree.Node) { reloads.Add(1) })
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(":: not yaml ::"), 0o600))

	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, reloads.Load(), "bad files are logged and skipped")
}

func TestStartStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path)

	w := New(DefaultConfig(), path, func(*nodetree.Node) {})
	require.NoError(t, w.Start())
	require.NoError(t, w.Start(), "second start is a no-op")
	w.Stop()
	w.Stop()
}
