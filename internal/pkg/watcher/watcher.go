// Package watcher re-synchronizes the filter models when the configuration
// file changes on disk. Editors often emit several write events per save,
// so reloads are debounced.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/opgrid/alarmlens/internal/pkg/logger"
	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
)

// Config configures the configuration-file watcher.
type Config struct {
	// Debounce is how long to wait after the last write before reloading.
	// Default: 250ms
	Debounce time.Duration
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{Debounce: 250 * time.Millisecond}
}

// Watcher watches one configuration YAML file and hands each reloaded
// subtree to a callback.
type Watcher struct {
	config    Config
	path      string
	onReload  func(*nodetree.Node)
	fsWatcher *fsnotify.Watcher

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// New creates a watcher for path. onReload runs on the watcher goroutine
// with the freshly parsed configuration subtree.
func New(config Config, path string, onReload func(*nodetree.Node)) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig().Debounce
	}
	return &Watcher{
		config:   config,
		path:     path,
		onReload: onReload,
	}
}

// Start begins watching. It returns an error if the underlying notifier
// cannot be created or the file's directory cannot be watched.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: editors replace files on save, and a watch on
	// the file itself is lost with the old inode.
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fsWatcher = fsWatcher
	w.stopChan = make(chan struct{})
	w.running = true
	w.wg.Add(1)
	go w.loop()
	logger.Info("watching configuration file", "path", w.path)
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
				timerC = timer.C
			} else {
				// Drain a tick that fired between selects so Reset cannot
				// deliver it early.
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.config.Debounce)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Warn("configuration watch error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := nodetree.LoadFile(w.path)
	if err != nil {
		logger.Warn("configuration reload failed", "path", w.path, "error", err)
		return
	}
	logger.Info("configuration reloaded", "path", w.path)
	w.onReload(cfg)
}

// Stop stops watching and waits for the watch goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.stopChan)
	w.fsWatcher.Close()
	w.wg.Wait()
	w.running = false
}
