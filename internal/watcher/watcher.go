// Package watcher implements the per-workspace file watcher described in
// spec.md §4.9: a debounced idle/detecting/debouncing/rebuilding state
// machine driving incremental graph rebuilds.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// State is one of the watcher's four lifecycle states.
type State string

const (
	StateIdle       State = "idle"
	StateDetecting  State = "detecting"
	StateDebouncing State = "debouncing"
	StateRebuilding State = "rebuilding"
)

// DefaultDebounce is the debounce window applied when Config.Debounce is
// unset.
const DefaultDebounce = 500 * time.Millisecond

// Rebuild is called once the debounce timer fires, with the accumulated
// set of changed paths. It should invoke an incremental rebuild.
type Rebuild func(ctx context.Context, changedFiles []string) error

// Config parameterizes a Watcher.
type Config struct {
	SourceDir      string
	IgnorePatterns []string
	Debounce       time.Duration
}

// Watcher drives one workspace's fsnotify subscription through the
// idle->detecting->debouncing->rebuilding->idle cycle.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	onChange Rebuild
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	pending map[string]bool
	timer   *time.Timer

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Watcher over cfg.SourceDir. Call Start to begin watching.
func New(cfg Config, onChange Rebuild, logger *slog.Logger) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		onChange: onChange,
		logger:   logger,
		state:    StateIdle,
		pending:  make(map[string]bool),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start adds cfg.SourceDir (recursively) to the fsnotify watch set and
// launches the event loop. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	if err := addRecursive(w.fsw, w.cfg.SourceDir); err != nil {
		return err
	}
	go w.run(ctx)
	return nil
}

// Stop ends the event loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	_ = w.fsw.Close()
}

// State reports the watcher's current lifecycle state, for graph_health.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// PendingChanges reports the size of the pending-path set, for
// graph_health.
func (w *Watcher) PendingChanges() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher: fsnotify error")
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = true
	if w.state == StateIdle {
		w.state = StateDetecting
	}
	w.state = StateDebouncing
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Debounce, w.fire)
	w.mu.Unlock()
}

// fire transitions into rebuilding, snapshots the pending set, and invokes
// onChange. If new events accumulated while rebuilding, it immediately
// re-enters rebuilding with the fresh set (spec.md §4.9).
func (w *Watcher) fire() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.state = StateIdle
		w.mu.Unlock()
		return
	}
	w.state = StateRebuilding
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if w.onChange != nil {
		if err := w.onChange(context.Background(), changed); err != nil && w.logger != nil {
			w.logger.Error("watcher: incremental rebuild failed", "error", err)
		}
	}

	w.mu.Lock()
	again := len(w.pending) > 0
	w.mu.Unlock()

	if again {
		w.fire()
		return
	}
	w.mu.Lock()
	w.state = StateIdle
	w.mu.Unlock()
}

func (w *Watcher) ignored(path string) bool {
	for _, pattern := range w.cfg.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		if strings.Contains(path, string(filepath.Separator)+pattern+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // a missing/unreadable subdirectory shouldn't abort the whole walk
		}
		if info.IsDir() {
			_ = fsw.Add(path)
		}
		return nil
	})
}
