package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay debounces bursts of file events; editors often write a file
// in several steps.
const reloadDelay = 100 * time.Millisecond

// Holder publishes the current configuration. Snapshots are immutable: a
// reload stores a new *Config instead of mutating the old one.
type Holder struct {
	cur atomic.Pointer[Config]

	mu        sync.Mutex
	listeners []func(*Config)
}

// NewHolder returns a holder publishing cfg.
func NewHolder(cfg *Config) *Holder {
	h := &Holder{}
	h.cur.Store(cfg)
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Config { return h.cur.Load() }

// Store publishes cfg and notifies listeners.
func (h *Holder) Store(cfg *Config) {
	h.cur.Store(cfg)
	h.mu.Lock()
	listeners := append([]func(*Config){}, h.listeners...)
	h.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
}

// OnChange registers fn to run after every Store.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Watch reloads the configuration whenever path changes and publishes it
// through h. load is called to build each new snapshot; a failed load keeps
// the previous snapshot. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, h *Holder, load func() (*Config, error), logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors replace files by rename, which drops a
	// watch on the file itself.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	reload := func() {
		cfg, err := load()
		if err != nil {
			logger.Error("config reload failed, keeping previous policy", "file", path, "error", err)
			return
		}
		h.Store(cfg)
		logger.Info("config reloaded", "file", path)
	}

	// Debounce timer
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDelay, reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
