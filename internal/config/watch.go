package config

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file on write events and applies non-disruptive
// changes in place. Structural changes (store driver, active provider) are
// logged and otherwise ignored until the process restarts, since swapping
// them live would require re-dialing the store or re-selecting an adapter
// mid-dispatch.
type Watcher struct {
	path string
	mu   sync.RWMutex
	cur  *Config
	fsw  *fsnotify.Watcher
}

// NewWatcher loads path once and starts watching it for subsequent changes.
func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{path: path, cur: cfg, fsw: fsw}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			next, err := Load(w.path)
			if err != nil {
				slog.Warn("config: reload failed, keeping previous config", "path", w.path, "error", err)
				continue
			}
			w.apply(next)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("config: watcher error", "error", err)
		}
	}
}

func (w *Watcher) apply(next *Config) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if next.Store.Driver != w.cur.Store.Driver || next.Providers.Active != w.cur.Providers.Active {
		slog.Warn("config: structural change ignored until restart",
			"store_driver", next.Store.Driver, "active_provider", next.Providers.Active)
		next.Store.Driver = w.cur.Store.Driver
		next.Providers.Active = w.cur.Providers.Active
	}
	w.cur = next
	slog.Info("config: reloaded", "path", w.path)
}

// Current returns the most recently applied configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
