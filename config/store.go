package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

type versioned struct {
	settings Settings
	version  uint64
}

// Store publishes the current settings to every session. Readers compare
// versions at the start of a tick and rebuild when it moved, so a reload
// never lands in the middle of an evaluation.
type Store struct {
	cur atomic.Pointer[versioned]
}

func NewStore(s Settings) *Store {
	st := &Store{}
	st.cur.Store(&versioned{settings: s, version: 1})
	return st
}

func (st *Store) Load() (Settings, uint64) {
	v := st.cur.Load()
	return v.settings, v.version
}

func (st *Store) Replace(s Settings) uint64 {
	for {
		old := st.cur.Load()
		next := &versioned{settings: s, version: old.version + 1}
		if st.cur.CompareAndSwap(old, next) {
			return next.version
		}
	}
}

// Watch reloads path into st whenever the file is written or replaced,
// until ctx is cancelled. The parent directory is watched so editors that
// save via rename are picked up too. A reload that fails to parse keeps the
// previous settings.
func Watch(ctx context.Context, path string, st *Store) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	slog.Info("watching settings", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			s, violations, err := Load(abs)
			if err != nil {
				slog.Error("settings reload failed, keeping previous", "path", abs, "error", err)
				continue
			}
			Report(violations)
			version := st.Replace(s)
			slog.Info("settings reloaded", "path", abs, "version", version)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("settings watcher error", "error", err)
		}
	}
}
