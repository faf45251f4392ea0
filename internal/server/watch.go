package server

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/graphilizer/pkg/graph"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads graph files below Root whenever they change, until ctx is
// cancelled. Only files some session was opened from are reloaded.
func (s *Server) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	err = filepath.WalkDir(s.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("watching graph files", "root", s.cfg.Root)

	var mu sync.Mutex
	pending := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "err", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, err := graph.FormatFromPath(ev.Name); err != nil {
				continue
			}
			rel, err := filepath.Rel(s.cfg.Root, ev.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			mu.Lock()
			if t, ok := pending[rel]; ok {
				t.Stop()
			}
			pending[rel] = time.AfterFunc(DefaultDebounce, func() {
				mu.Lock()
				delete(pending, rel)
				mu.Unlock()
				if _, err := s.Reload(ctx, rel); err != nil {
					s.logger.Warn("reload failed", "source", rel, "err", err)
				}
			})
			mu.Unlock()
		}
	}
}
