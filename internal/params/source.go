package params

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"trailbloom/internal/postfx"
	"trailbloom/internal/utils"
)

// Source publishes the current snapshot. Readers get a consistent copy
// taken once per frame; writers replace the whole snapshot.
type Source struct {
	current atomic.Pointer[postfx.Snapshot]
	mu      sync.Mutex // serializes Update
	path    string

	// Reloaded receives the result of every reload attempt, if non-nil.
	Reloaded chan<- error
}

// NewSource starts from s. path is the preset file backing the source,
// or empty when there is none.
func NewSource(s postfx.Snapshot, path string) *Source {
	src := &Source{path: path}
	src.Store(s)
	return src
}

// Open loads path over the defaults.
func Open(path string) (*Source, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewSource(s, path), nil
}

func (s *Source) Path() string { return s.path }

// Current returns the latest snapshot by value.
func (s *Source) Current() postfx.Snapshot { return *s.current.Load() }

func (s *Source) Store(snap postfx.Snapshot) {
	snap = snap.Sanitized()
	s.current.Store(&snap)
}

// Update applies fn to a copy of the current snapshot and publishes it.
func (s *Source) Update(fn func(*postfx.Snapshot)) postfx.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.Current()
	fn(&next)
	s.Store(next)
	return s.Current()
}

// Reload re-reads the preset file. A file that fails to parse leaves the
// current snapshot in place.
func (s *Source) Reload() error {
	snap, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.Store(snap)
	s.mu.Unlock()
	return nil
}

// Watch reloads the preset whenever it changes until ctx is done. The
// containing directory is watched so that editors that replace the file
// by rename are seen too.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	utils.Info("Params: watching %s", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			err := s.Reload()
			if err != nil {
				utils.Warn("Params: keeping previous values: %v", err)
			} else {
				utils.Info("Params: reloaded %s", s.path)
			}
			if s.Reloaded != nil {
				select {
				case s.Reloaded <- err:
				case <-ctx.Done():
					return nil
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			utils.Warn("Params: watcher: %v", err)
		}
	}
}
