package yamlnames

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/sandrolain/exprlite/pkg/naming"
)

// Source is a naming.Provider backed by a bindings file. It is safe for
// concurrent use; Reload and Watch swap the bindings atomically.
type Source struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	names naming.Map
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// Open loads path and returns a Source serving its bindings.
func Open(path string, opts ...Option) (*Source, error) {
	s := &Source{path: path}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the bindings file path.
func (s *Source) Path() string {
	return s.path
}

// Resolve implements naming.Provider.
func (s *Source) Resolve(name string) (naming.Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names.Resolve(name)
}

// Names returns the number of bindings.
func (s *Source) Names() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// Reload re-reads the file. On error the previous bindings are kept.
func (s *Source) Reload() error {
	m, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.names = m
	s.mu.Unlock()
	return nil
}

// Watch reloads the bindings whenever the file is written or re-created,
// until ctx is done. onReload, when not nil, receives the outcome of each
// reload. The directory is watched so that editors replacing the file are
// noticed.
func (s *Source) Watch(ctx context.Context, onReload func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return err
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			err := s.Reload()
			if err != nil {
				s.logger.Warn("bindings reload failed", slog.String("path", s.path), slog.Any("error", err))
			} else {
				s.logger.Debug("bindings reloaded", slog.String("path", s.path), slog.Int("names", s.Names()))
			}
			if onReload != nil {
				onReload(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("bindings watcher error", slog.Any("error", err))
		}
	}
}
