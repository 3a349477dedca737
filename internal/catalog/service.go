package catalog

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Service serves the active catalog and hot-reloads the override file
// when it changes on disk.
type Service struct {
	mu           sync.RWMutex
	current      *Catalog
	overridePath string
	logger       *zap.Logger
}

func NewService(overridePath string, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		current:      DefaultCatalog(),
		overridePath: overridePath,
		logger:       logger,
	}
	if overridePath != "" {
		c, err := LoadFile(overridePath)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		s.current = c
	}
	return s, nil
}

func (s *Service) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Watch reloads the override file on write events until ctx ends.
// No-op when no override is configured.
func (s *Service) Watch(ctx context.Context) error {
	if s.overridePath == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files rather than writing
	// in place, which drops the watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.overridePath)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.overridePath) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			s.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

func (s *Service) reload() {
	c, err := LoadFile(s.overridePath)
	if err != nil {
		s.logger.Warn("catalog reload failed, keeping previous catalog",
			zap.String("path", s.overridePath), zap.Error(err))
		return
	}
	if err := c.validate(); err != nil {
		s.logger.Warn("catalog reload rejected", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
	s.logger.Info("catalog reloaded", zap.String("path", s.overridePath),
		zap.Int("systems", len(c.Systems)))
}
