package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore is a DocumentStore backed by a single JSON file.
//
// Replace writes to "<path>.tmp" and renames it over the target, so a
// concurrent reader never observes a half-written document. Loads are
// served from an in-process cache; an fsnotify watcher on the parent
// directory invalidates the cache when the file is modified externally
// (hand edits, config management), so changes are visible without a
// restart.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	cache   []byte
	haveDoc bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileStore creates a file-backed document store for the given path.
// The file does not have to exist yet; a missing file loads as an empty
// document and is created on the first Replace.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("registry: file store path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("registry: resolve path %s: %w", path, err)
	}

	s := &FileStore{
		path:   abs,
		logger: logger,
		done:   make(chan struct{}),
	}

	// Watch the parent directory rather than the file itself: the
	// rename-based replace gives the file a new inode on every write,
	// which would silently detach a file-level watch.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("registry: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("registry: watch %s: %w", filepath.Dir(abs), err)
	}
	s.watcher = watcher
	go s.watchLoop()

	return s, nil
}

// Load returns the current document, reading from disk on a cold or
// invalidated cache. A missing file is an empty registry, not an error.
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	if s.haveDoc {
		doc := s.cache
		s.mu.RUnlock()
		return doc, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.haveDoc {
		return s.cache, nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		data = append([]byte(nil), emptyDocument...)
	} else if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", s.path, err)
	}

	s.cache = data
	s.haveDoc = true
	return data, nil
}

// Replace atomically publishes the new document via write-to-temp-then-rename.
func (s *FileStore) Replace(_ context.Context, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o600); err != nil {
		return fmt.Errorf("registry: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("registry: rename %s: %w", tmp, err)
	}

	s.cache = append([]byte(nil), doc...)
	s.haveDoc = true
	return nil
}

// Close stops the watcher.
func (s *FileStore) Close() error {
	close(s.done)
	return s.watcher.Close()
}

// watchLoop invalidates the cache when the registry file changes on disk.
func (s *FileStore) watchLoop() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.mu.Lock()
			s.haveDoc = false
			s.cache = nil
			s.mu.Unlock()
			s.logger.Debug("registry file changed on disk, cache invalidated", "path", s.path)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("registry watcher error", "path", s.path, "error", err)
		}
	}
}
