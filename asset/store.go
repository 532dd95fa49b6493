// Package asset provides a shared content store for declared elements: each
// path is read once, concurrent loads collapse into a single read, and
// results stay cached until evicted.
package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store caches file contents by path. Safe for concurrent use by element
// factories; failed reads are not cached and retry on the next Load.
type Store struct {
	root string

	mu    sync.RWMutex
	cache map[string][]byte

	sf singleflight.Group

	// readFile is the read seam, replaced in tests
	readFile func(string) ([]byte, error)
}

// NewStore creates a store resolving paths under root. An empty root leaves
// paths as given.
func NewStore(root string) *Store {
	return &Store{
		root:     root,
		cache:    make(map[string][]byte),
		readFile: os.ReadFile,
	}
}

// Load returns the contents for one path, reading the file at most once per
// cache lifetime no matter how many elements request it concurrently
func (s *Store) Load(path string) ([]byte, error) {
	s.mu.RLock()
	cached, ok := s.cache[path]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.sf.Do(path, func() (any, error) {
		s.mu.RLock()
		cachedAgain, ok := s.cache[path]
		s.mu.RUnlock()
		if ok {
			return cachedAgain, nil
		}

		data, err := s.readFile(s.resolve(path))
		if err != nil {
			return nil, fmt.Errorf("loading asset %q: %w", path, err)
		}

		s.mu.Lock()
		s.cache[path] = data
		s.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Evict drops one cached path; the next Load re-reads it
func (s *Store) Evict(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, path)
}

// Len reports how many assets are currently cached
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *Store) resolve(path string) string {
	if s.root == "" {
		return path
	}
	return filepath.Join(s.root, path)
}
