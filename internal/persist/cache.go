package persist

import (
	"os"
	"path/filepath"
	"sync"
)

// Cache blob names. The local cache is the availability fallback and
// the source of truth for immediate reload; writes to it are never
// skipped even when the remote push fails.
const (
	CacheKeyDesktop = "browseros.desktop"
	CacheKeyWindows = "browseros.windows"
)

// CacheStore is a string-keyed JSON blob store.
type CacheStore interface {
	Put(key string, value []byte) error
	// Get returns the blob and whether it exists.
	Get(key string) ([]byte, bool, error)
	Delete(key string) error
}

// FileStore keeps each blob as one file under dir. Writes go through a
// temp file and rename so a crash mid-write never leaves a torn blob.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Put(key string, value []byte) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStore is an in-memory CacheStore for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(key string, value []byte) error {
	s.mu.Lock()
	s.blobs[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}
