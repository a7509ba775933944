package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Storage is the client-side key/value store the session is persisted in.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// DefaultStorageFile is the file name FileStorage keeps its items in.
const DefaultStorageFile = "storage.json"

// FileStorage implements Storage using a single JSON file
type FileStorage struct {
	path  string
	items map[string]string
	mutex sync.RWMutex
}

// NewFileStorage creates a file-backed storage in dataDir. A missing or
// unreadable file is treated as empty storage and replaced on the next write.
func NewFileStorage(dataDir string) (*FileStorage, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStorage{
		path:  filepath.Join(dataDir, DefaultStorageFile),
		items: make(map[string]string),
	}

	if err := s.load(); err != nil {
		slog.Warn("Ignoring unreadable storage file", "path", s.path, "error", err)
		s.items = make(map[string]string)
	}

	return s, nil
}

// Path returns the file backing the storage
func (s *FileStorage) Path() string {
	return s.path
}

// GetItem returns the value stored under key
func (s *FileStorage) GetItem(key string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	v, ok := s.items[key]
	return v, ok, nil
}

// SetItem stores value under key and rewrites the file
func (s *FileStorage) SetItem(key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	prev, existed := s.items[key]
	s.items[key] = value

	if err := s.save(); err != nil {
		if existed {
			s.items[key] = prev
		} else {
			delete(s.items, key)
		}
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

// RemoveItem deletes key and rewrites the file
func (s *FileStorage) RemoveItem(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	prev, existed := s.items[key]
	if !existed {
		return nil
	}
	delete(s.items, key)

	if err := s.save(); err != nil {
		s.items[key] = prev
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

// load reads the storage file
func (s *FileStorage) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}

	items := make(map[string]string)
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", s.path, err)
	}
	s.items = items
	return nil
}

// save writes the items through a temp file and rename. Caller holds the lock.
func (s *FileStorage) save() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	tmp := s.path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// MemoryStorage implements Storage in memory
type MemoryStorage struct {
	items map[string]string
	mutex sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) GetItem(key string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStorage) SetItem(key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.items[key] = value
	return nil
}

func (s *MemoryStorage) RemoveItem(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.items, key)
	return nil
}
