package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// StorageKey is the namespaced key the session record is persisted under.
const StorageKey = "ccxc-user-store"

// Record is the persisted identity of the current session. These seven
// fields are everything that is written to storage.
type Record struct {
	Uid      string `json:"uid"`
	Username string `json:"username"`
	Roleid   int    `json:"roleid"`
	Token    string `json:"token"`
	Sk       string `json:"sk"`
	Etc      string `json:"etc"`
	Color    string `json:"color"`
}

// IsLive reports whether the record carries both a token and a secret.
func (r Record) IsLive() bool {
	return r.Token != "" && r.Sk != ""
}

func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("uid", r.Uid),
		slog.String("username", r.Username),
		slog.Int("roleid", r.Roleid),
		slog.Bool("live", r.IsLive()),
	)
}

// Store holds the current session record and keeps it in sync with
// storage. Create one per process with NewStore and share it.
type Store struct {
	storage Storage
	logger  *slog.Logger
	record  Record
	mutex   sync.RWMutex
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for persistence warnings
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store over storage and restores any persisted record.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load()
	return s
}

// Load restores the record from storage. Missing or corrupt data leaves
// the store with the default record.
func (s *Store) Load() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.record = Record{}

	raw, ok, err := s.storage.GetItem(StorageKey)
	if err != nil {
		s.logger.Warn("Failed to read session from storage", "key", StorageKey, "error", err)
		return
	}
	if !ok || raw == "" {
		return
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Warn("Discarding corrupt session record", "key", StorageKey, "error", err)
		return
	}
	s.record = record
	s.logger.Debug("Session restored", "session", record)
}

// Save persists the current record.
func (s *Store) Save() error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.save()
}

// Set overwrites the whole record. Fields left at their zero value in
// record take their defaults.
func (s *Store) Set(record Record) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.record = record
	return s.save()
}

// Clear resets every field to its default.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.record = Record{}
	return s.save()
}

// IsLive reports whether the current record has both token and secret.
func (s *Store) IsLive() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.record.IsLive()
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() Record {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.record
}

// save writes the record; caller holds the lock. The in-memory record is
// authoritative even when the write fails.
func (s *Store) save() error {
	data, err := json.Marshal(s.record)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.storage.SetItem(StorageKey, string(data)); err != nil {
		s.logger.Error("Failed to persist session", "key", StorageKey, "error", err)
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
