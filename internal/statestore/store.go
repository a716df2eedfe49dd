package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Store is the dedup key-value store shared by every workflow. Entries are
// created once and never pruned; Save rewrites the backing store wholesale.
type Store interface {
	Has(key Key) bool
	Get(key Key) (json.RawMessage, bool)
	Put(key Key, value any) error
	Save(ctx context.Context) error
}

// Timestamp returns the conventional entry value: the current UTC time in
// RFC 3339 form.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// FileStore is the default backend: one flat JSON object per workflow,
// loaded fully at open and rewritten wholesale on Save. A missing or
// corrupt file is treated as empty state. Not safe for concurrent writers;
// overlapping runs are prevented by external scheduling.
type FileStore struct {
	path    string
	entries map[string]json.RawMessage
	logger  *slog.Logger
}

// OpenFile loads the state file at path.
func OpenFile(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{path: path, entries: make(map[string]json.RawMessage), logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to read state file, starting empty", "path", path, "error", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		logger.Warn("corrupt state file, starting empty", "path", path, "error", err)
		s.entries = make(map[string]json.RawMessage)
	}
	return s
}

func (s *FileStore) Has(key Key) bool {
	_, ok := s.entries[key.String()]
	return ok
}

func (s *FileStore) Get(key Key) (json.RawMessage, bool) {
	v, ok := s.entries[key.String()]
	return v, ok
}

func (s *FileStore) Put(key Key, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal state entry %s: %w", key.String(), err)
	}
	s.entries[key.String()] = raw
	return nil
}

// Save rewrites the whole file. There is no transactional guarantee with
// the side effects recorded; a crash between a send and Save risks one
// duplicate on the next run.
func (s *FileStore) Save(_ context.Context) error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", s.path, err)
	}
	return nil
}

// Len reports the number of entries, for logging.
func (s *FileStore) Len() int {
	return len(s.entries)
}
