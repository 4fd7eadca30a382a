package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the record as a single JSON document on disk. Writes go
// to a temp file in the same directory followed by a rename, so readers
// never observe a partially written record.
type FileStore struct {
	path string
}

// NewFileStore creates the parent directory if needed and returns the store.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Save writes the record atomically.
func (s *FileStore) Save(_ context.Context, rec LastFixRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal last fix: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".last-fix-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write last fix: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace last fix: %w", err)
	}
	return nil
}

// Load reads the record; a missing file means no record yet.
func (s *FileStore) Load(_ context.Context) (LastFixRecord, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return LastFixRecord{}, false, nil
	}
	if err != nil {
		return LastFixRecord{}, false, fmt.Errorf("read last fix: %w", err)
	}
	var rec LastFixRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return LastFixRecord{}, false, fmt.Errorf("decode last fix: %w", err)
	}
	return rec, true, nil
}
