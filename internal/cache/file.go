package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stadslucht/pm25-extract/internal/airdata"
)

// FileStore keeps one JSON file per window in a directory, created on
// demand. The payload is the raw record array exactly as fetched.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads a window's entry. A missing file is a miss, not an error.
func (s *FileStore) Get(_ context.Context, key string) ([]airdata.RawRecord, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var records []airdata.RawRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return records, true, nil
}

// Put writes a window's entry, creating the directory if absent. An empty
// result set is persisted as an empty array so the miss is not repeated.
func (s *FileStore) Put(_ context.Context, key string, records []airdata.RawRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	if records == nil {
		records = []airdata.RawRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), b, 0o644)
}
