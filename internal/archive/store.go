// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/weekly-radar/pkg/types"
)

// Store is the Document Store contract: whole-document put and get keyed by
// week, plus key listing. No transactions, no partial updates.
type Store interface {
	Put(ctx context.Context, key string, doc []byte) error
	Get(ctx context.Context, key string) (doc []byte, found bool, err error)
	ListKeys(ctx context.Context) ([]string, error)
}

const weeksDir = "weeks"

// FileStore keeps one JSON file per week under dataDir/weeks.
type FileStore struct {
	dir string
}

// NewFileStore creates dataDir/weeks if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	dir := filepath.Join(dataDir, weeksDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating weeks directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the week files.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Put replaces the document for key. The write goes to a temporary file
// renamed over the target so readers never see a partial document.
func (s *FileStore) Put(_ context.Context, key string, doc []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("renaming %s: %w", key, err)
	}
	return nil
}

// Get reads the document for key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, true, nil
}

// ListKeys returns the keys of every stored week, unordered.
func (s *FileStore) ListKeys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading weeks directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		if _, err := time.Parse(types.DateLayout, key); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}
