package pathcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
)

// DefaultFilePath is where the file store keeps the mapping by default.
const DefaultFilePath = "wiki_paths_cache.json"

const (
	cacheFileMode = 0o644
	cacheDirMode  = 0o755
)

// FileStore keeps the mapping as one indented JSON object on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileStore{path: path}
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the mapping. A missing file is an empty mapping, not an error.
func (s *FileStore) Load(ctx context.Context) (map[string]domain.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]domain.Path{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	paths := make(map[string]domain.Path)
	if err = json.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return paths, nil
}

// Save writes the mapping to a temporary file in the same directory and
// renames it over the old one.
func (s *FileStore) Save(ctx context.Context, paths map[string]domain.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return fmt.Errorf("encode path cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, cacheDirMode); err != nil {
		return fmt.Errorf("create cache dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, cacheFileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
