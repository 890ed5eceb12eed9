package film

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/metrics"
)

// Store persists films by key.
type Store interface {
	Save(ctx context.Context, key string, film []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// FileName returns the conventional film file name for a seed.
func FileName(prefix string, seed uint64) string {
	return fmt.Sprintf("%s.film_file.seed_%d.bin", prefix, seed)
}

// FileStore keeps films as raw files in a directory. Keys are file names
// relative to the directory, or absolute paths.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

// Path resolves key to a file path.
func (f *FileStore) Path(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(f.dir, key)
}

// Save writes film under key, creating the directory if needed.
func (f *FileStore) Save(ctx context.Context, key string, film []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := f.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.WrapStorageError(err, "failed to create film directory")
	}
	if err := os.WriteFile(path, film, 0o644); err != nil {
		return apperrors.WrapStorageError(err, fmt.Sprintf("failed to write film %s", path))
	}

	metrics.SetFilmBytes(len(film))
	return nil
}

// Load reads the film stored under key.
func (f *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := f.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapStorageError(err, fmt.Sprintf("failed to read film %s", path))
	}
	return data, nil
}
