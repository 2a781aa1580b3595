package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes artifacts under a base directory. Writes are plain
// create-and-write, not write-then-rename: filenames are unique per capture
// (see NewImageName), so no two requests ever target the same path.
type FileStore struct {
	baseDir string
}

// NewFileStore returns a FileStore rooted at baseDir. The directory is
// created lazily on first Save, not here, so construction never fails.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// Save ensures the base directory exists and writes data to
// baseDir/filename. MkdirAll runs on every call; it is idempotent and cheap
// when the directory is already there.
func (f *FileStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := os.MkdirAll(f.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create storage directory: %v", ErrPersistence, err)
	}

	path := filepath.Join(f.baseDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", ErrPersistence, path, err)
	}
	return path, nil
}

// Load reads an artifact back by the path Save returned.
func (f *FileStore) Load(ctx context.Context, storagePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	data, err := os.ReadFile(storagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, storagePath, err)
	}
	return data, nil
}
