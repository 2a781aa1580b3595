// Package storage persists captured artifacts. Backends implement Store;
// the file backend is the default, the s3 backend is selected by settings.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrPersistence wraps any storage I/O failure: permission denied,
	// disk full, invalid path, upload failure.
	ErrPersistence = errors.New("persistence failed")

	// ErrNotFound reports a read of a storage path that holds nothing.
	ErrNotFound = errors.New("artifact not found")
)

// Store writes and reads capture artifacts.
type Store interface {
	// Save persists data under filename and returns the stable storage
	// path (a filesystem path or an s3:// URL). The returned string is
	// deterministic given the inputs and is what callers surface to
	// clients. Fails with ErrPersistence.
	Save(ctx context.Context, filename string, data []byte) (string, error)

	// Load reads back an artifact by the storage path Save returned.
	Load(ctx context.Context, storagePath string) ([]byte, error)
}
