package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// URLPrefix is the server path under which locally stored media is served.
const URLPrefix = "/uploads/"

// FSBackend stores media as flat files in a local directory. The reference
// is the serving path and the handle is the file name inside the directory.
type FSBackend struct {
	dir string
}

// NewFSBackend creates the upload directory if needed.
func NewFSBackend(dir string) (*FSBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FSBackend{dir: dir}, nil
}

// Dir returns the backing directory, for the server's byte-serving route.
func (b *FSBackend) Dir() string {
	return b.dir
}

// Store writes data to <dir>/<key>. Keys are flattened to their base name so
// a crafted filename cannot escape the directory.
func (b *FSBackend) Store(ctx context.Context, data []byte, key string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	name := filepath.Base(key)
	if err := os.WriteFile(filepath.Join(b.dir, name), data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write media file: %w", err)
	}
	return URLPrefix + name, name, nil
}

// Delete removes the stored file. A missing file counts as success.
func (b *FSBackend) Delete(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(b.dir, filepath.Base(handle)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}
