package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps blobs as files below a root directory
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at root
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Resolve maps a blob reference to a file path inside the root
func (s *FileStore) Resolve(ref string) (string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("invalid blob root: %w", err)
	}

	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" && filepath.IsAbs(u.Path) {
		full := filepath.Clean(u.Path)
		if !within(root, full) {
			return "", fmt.Errorf("blob %q is outside %s", ref, root)
		}
		return full, nil
	}

	object, err := ObjectPath(ref)
	if err != nil {
		return "", err
	}

	full := filepath.Join(root, filepath.FromSlash(object))
	if !within(root, full) {
		return "", fmt.Errorf("blob %q is outside %s", ref, root)
	}
	return full, nil
}

// DeleteBlob removes the file behind ref. A file that is already gone is not an error.
func (s *FileStore) DeleteBlob(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.Resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Blob already removed", "path", full)
			return nil
		}
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
