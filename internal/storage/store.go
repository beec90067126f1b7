package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrBlobNotFound is returned when no stored blob matches the key.
var ErrBlobNotFound = errors.New("blob not found")

// Store persists screenshot binaries outside the report archive and
// addresses them by a content-derived key.
type Store interface {
	// Save writes a blob and returns its storage key. Saving the same
	// bytes twice returns the same key.
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)

	// Open returns a reader over the blob and its content type.
	Open(key string) (io.ReadCloser, string, error)
}

// FSStore is a filesystem-backed Store keyed by content SHA-256.
type FSStore struct {
	dir string
}

// NewFSStore creates the storage directory if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// Save writes the blob under its content hash. The original extension is
// preserved so content types survive round trips.
func (s *FSStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:]) + extensionFor(name, contentType)

	target := filepath.Join(s.dir, key)
	if _, err := os.Stat(target); err == nil {
		return key, nil
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("failed to finalize blob: %w", err)
	}

	return key, nil
}

// Open returns the stored blob. Keys are validated so a crafted key can
// never escape the storage directory.
func (s *FSStore) Open(key string) (io.ReadCloser, string, error) {
	if key == "" || key != path.Base(key) || strings.HasPrefix(key, ".") {
		return nil, "", ErrBlobNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrBlobNotFound
		}
		return nil, "", fmt.Errorf("failed to open blob: %w", err)
	}

	return f, contentTypeFor(key), nil
}

func extensionFor(name, contentType string) string {
	if ext := path.Ext(name); ext != "" {
		return ext
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}

func contentTypeFor(key string) string {
	switch path.Ext(key) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
