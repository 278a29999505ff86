// Package storage defines the blob store used for downloaded books and persisted paragraphs.
// Paths are slash-separated and relative to the store root, e.g. "9/30/<hash>.yaml".
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by GetObject for missing paths.
var ErrNotFound = errors.New("object not found")

// BlobStore writes and reads whole objects.
type BlobStore interface {
	// PutObject writes data at path, replacing any existing object, and returns a URI.
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
	// GetObject returns the object contents or ErrNotFound.
	GetObject(ctx context.Context, path string) ([]byte, error)
	// ListObjects returns the paths of objects directly inside prefix, sorted. A missing
	// prefix yields an empty list.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	// Exists reports whether an object is stored at path.
	Exists(ctx context.Context, path string) (bool, error)
}
