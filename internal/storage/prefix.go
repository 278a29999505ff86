package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// Prefixed scopes a BlobStore to a key prefix. Paths passed in and returned are relative
// to the prefix, so callers see the same layout as a store rooted at that directory.
type Prefixed struct {
	store  BlobStore
	prefix string
}

// WithPrefix wraps store. Leading "./" and slashes are dropped; an empty prefix returns
// store unchanged.
func WithPrefix(store BlobStore, prefix string) BlobStore {
	prefix = strings.Trim(path.Clean("/"+prefix), "/")
	if prefix == "" {
		return store
	}
	return &Prefixed{store: store, prefix: prefix}
}

func (p *Prefixed) full(rel string) string { return path.Join(p.prefix, rel) }

// PutObject writes under the prefix.
func (p *Prefixed) PutObject(ctx context.Context, rel string, contentType string, data io.Reader) (string, error) {
	return p.store.PutObject(ctx, p.full(rel), contentType, data)
}

// GetObject reads under the prefix.
func (p *Prefixed) GetObject(ctx context.Context, rel string) ([]byte, error) {
	return p.store.GetObject(ctx, p.full(rel))
}

// ListObjects lists under the prefix and strips it from the results.
func (p *Prefixed) ListObjects(ctx context.Context, rel string) ([]string, error) {
	names, err := p.store.ListObjects(ctx, p.full(rel))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, strings.TrimPrefix(name, p.prefix+"/"))
	}
	return out, nil
}

// Exists checks under the prefix.
func (p *Prefixed) Exists(ctx context.Context, rel string) (bool, error) {
	return p.store.Exists(ctx, p.full(rel))
}
