// Package persist writes highlighted paragraph records to a blob store laid out as
// <hour>/<minute>/<hash>.yaml.
package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"

	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/hash/sha256"
	"github.com/JakeFAU/literary-clock/internal/metrics"
	"github.com/JakeFAU/literary-clock/internal/paragraph"
	"github.com/JakeFAU/literary-clock/internal/storage"
)

// Extension is appended to every record file name.
const Extension = ".yaml"

const contentType = "application/yaml"

// ErrNotHighlighted is returned for records without a span and time.
var ErrNotHighlighted = errors.New("record has no highlighted time")

// Hasher digests an ordered tuple of fields.
type Hasher interface {
	HashFields(fields ...[]byte) (string, error)
}

// Persister is a pipeline handler writing one object per record. Identical records map to
// the same object, so re-running over unchanged input rewrites the same files.
type Persister struct {
	store  storage.BlobStore
	hasher Hasher
	logger *zap.Logger

	written int
	failed  int
}

// New creates a Persister. A nil hasher uses SHA-256.
func New(store storage.BlobStore, hasher Hasher, logger *zap.Logger) *Persister {
	if hasher == nil {
		hasher = sha256.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{store: store, hasher: hasher, logger: logger.Named("persist")}
}

// Name labels the handler.
func (p *Persister) Name() string { return "persister" }

// Handle writes r. Failures are logged and the record is dropped.
func (p *Persister) Handle(ctx context.Context, r paragraph.Record) {
	uri, err := p.Persist(ctx, r)
	if err != nil {
		p.failed++
		metrics.ObservePersist("failed")
		p.logger.Warn("dropping record after write failure", zap.String("book", r.Book), zap.Error(err))
		return
	}
	p.written++
	metrics.ObservePersist("written")
	p.logger.Debug("record written", zap.String("uri", uri))
}

// Finish logs the totals.
func (p *Persister) Finish(context.Context) {
	p.logger.Info("persisted paragraphs", zap.Int("written", p.written), zap.Int("failed", p.failed))
}

// Written returns the number of successful writes.
func (p *Persister) Written() int { return p.written }

// Failed returns the number of dropped records.
func (p *Persister) Failed() int { return p.failed }

// Persist encodes r and stores it at its ObjectPath.
func (p *Persister) Persist(ctx context.Context, r paragraph.Record) (string, error) {
	objectPath, err := ObjectPath(p.hasher, r)
	if err != nil {
		return "", err
	}
	data, err := paragraph.Marshal(r)
	if err != nil {
		return "", err
	}
	uri, err := p.store.PutObject(ctx, objectPath, contentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("put %s: %w", objectPath, err)
	}
	return uri, nil
}

// ObjectPath returns "<hour>/<minute>/<FileName>" for a highlighted record.
func ObjectPath(h Hasher, r paragraph.Record) (string, error) {
	span, ok := r.Span()
	if !ok {
		return "", ErrNotHighlighted
	}
	at, _ := r.Time()
	name, err := FileName(h, r.Author, span, r.Text)
	if err != nil {
		return "", err
	}
	return path.Join(strconv.Itoa(at.Hour), strconv.Itoa(at.Minute), name), nil
}

// FileName hashes (author, span start, span end, text) in that order.
func FileName(h Hasher, author string, span paragraph.Span, text string) (string, error) {
	digest, err := h.HashFields(
		[]byte(author),
		sha256.Uint64(uint64(span.Start)),
		sha256.Uint64(uint64(span.End)),
		[]byte(text),
	)
	if err != nil {
		return "", fmt.Errorf("hash record: %w", err)
	}
	return digest + Extension, nil
}
