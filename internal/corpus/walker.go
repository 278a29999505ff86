// Package corpus walks a directory of plain-text books and produces one record per paragraph.
package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/paragraph"
)

// UnknownAuthor is attached when a document has no "Author:" header.
const UnknownAuthor = "Unknown"

var (
	// A header value continues over following lines that hold at least one non-space
	// character, matching what paragraphBreak treats as blank.
	titlePattern  = regexp.MustCompile(`Title:\s+(.+(?:\n[^\S\n]*\S.*)*)`)
	authorPattern = regexp.MustCompile(`Author:\s+(.+(?:\n[^\S\n]*\S.*)*)`)
	// One or more blank lines form a single separator.
	paragraphBreak = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
)

// Walker is a pipeline producer over a directory tree.
type Walker struct {
	root   string
	logger *zap.Logger
}

// NewWalker creates a walker rooted at root.
func NewWalker(root string, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{root: root, logger: logger.Named("corpus")}
}

// Name labels the stage.
func (w *Walker) Name() string { return "corpus-walker" }

// Produce visits every file under the root using an explicit stack of pending directories.
// Any listing or read failure ends the walk with an error.
func (w *Walker) Produce(ctx context.Context, emit func(paragraph.Record)) error {
	pending := []string{w.root}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("walk canceled: %w", err)
		}
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("list %s: %w", dir, err)
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				pending = append(pending, path)
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}
			count, err := w.emitFile(path, emit)
			if err != nil {
				return err
			}
			w.logger.Debug("document split", zap.String("path", path), zap.Int("paragraphs", count))
		}
	}
	return nil
}

func (w *Walker) emitFile(path string, emit func(paragraph.Record)) (int, error) {
	// #nosec G304 -- paths come from walking the configured corpus root.
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	doc := Parse(string(raw), filepath.Base(path))
	for _, text := range doc.Paragraphs {
		emit(paragraph.New(text, doc.Title, doc.Author))
	}
	return len(doc.Paragraphs), nil
}

// Document is a normalized text file split into paragraphs.
type Document struct {
	Title      string
	Author     string
	Paragraphs []string
}

// Parse normalizes line endings, looks up the title and author headers, and splits the text
// into non-empty paragraphs. fallbackTitle is used when there is no "Title:" header.
func Parse(contents, fallbackTitle string) Document {
	contents = strings.ReplaceAll(contents, "\r", "")
	doc := Document{
		Title:  header(titlePattern, contents, fallbackTitle),
		Author: header(authorPattern, contents, UnknownAuthor),
	}
	for _, part := range paragraphBreak.Split(contents, -1) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		doc.Paragraphs = append(doc.Paragraphs, part)
	}
	return doc
}

func header(pattern *regexp.Regexp, contents, fallback string) string {
	m := pattern.FindStringSubmatch(contents)
	if m == nil {
		return fallback
	}
	value := strings.TrimSpace(m[1])
	if value == "" {
		return fallback
	}
	return value
}
