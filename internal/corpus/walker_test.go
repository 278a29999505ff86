package corpus

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/literary-clock/internal/paragraph"
)

const gutenbergHeader = "The Project Gutenberg eBook\r\n\r\nTitle: The Time Machine\r\n\r\nAuthor: H. G. Wells\r\n\r\n\r\n\r\n" +
	"I told some of you last Thursday of the principles of the Time Machine.\r\n\r\n" +
	"It was at ten o'clock to-day that the first of all Time Machines began its career."

func TestParseHeadersAndParagraphs(t *testing.T) {
	t.Parallel()

	doc := Parse(gutenbergHeader, "35.txt")
	assert.Equal(t, "The Time Machine", doc.Title)
	assert.Equal(t, "H. G. Wells", doc.Author)
	require.Len(t, doc.Paragraphs, 5)
	assert.Equal(t, "The Project Gutenberg eBook", doc.Paragraphs[0])
	assert.Equal(t, "I told some of you last Thursday of the principles of the Time Machine.", doc.Paragraphs[3])
	for _, p := range doc.Paragraphs {
		assert.NotContains(t, p, "\r")
	}
}

func TestParseMultiLineTitle(t *testing.T) {
	t.Parallel()

	doc := Parse("Title: Twenty Thousand Leagues\n  Under the Sea\n\nbody text", "x.txt")
	assert.Equal(t, "Twenty Thousand Leagues\n  Under the Sea", doc.Title)
}

func TestParseHeaderStopsAtWhitespaceOnlyLine(t *testing.T) {
	t.Parallel()

	doc := Parse("Title: Foo\n   \nSome body text here that continues.\n\nAuthor: Jane Doe\n\t\nMore body", "x.txt")
	assert.Equal(t, "Foo", doc.Title)
	assert.Equal(t, "Jane Doe", doc.Author)
	assert.Equal(t, []string{"Title: Foo", "Some body text here that continues.", "Author: Jane Doe", "More body"}, doc.Paragraphs)
}

func TestParseFallbacks(t *testing.T) {
	t.Parallel()

	doc := Parse("no headers here\n\nsecond paragraph", "1342.txt")
	assert.Equal(t, "1342.txt", doc.Title)
	assert.Equal(t, UnknownAuthor, doc.Author)
	assert.Equal(t, []string{"no headers here", "second paragraph"}, doc.Paragraphs)
}

func TestParseCollapsesRunsOfBlankLines(t *testing.T) {
	t.Parallel()

	doc := Parse("one\n\n\n\n\ntwo\r\n\r\n\r\nthree\n \nfour\n", "f")
	assert.Equal(t, []string{"one", "two", "three", "four\n"}, doc.Paragraphs)
}

func TestWalkerProducesRecordsFromNestedTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "Title: Alpha\n\nAuthor: Ann\n\nfirst\n\nsecond")
	writeFile(t, filepath.Join(root, "1", "2", "b.txt"), "only paragraph")
	writeFile(t, filepath.Join(root, "1", "c.txt"), "Author: Cy\n\nc body")

	w := NewWalker(root, nil)
	var records []paragraph.Record
	require.NoError(t, w.Produce(context.Background(), func(r paragraph.Record) {
		records = append(records, r)
	}))

	var got []string
	for _, r := range records {
		assert.False(t, r.Highlighted())
		got = append(got, r.Book+"|"+r.Author+"|"+r.Text)
	}
	sort.Strings(got)
	assert.Equal(t, []string{
		"Alpha|Ann|Author: Ann",
		"Alpha|Ann|Title: Alpha",
		"Alpha|Ann|first",
		"Alpha|Ann|second",
		"b.txt|Unknown|only paragraph",
		"c.txt|Cy|Author: Cy",
		"c.txt|Cy|c body",
	}, got)
}

func TestWalkerFailsOnMissingRoot(t *testing.T) {
	t.Parallel()

	w := NewWalker(filepath.Join(t.TempDir(), "missing"), nil)
	err := w.Produce(context.Background(), func(paragraph.Record) {})
	assert.Error(t, err)
}

func TestWalkerFailsOnUnreadableFile(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}

	root := t.TempDir()
	path := filepath.Join(root, "locked.txt")
	writeFile(t, path, "secret")
	// #nosec G302 -- permissions removed intentionally for the failure path.
	require.NoError(t, os.Chmod(path, 0o000))
	t.Cleanup(func() {
		// #nosec G302 -- restore so TempDir cleanup succeeds.
		_ = os.Chmod(path, 0o600)
	})

	err := NewWalker(root, nil).Produce(context.Background(), func(paragraph.Record) {})
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}
