package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := map[string]LinkKind{
		"1/":          LinkDirectory,
		"12345/":      LinkDirectory,
		" 7/ ":        LinkDirectory,
		"12345":       LinkIgnored,
		"etext90/":    LinkIgnored,
		"../":         LinkIgnored,
		"/1/":         LinkIgnored,
		"1234.txt":    LinkFile,
		"1234-0.txt":  LinkIgnored,
		"1234.txt.gz": LinkIgnored,
		"1234xtxt":    LinkIgnored,
		"readme.txt":  LinkIgnored,
		"":            LinkIgnored,
	}
	for href, want := range cases {
		assert.Equal(t, want, Classify(href), "href %q", href)
	}
}

func TestExtractLinksResolvesAgainstPage(t *testing.T) {
	t.Parallel()

	body := `<html><body>
<a href="../">Parent</a>
<a href="1/">1/</a>
<a href="22/#top">22/</a>
<a href="333.txt">333.txt</a>
<a>no href</a>
<a href="notes.html">notes</a>
</body></html>`
	links, err := ExtractLinks(Page{URL: "HTTP://Mirror.Example:80/gutenberg/", Body: []byte(body)})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, Link{Href: "1/", URL: "http://mirror.example/gutenberg/1/", Kind: LinkDirectory}, links[0])
	assert.Equal(t, Link{Href: "333.txt", URL: "http://mirror.example/gutenberg/333.txt", Kind: LinkFile}, links[1])
}

func TestLinkKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "directory", LinkDirectory.String())
	assert.Equal(t, "file", LinkFile.String())
	assert.Equal(t, "ignored", LinkIgnored.String())
}
