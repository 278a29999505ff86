package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/storage/memory"
)

const testRoot = "http://mirror.test/"

// fakeFetcher serves an in-memory tree and tracks how many directory fetches, and
// separately how many leaf fetches, overlap.
type fakeFetcher struct {
	pages     map[string]string
	fail      map[string]bool
	delay     time.Duration
	leafDelay time.Duration

	mu      sync.Mutex
	calls   map[string]int
	order   []string
	current atomic.Int64
	peak    atomic.Int64

	leafCurrent atomic.Int64
	leafPeak    atomic.Int64
}

func trackPeak(current, peak *atomic.Int64) func() {
	n := current.Add(1)
	for {
		p := peak.Load()
		if n <= p || peak.CompareAndSwap(p, n) {
			break
		}
	}
	return func() { current.Add(-1) }
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, fail: map[string]bool{}, calls: map[string]int{}, delay: time.Millisecond}
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	f.mu.Lock()
	f.calls[rawURL]++
	f.order = append(f.order, rawURL)
	f.mu.Unlock()

	if strings.HasSuffix(rawURL, "/") {
		defer trackPeak(&f.current, &f.peak)()
		time.Sleep(f.delay)
	} else {
		defer trackPeak(&f.leafCurrent, &f.leafPeak)()
		time.Sleep(f.leafDelay)
	}
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if f.fail[rawURL] {
		return Page{}, errors.New("connection reset")
	}
	body, ok := f.pages[rawURL]
	if !ok {
		return Page{}, fmt.Errorf("404 %s", rawURL)
	}
	return Page{URL: rawURL, Body: []byte(body)}, nil
}

func (f *fakeFetcher) callCount(rawURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[rawURL]
}

func (f *fakeFetcher) directoryOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var dirs []string
	for _, u := range f.order {
		if strings.HasSuffix(u, "/") {
			dirs = append(dirs, u)
		}
	}
	return dirs
}

// buildTree creates a directory index of the given depth and fanout. Every directory also
// lists one numeric text file plus links that must be ignored.
func buildTree(depth, fanout int) (pages map[string]string, dirs int, files []string) {
	pages = map[string]string{}
	next := 1
	var walk func(url string, level int)
	walk = func(url string, level int) {
		var b strings.Builder
		b.WriteString(`<a href="../">Parent Directory</a>`)
		b.WriteString(`<a href="README">README</a>`)
		file := fmt.Sprintf("%d.txt", next)
		next++
		files = append(files, file)
		pages[url+file] = "contents of " + file
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, file, file)
		if level < depth {
			for i := 0; i < fanout; i++ {
				child := fmt.Sprintf("%d/", next)
				next++
				dirs++
				fmt.Fprintf(&b, `<a href="%s">%s</a>`, child, child)
				walk(url+child, level+1)
			}
		}
		pages[url] = b.String()
	}
	walk(testRoot, 0)
	return pages, dirs, files
}

func TestRunRespectsConcurrencyCap(t *testing.T) {
	t.Parallel()

	pages, dirs, files := buildTree(3, 4)
	fetcher := newFakeFetcher(pages)
	store := memory.NewBlobStore()
	s, err := NewScheduler(fetcher, store, Config{Concurrency: 3}, zap.NewNop())
	require.NoError(t, err)

	stats, err := s.Run(context.Background(), testRoot)
	require.NoError(t, err)

	assert.LessOrEqual(t, fetcher.peak.Load(), int64(3))
	assert.LessOrEqual(t, stats.PeakInFlight, 3)
	assert.Equal(t, 3, stats.PeakInFlight)
	assert.Equal(t, dirs, stats.Discovered)
	assert.Equal(t, dirs+1, stats.Fetched, "every directory plus the root")
	assert.Zero(t, stats.Failed)
	assert.Equal(t, len(files), stats.Downloaded)
	assert.Equal(t, len(files), store.Len())

	data, err := store.GetObject(context.Background(), files[0])
	require.NoError(t, err)
	assert.Equal(t, "contents of "+files[0], string(data))
}

func TestRunSingleFetchAtATime(t *testing.T) {
	t.Parallel()

	pages, dirs, _ := buildTree(2, 3)
	fetcher := newFakeFetcher(pages)
	s, err := NewScheduler(fetcher, memory.NewBlobStore(), Config{Concurrency: 1, Downloads: 2}, nil)
	require.NoError(t, err)

	stats, err := s.Run(context.Background(), testRoot)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fetcher.peak.Load())
	assert.Equal(t, dirs+1, stats.Fetched)
}

func TestRunSkipsExistingFiles(t *testing.T) {
	t.Parallel()

	pages, _, files := buildTree(2, 2)
	store := memory.NewBlobStore()
	fetcher := newFakeFetcher(pages)
	s, err := NewScheduler(fetcher, store, Config{Concurrency: 2}, nil)
	require.NoError(t, err)

	first, err := s.Run(context.Background(), testRoot)
	require.NoError(t, err)
	require.Equal(t, len(files), first.Downloaded)

	second, err := s.Run(context.Background(), testRoot)
	require.NoError(t, err)
	assert.Zero(t, second.Downloaded)
	assert.Equal(t, len(files), second.Skipped)
	assert.Equal(t, 1, fetcher.callCount(testRoot+files[0]), "existing leaf is not fetched again")
}

func TestRunFailuresAreCountedNotFatal(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		testRoot:                `<a href="1/">1/</a><a href="2/">2/</a><a href="9.txt">9.txt</a>`,
		testRoot + "1/":         `<a href="3/">3/</a><a href="10.txt">10.txt</a>`,
		testRoot + "1/3/":       `<a href="11.txt">11.txt</a>`,
		testRoot + "1/10.txt":   "ten",
		testRoot + "1/3/11.txt": "eleven",
	}
	fetcher := newFakeFetcher(pages)
	fetcher.fail[testRoot+"2/"] = true
	store := memory.NewBlobStore()
	s, err := NewScheduler(fetcher, store, Config{Concurrency: 2}, nil)
	require.NoError(t, err)

	stats, err := s.Run(context.Background(), testRoot)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Fetched)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 3, stats.Discovered)
	assert.Equal(t, 2, stats.Downloaded)
	assert.Equal(t, 1, stats.DownloadFailed, "9.txt is missing upstream")

	ok, err := store.Exists(context.Background(), "9.txt")
	require.NoError(t, err)
	assert.False(t, ok, "failed leaf stays absent for the next run")
}

func TestRunDeduplicatesLinks(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		testRoot:             `<a href="1/">1/</a><a href="1/">again</a><a href="./1/">dot</a>`,
		testRoot + "1/":      `<a href="5.txt">5.txt</a><a href="5.txt">5.txt</a>`,
		testRoot + "1/5.txt": "five",
	}
	fetcher := newFakeFetcher(pages)
	s, err := NewScheduler(fetcher, memory.NewBlobStore(), Config{Concurrency: 4}, nil)
	require.NoError(t, err)

	stats, err := s.Run(context.Background(), testRoot)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 1, fetcher.callCount(testRoot+"1/"))
	assert.Equal(t, 1, stats.Downloaded)
}

func TestRunPromotesMostRecentBacklogEntry(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		testRoot:        `<a href="1/">1/</a><a href="2/">2/</a><a href="3/">3/</a>`,
		testRoot + "1/": ``,
		testRoot + "2/": ``,
		testRoot + "3/": ``,
	}
	fetcher := newFakeFetcher(pages)
	s, err := NewScheduler(fetcher, memory.NewBlobStore(), Config{Concurrency: 1}, nil)
	require.NoError(t, err)

	stats, err := s.Run(context.Background(), testRoot)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Fetched)
	assert.Equal(t, []string{testRoot, testRoot + "1/", testRoot + "3/", testRoot + "2/"}, fetcher.directoryOrder(),
		"1/ is admitted directly, then the backlog pops 3/ before 2/")
}

func TestRunCapsConcurrentDownloads(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	pages := map[string]string{}
	for i := 1; i <= 20; i++ {
		file := fmt.Sprintf("%d.txt", i)
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, file, file)
		pages[testRoot+file] = "contents of " + file
	}
	pages[testRoot] = b.String()
	fetcher := newFakeFetcher(pages)
	fetcher.leafDelay = 10 * time.Millisecond
	store := memory.NewBlobStore()
	s, err := NewScheduler(fetcher, store, Config{Concurrency: 1, Downloads: 3}, nil)
	require.NoError(t, err)

	stats, err := s.Run(context.Background(), testRoot)
	require.NoError(t, err)
	assert.LessOrEqual(t, fetcher.leafPeak.Load(), int64(3))
	assert.Positive(t, fetcher.leafPeak.Load())
	assert.Equal(t, 20, stats.Downloaded)
	assert.Equal(t, 20, store.Len())
}

func TestRunDownloadsSharedFileNameOnce(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		testRoot:             `<a href="1/">1/</a><a href="2/">2/</a>`,
		testRoot + "1/":      `<a href="7.txt">7.txt</a>`,
		testRoot + "2/":      `<a href="7.txt">7.txt</a>`,
		testRoot + "1/7.txt": "seven",
		testRoot + "2/7.txt": "seven",
	}
	fetcher := newFakeFetcher(pages)
	store := memory.NewBlobStore()
	s, err := NewScheduler(fetcher, store, Config{Concurrency: 2}, nil)
	require.NoError(t, err)

	stats, err := s.Run(context.Background(), testRoot)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Fetched)
	assert.Equal(t, 1, stats.Downloaded)
	assert.Equal(t, 1, fetcher.callCount(testRoot+"1/7.txt")+fetcher.callCount(testRoot+"2/7.txt"))
	assert.Equal(t, 1, store.Len())
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	pages, _, _ := buildTree(3, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := NewScheduler(newFakeFetcher(pages), memory.NewBlobStore(), Config{Concurrency: 2}, nil)
	require.NoError(t, err)

	stats, err := s.Run(ctx, testRoot)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Fetched)
}

func TestNewSchedulerRejectsBadConcurrency(t *testing.T) {
	t.Parallel()

	_, err := NewScheduler(newFakeFetcher(nil), memory.NewBlobStore(), Config{}, nil)
	require.ErrorIs(t, err, ErrInvalidConcurrency)
}
