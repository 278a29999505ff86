package crawler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/metrics"
	"github.com/JakeFAU/literary-clock/internal/storage"
)

// Page is a fetched document. URL is the address after redirects and is the base for
// resolving relative links.
type Page struct {
	URL  string
	Body []byte
}

// Fetcher performs a single GET.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Config bounds the crawl.
type Config struct {
	// Concurrency caps in-flight directory fetches.
	Concurrency int
	// Downloads caps concurrent leaf downloads. Zero means unbounded.
	Downloads int
}

// Stats summarises one Run.
type Stats struct {
	Fetched        int
	Failed         int
	PeakInFlight   int
	Discovered     int
	Downloaded     int
	Skipped        int
	DownloadFailed int
}

// ErrInvalidConcurrency is returned for a non-positive cap.
var ErrInvalidConcurrency = errors.New("crawler concurrency must be positive")

// Scheduler drives the crawl from a single control loop. Directory fetches run in their
// own goroutines and report back on a channel; the in-flight count and backlog are only
// touched by the loop.
type Scheduler struct {
	fetcher Fetcher
	store   storage.BlobStore
	cfg     Config
	logger  *zap.Logger
}

// NewScheduler validates cfg and builds a Scheduler writing leaves to store.
func NewScheduler(fetcher Fetcher, store storage.BlobStore, cfg Config, logger *zap.Logger) (*Scheduler, error) {
	if cfg.Concurrency <= 0 {
		return nil, ErrInvalidConcurrency
	}
	if cfg.Downloads < 0 {
		cfg.Downloads = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{fetcher: fetcher, store: store, cfg: cfg, logger: logger.Named("crawler")}, nil
}

type fetchResult struct {
	url  string
	page Page
	err  error
}

// Run crawls from root until no fetch is in flight and the backlog is empty. Directories
// are deduplicated by URL and leaves by file name. Fetch and
// download failures are counted and logged, never returned. The only error is ctx ending,
// in which case the backlog is abandoned once outstanding fetches return.
func (s *Scheduler) Run(ctx context.Context, root string) (Stats, error) {
	var (
		stats    Stats
		inFlight int
		backlog  []string
		results  = make(chan fetchResult)
		seen     = map[string]struct{}{}
		leaves   = map[string]struct{}{}
		dl       = newDownloader(s.fetcher, s.store, s.cfg.Downloads, s.logger)
	)

	spawn := func(target string) {
		inFlight++
		if inFlight > stats.PeakInFlight {
			stats.PeakInFlight = inFlight
		}
		go func() {
			page, err := s.fetcher.Fetch(ctx, target)
			results <- fetchResult{url: target, page: page, err: err}
		}()
	}

	rootURL, err := resolve(root, "")
	if err != nil {
		return stats, fmt.Errorf("crawl root: %w", err)
	}
	root = normalizeURL(rootURL)
	seen[root] = struct{}{}
	spawn(root)

	for inFlight > 0 {
		res := <-results
		inFlight--
		if res.err != nil {
			stats.Failed++
			metrics.ObserveFetch(res.url, "failed")
			s.logger.Warn("fetch failed", zap.String("url", res.url), zap.Error(res.err))
		} else {
			stats.Fetched++
			metrics.ObserveFetch(res.url, "ok")
			links, err := ExtractLinks(res.page)
			if err != nil {
				s.logger.Warn("unreadable index page", zap.String("url", res.url), zap.Error(err))
			}
			for _, link := range links {
				switch link.Kind {
				case LinkDirectory:
					if _, dup := seen[link.URL]; dup {
						continue
					}
					seen[link.URL] = struct{}{}
					stats.Discovered++
					if inFlight < s.cfg.Concurrency && ctx.Err() == nil {
						spawn(link.URL)
					} else {
						backlog = append(backlog, link.URL)
					}
				case LinkFile:
					// Leaves share one flat namespace, so two listings naming the same file
					// download it once.
					if _, dup := leaves[link.Href]; dup {
						continue
					}
					leaves[link.Href] = struct{}{}
					dl.start(ctx, link)
				}
			}
		}

		if inFlight < s.cfg.Concurrency && len(backlog) > 0 && ctx.Err() == nil {
			next := backlog[len(backlog)-1]
			backlog = backlog[:len(backlog)-1]
			spawn(next)
		}
		metrics.SetCrawlState(inFlight, len(backlog))
		s.logger.Debug("crawl progress", zap.Int("in_flight", inFlight), zap.Int("backlog", len(backlog)))
	}

	dl.wait()
	dl.merge(&stats)
	s.logger.Info("crawl finished",
		zap.Int("fetched", stats.Fetched),
		zap.Int("failed", stats.Failed),
		zap.Int("downloaded", stats.Downloaded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("download_failed", stats.DownloadFailed),
	)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("crawl canceled with %d pending: %w", len(backlog), err)
	}
	return stats, nil
}
