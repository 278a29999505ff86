package crawler

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/metrics"
	"github.com/JakeFAU/literary-clock/internal/storage"
)

const textContentType = "text/plain; charset=utf-8"

// downloader fetches leaf files outside the directory cap. Each leaf is tried once.
type downloader struct {
	fetcher Fetcher
	store   storage.BlobStore
	logger  *zap.Logger
	sem     chan struct{}
	wg      sync.WaitGroup

	downloaded atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
}

func newDownloader(fetcher Fetcher, store storage.BlobStore, limit int, logger *zap.Logger) *downloader {
	d := &downloader{fetcher: fetcher, store: store, logger: logger}
	if limit > 0 {
		d.sem = make(chan struct{}, limit)
	}
	return d
}

func (d *downloader) start(ctx context.Context, link Link) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if d.sem != nil {
			d.sem <- struct{}{}
			defer func() { <-d.sem }()
		}
		d.fetch(ctx, link)
	}()
}

func (d *downloader) fetch(ctx context.Context, link Link) {
	name := link.Href
	log := d.logger.With(zap.String("url", link.URL), zap.String("path", name))

	exists, err := d.store.Exists(ctx, name)
	if err != nil {
		d.fail(log, "check existing file", err)
		return
	}
	if exists {
		d.skipped.Add(1)
		metrics.ObserveDownload("skipped")
		log.Debug("skipped")
		return
	}
	page, err := d.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		d.fail(log, "download failed", err)
		return
	}
	if _, err := d.store.PutObject(ctx, name, textContentType, bytes.NewReader(page.Body)); err != nil {
		d.fail(log, "could not write file", err)
		return
	}
	d.downloaded.Add(1)
	metrics.ObserveDownload("downloaded")
	log.Info("downloaded", zap.Int("bytes", len(page.Body)))
}

func (d *downloader) fail(log *zap.Logger, msg string, err error) {
	d.failed.Add(1)
	metrics.ObserveDownload("failed")
	log.Warn(msg, zap.Error(err))
}

func (d *downloader) wait() { d.wg.Wait() }

func (d *downloader) merge(stats *Stats) {
	stats.Downloaded = int(d.downloaded.Load())
	stats.Skipped = int(d.skipped.Load())
	stats.DownloadFailed = int(d.failed.Load())
}
