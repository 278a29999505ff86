package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/app"
	"github.com/JakeFAU/literary-clock/internal/crawler"
	collyfetcher "github.com/JakeFAU/literary-clock/internal/fetcher/colly"
	"github.com/JakeFAU/literary-clock/internal/policy/ratelimit"
)

func runDownload(ctx context.Context, a *app.App) error {
	cfg := a.Config()
	fetcher := ratelimit.Wrap(collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.Timeout(),
	}), ratelimit.Config{
		RPS:   cfg.Crawler.RatePerSec,
		Burst: cfg.Crawler.RateBurst,
	})
	scheduler, err := crawler.NewScheduler(fetcher, a.Books(), crawler.Config{
		Concurrency: cfg.Crawler.Concurrency,
		Downloads:   cfg.Crawler.Downloads,
	}, a.Logger())
	if err != nil {
		return fmt.Errorf("init crawler: %w", err)
	}

	a.Logger().Info("download started",
		zap.String("root", cfg.Crawler.RootURL),
		zap.String("books", cfg.Paths.Books),
		zap.Int("concurrency", cfg.Crawler.Concurrency),
		zap.Float64("rate_per_second", cfg.Crawler.RatePerSec),
	)
	stats, err := scheduler.Run(ctx, cfg.Crawler.RootURL)
	if err != nil {
		return fmt.Errorf("run crawler: %w", err)
	}
	a.Logger().Info("download finished",
		zap.Int("fetched", stats.Fetched),
		zap.Int("peak_in_flight", stats.PeakInFlight),
		zap.Int("discovered", stats.Discovered),
		zap.Int("downloaded", stats.Downloaded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("download_failed", stats.DownloadFailed),
	)
	return nil
}
