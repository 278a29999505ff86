// Package ratelimit throttles outbound fetches per host with token buckets.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/literary-clock/internal/crawler"
	"github.com/JakeFAU/literary-clock/internal/metrics"
)

// Limiter manages one token bucket per host.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// Config holds rate limiter configuration. A non-positive RPS disables limiting.
type Config struct {
	RPS   float64
	Burst int
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	r := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      r,
		burst:    burst,
	}
}

// Wait blocks until rawURL's host has a token or ctx ends.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)
	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveRateLimitDelay(host, waited)
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Fetcher delays every call on a shared Limiter before delegating.
type Fetcher struct {
	next    crawler.Fetcher
	limiter *Limiter
}

// Wrap returns next unchanged when cfg disables limiting.
func Wrap(next crawler.Fetcher, cfg Config) crawler.Fetcher {
	if cfg.RPS <= 0 {
		return next
	}
	return &Fetcher{next: next, limiter: New(cfg)}
}

// Fetch waits for a token and then fetches.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (crawler.Page, error) {
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return crawler.Page{}, err
	}
	return f.next.Fetch(ctx, rawURL)
}
