// Package metrics exposes Prometheus collectors for the pipeline and the crawler.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stage record events.
const (
	EventIn      = "in"
	EventOut     = "out"
	EventDropped = "dropped"
)

var (
	pipelineRecordsTotal *prometheus.CounterVec
	pipelinePanicsTotal  *prometheus.CounterVec
	pipelineQueueDepth   *prometheus.GaugeVec
	persistWritesTotal   *prometheus.CounterVec
	crawlerFetchesTotal  *prometheus.CounterVec
	crawlerDownloadTotal *prometheus.CounterVec
	crawlerInFlight      prometheus.Gauge
	crawlerBacklog       prometheus.Gauge
	rateLimitDelay       *prometheus.HistogramVec
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pipelineRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_records_total",
				Help: "Records seen by each pipeline stage, labeled by stage and event (in, out, dropped).",
			},
			[]string{"stage", "event"},
		)

		pipelinePanicsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_stage_panics_total",
				Help: "Stage workers that terminated with a recovered panic.",
			},
			[]string{"stage"},
		)

		pipelineQueueDepth = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pipeline_queue_depth",
				Help: "Records buffered in a stage's output queue, sampled after each send.",
			},
			[]string{"stage"},
		)

		persistWritesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persist_writes_total",
				Help: "Paragraph record writes, labeled by status.",
			},
			[]string{"status"},
		)

		crawlerFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_fetches_total",
				Help: "Directory listing fetches completed, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		crawlerDownloadTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_downloads_total",
				Help: "Leaf document downloads, labeled by status (downloaded, skipped, failed).",
			},
			[]string{"status"},
		)

		crawlerInFlight = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_inflight_fetches",
				Help: "Directory fetches currently counted against the concurrency cap.",
			},
		)

		crawlerBacklog = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_backlog_links",
				Help: "Discovered directory links waiting for a free fetch slot.",
			},
		)

		rateLimitDelay = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_rate_limit_delay_seconds",
				Help:    "Time fetches spent waiting on the per-host rate limiter.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"site"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Requests served by the operator listener, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Operator listener latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveStage increments the record counter for a stage event.
func ObserveStage(stage, event string) {
	Init()
	pipelineRecordsTotal.WithLabelValues(stage, event).Inc()
}

// ObserveStagePanic records a stage worker that crashed.
func ObserveStagePanic(stage string) {
	Init()
	pipelinePanicsTotal.WithLabelValues(stage).Inc()
}

// SetQueueDepth publishes the number of records buffered downstream of stage.
func SetQueueDepth(stage string, depth int) {
	Init()
	pipelineQueueDepth.WithLabelValues(stage).Set(float64(depth))
}

// ObservePersist records a paragraph write outcome.
func ObservePersist(status string) {
	Init()
	persistWritesTotal.WithLabelValues(status).Inc()
}

// ObserveFetch records a completed directory fetch.
func ObserveFetch(site, status string) {
	Init()
	crawlerFetchesTotal.WithLabelValues(SanitizeSite(site), status).Inc()
}

// ObserveDownload records a leaf download outcome.
func ObserveDownload(status string) {
	Init()
	crawlerDownloadTotal.WithLabelValues(status).Inc()
}

// SetCrawlState publishes the scheduler's in-flight count and backlog size.
func SetCrawlState(inFlight, backlog int) {
	Init()
	crawlerInFlight.Set(float64(inFlight))
	crawlerBacklog.Set(float64(backlog))
}

// ObserveRateLimitDelay records a wait imposed by the rate limiter.
func ObserveRateLimitDelay(site string, waited time.Duration) {
	Init()
	rateLimitDelay.WithLabelValues(SanitizeSite(site)).Observe(waited.Seconds())
}

// ObserveHTTPRequest records a request served by the operator listener.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
