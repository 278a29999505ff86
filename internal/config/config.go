// Package config loads and validates literary-clock configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendGCS    = "gcs"
)

// EnvPrefix namespaces environment overrides, e.g. CLOCK_CRAWLER_CONCURRENCY.
const EnvPrefix = "CLOCK"

// Config captures every knob loaded via Viper.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// PathsConfig locates the downloaded books and the collected paragraphs. With the gcs
// backend they are object prefixes inside the bucket.
type PathsConfig struct {
	Books      string `mapstructure:"books"`
	Paragraphs string `mapstructure:"paragraphs"`
}

// StorageConfig selects the blob store backend.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// CrawlerConfig governs the download crawl.
type CrawlerConfig struct {
	RootURL     string  `mapstructure:"root_url"`
	Concurrency int     `mapstructure:"concurrency"`
	Downloads   int     `mapstructure:"downloads"`
	UserAgent   string  `mapstructure:"user_agent"`
	RatePerSec  float64 `mapstructure:"rate_per_second"`
	RateBurst   int     `mapstructure:"rate_burst"`
}

// HTTPConfig configures the HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// PipelineConfig sizes the collect pipeline.
type PipelineConfig struct {
	MinLength       int  `mapstructure:"min_length"`
	MaxLength       int  `mapstructure:"max_length"`
	FilterCapacity  int  `mapstructure:"filter_capacity"`
	ExtractCapacity int  `mapstructure:"extract_capacity"`
	SinkCapacity    int  `mapstructure:"sink_capacity"`
	Report          bool `mapstructure:"report"`
}

// MetricsConfig enables the metrics listener.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// Load builds a Config from defaults, an optional file and the environment. With an empty
// path a "config" file in the working directory or $HOME/.literary-clock is used when present.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.literary-clock")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("paths.books", "./books")
	v.SetDefault("paths.paragraphs", "./paragraphs")
	v.SetDefault("storage.backend", BackendLocal)
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("crawler.root_url", "https://mirror.csclub.uwaterloo.ca/gutenberg/")
	v.SetDefault("crawler.concurrency", 8)
	v.SetDefault("crawler.downloads", 32)
	v.SetDefault("crawler.user_agent", "literary-clock/0.1")
	v.SetDefault("crawler.rate_per_second", 0)
	v.SetDefault("crawler.rate_burst", 1)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("pipeline.min_length", 32)
	v.SetDefault("pipeline.max_length", 400)
	v.SetDefault("pipeline.filter_capacity", 64)
	v.SetDefault("pipeline.extract_capacity", 32)
	v.SetDefault("pipeline.sink_capacity", 16)
	v.SetDefault("pipeline.report", false)
	v.SetDefault("metrics.listen_addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Crawler.RootURL) == "" {
		return fmt.Errorf("crawler.root_url must be set")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.Downloads < 0 {
		return fmt.Errorf("crawler.downloads must be >= 0")
	}
	if c.Crawler.RatePerSec < 0 {
		return fmt.Errorf("crawler.rate_per_second must be >= 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Pipeline.MinLength < 0 {
		return fmt.Errorf("pipeline.min_length must be >= 0")
	}
	if c.Pipeline.MaxLength <= c.Pipeline.MinLength {
		return fmt.Errorf("pipeline.max_length must be > pipeline.min_length")
	}
	if c.Pipeline.FilterCapacity < 0 || c.Pipeline.ExtractCapacity < 0 || c.Pipeline.SinkCapacity < 0 {
		return fmt.Errorf("pipeline capacities must be >= 0")
	}
	switch c.Storage.Backend {
	case BackendLocal, BackendMemory:
	case BackendGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when storage.backend is gcs")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of local, memory, gcs", c.Storage.Backend)
	}
	return nil
}

// Timeout converts http.timeout_seconds into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
