package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all worker configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Crawl     CrawlConfig
	Sink      SinkConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds ops HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8600"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// FetchConfig holds upstream HTTP client configuration.
type FetchConfig struct {
	TimeoutSeconds int    `envconfig:"FETCH_TIMEOUT_SECONDS" default:"30"`
	UserAgent      string `envconfig:"FETCH_USER_AGENT" default:"structured-data-scraper/1.0"`
	HostRPS        int    `envconfig:"FETCH_HOST_RPS" default:"2"`
	HostBurst      int    `envconfig:"FETCH_HOST_BURST" default:"4"`
	MaxBodyBytes   int64  `envconfig:"FETCH_MAX_BODY_BYTES" default:"10485760"`
	RetryMax       int    `envconfig:"FETCH_RETRY_MAX" default:"3"`
}

// CrawlConfig holds worker pool and page budget configuration.
type CrawlConfig struct {
	Workers       int `envconfig:"CRAWL_WORKERS" default:"4"`
	MaxPages      int `envconfig:"CRAWL_MAX_PAGES" default:"100"`
	QueueCapacity int `envconfig:"CRAWL_QUEUE_CAPACITY" default:"256"`
}

// SinkConfig holds dataset output configuration.
type SinkConfig struct {
	Dir      string `envconfig:"SINK_DIR" default:"./datasets"`
	Compress bool   `envconfig:"SINK_COMPRESS" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds ops API rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8600",
			Host: "0.0.0.0",
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			UserAgent:      "structured-data-scraper/1.0",
			HostRPS:        2,
			HostBurst:      4,
			MaxBodyBytes:   10 * 1024 * 1024,
			RetryMax:       3,
		},
		Crawl: CrawlConfig{
			Workers:       4,
			MaxPages:      100,
			QueueCapacity: 256,
		},
		Sink: SinkConfig{
			Dir:      "./datasets",
			Compress: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate checks ranges that envconfig cannot express.
func (c *Config) Validate() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %d", c.Fetch.TimeoutSeconds)
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		return fmt.Errorf("fetch max body bytes must be positive, got %d", c.Fetch.MaxBodyBytes)
	}
	if c.Fetch.HostRPS <= 0 || c.Fetch.HostBurst <= 0 {
		return fmt.Errorf("fetch host rps/burst must be positive, got %d/%d", c.Fetch.HostRPS, c.Fetch.HostBurst)
	}
	if c.Crawl.Workers <= 0 {
		return fmt.Errorf("crawl workers must be positive, got %d", c.Crawl.Workers)
	}
	if c.Crawl.MaxPages <= 0 {
		return fmt.Errorf("crawl max pages must be positive, got %d", c.Crawl.MaxPages)
	}
	if c.Crawl.QueueCapacity <= 0 {
		return fmt.Errorf("crawl queue capacity must be positive, got %d", c.Crawl.QueueCapacity)
	}
	if c.Sink.Dir == "" {
		return fmt.Errorf("sink directory required")
	}
	return nil
}
