package fetch

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/config"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/logging"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/monitoring"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/resilience"
)

// Client wraps resty with per-host rate limiting and circuit breakers
type Client struct {
	resty    *resty.Client
	breakers *resilience.Registry
	cfg      config.FetchConfig
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// New creates a production-ready fetch client
func New(cfg config.FetchConfig, logger *logging.Logger, metrics *monitoring.Metrics) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 30 * time.Second
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second).
		SetRetryCount(cfg.RetryMax).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(30*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetTransport(retryClient.HTTPClient.Transport)

	return &Client{
		resty: restyClient,
		breakers: resilience.NewRegistry(resilience.Settings{
			MaxRequests: 2,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
		}),
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch retrieves one URL. Status >= 400 is returned as a completed
// Response with a nil error; only transport-level problems and an open
// breaker produce errors.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	host := target.Hostname()
	if host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}

	if err := c.limiterFor(host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	breaker := c.breakers.For(host)
	start := time.Now()

	result, err := breaker.Execute(func() (interface{}, error) {
		resp, err := c.resty.R().SetContext(ctx).Get(rawURL)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			return resp, fmt.Errorf("upstream %s returned %d", host, resp.StatusCode())
		}
		return resp, nil
	})

	duration := time.Since(start)
	if c.metrics != nil {
		c.metrics.SetBreakerState(host, breaker.State().Value())
	}

	if err != nil {
		// A 5xx still carries a usable response alongside the
		// breaker failure
		if resp, ok := result.(*resty.Response); ok && resp != nil {
			return c.response(rawURL, host, resp, duration), nil
		}
		if c.metrics != nil {
			c.metrics.RecordFetch(host, "error", duration)
		}
		c.logger.Warn("fetch failed",
			zap.String("url", rawURL),
			zap.String("host", host),
			zap.Error(err),
		)
		return nil, err
	}

	return c.response(rawURL, host, result.(*resty.Response), duration), nil
}

func (c *Client) response(rawURL, host string, resp *resty.Response, duration time.Duration) *Response {
	body := resp.Body()
	if int64(len(body)) > c.cfg.MaxBodyBytes {
		body = body[:c.cfg.MaxBodyBytes]
	}

	if c.metrics != nil {
		c.metrics.RecordFetch(host, statusClass(resp.StatusCode()), duration)
	}
	c.logger.Debug("fetched",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", duration),
	)

	return &Response{
		URL:         rawURL,
		StatusCode:  resp.StatusCode(),
		Body:        body,
		ContentType: resp.Header().Get("Content-Type"),
		Duration:    duration,
	}
}

// limiterFor returns the host's rate limiter, creating it lazily
func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.RLock()
	limiter, ok := c.limiters[host]
	c.mu.RUnlock()
	if ok {
		return limiter
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if limiter, ok = c.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(c.cfg.HostRPS), c.cfg.HostBurst)
	c.limiters[host] = limiter
	return limiter
}

// BreakerStatus reports every host breaker for the ops surface
func (c *Client) BreakerStatus() []resilience.Status {
	return c.breakers.Snapshot()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
