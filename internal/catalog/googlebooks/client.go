// Package googlebooks is a rate-limited, cached client for the Google Books
// volumes API.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/seohyun-lee/bookduck-backend/internal/cache"
	"github.com/seohyun-lee/bookduck-backend/internal/ratelimit"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"
	defaultTimeout = 10 * time.Second
	defaultRPS     = 5.0
	defaultBurst   = 10

	defaultPageSize = 10
	maxPageSize     = 40

	// maxBodyBytes bounds what is read from one response.
	maxBodyBytes = 4 << 20

	limiterKey = "googlebooks"
)

// Config configures the client. Zero values take defaults.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RPS       float64
	Burst     int
	UserAgent string
	// CacheTTL is how long parsed responses stay cached. Zero disables caching.
	CacheTTL time.Duration
}

// Client is a Google Books API client.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	userAgent string
	timeout   time.Duration
	limiter   *ratelimit.KeyedRateLimiter
	cache     cache.Cache
	cacheTTL  time.Duration
	group     singleflight.Group
	logger    *slog.Logger
}

// New creates a client. A nil cache disables caching.
func New(cfg Config, c cache.Cache, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Bookduck/1.0"
	}
	if c == nil {
		c = cache.Noop{}
	}

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		limiter:   ratelimit.New(cfg.RPS, cfg.Burst),
		cache:     c,
		cacheTTL:  cfg.CacheTTL,
		logger:    logger,
	}
}

// Close releases resources held by the client. The cache is owned by the
// caller and is not closed.
func (c *Client) Close() {
	c.limiter.Stop()
}

// fetch returns the decoded response for path and query. Identical
// concurrent requests share one upstream call, which runs detached from
// any single caller's cancellation and is bounded by the client timeout.
// Each caller still gives up when its own ctx is done. A body is cached
// only after decode accepts it, so a malformed response is never served
// again.
func fetch[T any](ctx context.Context, c *Client, path string, query url.Values, decode func([]byte) (T, error)) (T, error) {
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	u := c.baseURL + path + "?" + query.Encode()
	key := cacheKey(path, query)

	var zero T

	if body, err := c.cache.Get(ctx, key); err == nil {
		if v, err := decode(body); err == nil {
			return v, nil
		}
		// A stale entry that no longer decodes is dropped and refetched.
		_ = c.cache.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrMiss) {
		c.logger.Warn("catalog cache read failed", "error", err)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.doRequest(shared, u)
	})

	var body []byte
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		body = res.Val.([]byte)
	}

	v, err := decode(body)
	if err != nil {
		return zero, err
	}

	if c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn("catalog cache write failed", "error", err)
		}
	}
	return v, nil
}

// cacheKey omits the API key so rotating it keeps the cache warm.
func cacheKey(path string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		if k != "key" {
			q[k] = v
		}
	}
	return "googlebooks:" + path + "?" + q.Encode()
}

// doRequest executes a GET with rate limiting.
func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("google books request",
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
