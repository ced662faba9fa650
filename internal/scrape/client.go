// Package scrape talks to the content service that turns a web page into
// markdown.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/csheth/promptasm/internal/ingest"
)

const (
	// DefaultEndpoint is the service address used when none is configured.
	DefaultEndpoint    = "http://localhost:5173/api/scrape"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 4 << 10
)

// Options configures a Client.
type Options struct {
	Endpoint      string
	Timeout       time.Duration
	CacheDir      string
	CacheTTL      time.Duration
	DisableCache  bool
	RatePerMinute int
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client fetches pages through the content service.
type Client struct {
	endpoint *url.URL
	http     *http.Client
	cache    *pageCache
	limiter  *rate.Limiter
	logger   *zap.Logger
}

type successBody struct {
	Markdown string `json:"markdown"`
}

type errorBody struct {
	Error string `json:"error"`
}

// New builds a Client. The endpoint must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.Endpoint)
	if raw == "" {
		raw = DefaultEndpoint
	}
	endpoint, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("scrape endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" || endpoint.Host == "" {
		return nil, fmt.Errorf("scrape endpoint %q must be an absolute http(s) URL", raw)
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		endpoint: endpoint,
		http:     client,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		logger:   logger.Named("scrape"),
	}
	if opts.RatePerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), 1)
	}
	if !opts.DisableCache {
		cache, err := newPageCache(opts.CacheDir, opts.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("scrape cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Endpoint returns the configured service address.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Fetch returns the markdown for pageURL. A fresh cached copy is returned
// without contacting the service; a stale one is used only when the service
// cannot be reached. Failures are reported as *ingest.FetchError.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	var cached cachedPage
	var haveCached bool
	if c.cache != nil {
		cached, haveCached = c.cache.Get(pageURL)
		if haveCached && !cached.Stale {
			c.logger.Debug("cache hit", zap.String("url", pageURL))
			return cached.Markdown, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", &ingest.FetchError{URL: pageURL, Err: err}
	}

	start := time.Now()
	markdown, err := c.request(ctx, pageURL)
	if err != nil {
		var fe *ingest.FetchError
		if errors.As(err, &fe) && fe.Status == 0 && haveCached {
			c.logger.Warn("service unreachable, serving stale page",
				zap.String("url", pageURL),
				zap.Time("cachedAt", cached.CachedAt),
				zap.Error(err))
			return cached.Markdown, nil
		}
		c.logger.Info("fetch failed", zap.String("url", pageURL), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", err
	}
	c.logger.Info("fetched page",
		zap.String("url", pageURL),
		zap.Int("bytes", len(markdown)),
		zap.Duration("elapsed", time.Since(start)))

	if c.cache != nil {
		if err := c.cache.Put(pageURL, markdown); err != nil {
			c.logger.Warn("cache write failed", zap.String("url", pageURL), zap.Error(err))
		}
	}
	return markdown, nil
}

func (c *Client) request(ctx context.Context, pageURL string) (string, error) {
	target := *c.endpoint
	query := target.Query()
	query.Set("url", pageURL)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", &ingest.FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ingest.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var payload errorBody
		message := http.StatusText(resp.StatusCode)
		if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			message = payload.Error
		} else if message == "" {
			message = "failed to fetch URL content"
		}
		return "", &ingest.FetchError{URL: pageURL, Status: resp.StatusCode, Message: message}
	}

	var payload successBody
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &ingest.FetchError{
			URL:     pageURL,
			Status:  resp.StatusCode,
			Message: "malformed response from content service",
			Err:     fmt.Errorf("decode response: %w", err),
		}
	}
	return payload.Markdown, nil
}
