// Package registry provides clients for external bibliographic registries
// (Crossref and arXiv). Raw registry payloads are normalized into the
// common metadata.External shape at this boundary and never escape it.
package registry

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// CrossrefBaseURL is the Crossref works API base URL.
	CrossrefBaseURL = "https://api.crossref.org"

	// ArxivBaseURL is the arXiv export API base URL.
	ArxivBaseURL = "http://export.arxiv.org"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 8 * time.Second

	// DefaultRetries is the attempt budget per request.
	DefaultRetries = 3

	// DefaultBackoff is the initial retry delay, doubled each attempt.
	DefaultBackoff = 600 * time.Millisecond

	// DefaultJitter is the maximum random delay added to each backoff.
	DefaultJitter = 250 * time.Millisecond

	// DefaultRateLimit is the polite request rate per registry.
	DefaultRateLimit = 5.0

	// MinTitleQueryLen is the shortest title worth searching for.
	MinTitleQueryLen = 7
)

// Config carries the fetcher settings. It is passed in explicitly at
// construction; there is no ambient global configuration.
type Config struct {
	CrossrefBaseURL string
	ArxivBaseURL    string
	Timeout         time.Duration
	Retries         int
	Backoff         time.Duration
	Jitter          time.Duration
	RateLimit       float64
	MailTo          string // Contact address embedded in the User-Agent
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		CrossrefBaseURL: CrossrefBaseURL,
		ArxivBaseURL:    ArxivBaseURL,
		Timeout:         DefaultTimeout,
		Retries:         DefaultRetries,
		Backoff:         DefaultBackoff,
		Jitter:          DefaultJitter,
		RateLimit:       DefaultRateLimit,
	}
}

// Client is a rate-limited, retrying HTTP client for registry lookups.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        Config
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a registry client from the given configuration.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	def := DefaultConfig()
	if cfg.CrossrefBaseURL == "" {
		cfg.CrossrefBaseURL = def.CrossrefBaseURL
	}
	if cfg.ArxivBaseURL == "" {
		cfg.ArxivBaseURL = def.ArxivBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = def.Retries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = def.Backoff
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = def.Jitter
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}

	ua := "papershelf/1.0"
	if cfg.MailTo != "" {
		ua = fmt.Sprintf("papershelf/1.0 (mailto:%s)", cfg.MailTo)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cfg:        cfg,
		userAgent:  ua,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// retryableStatus reports whether an HTTP status warrants another attempt.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// get performs a GET with retry and exponential backoff. Timeouts,
// connection errors, and 429/5xx statuses are retried up to the attempt
// budget; any other non-200 status is terminal.
func (c *Client) get(ctx context.Context, rawURL string, query url.Values, accept string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.Retries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.Backoff << (attempt - 1)
			if c.cfg.Jitter > 0 {
				delay += time.Duration(rand.Int63n(int64(c.cfg.Jitter)))
			}
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", accept)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrNetworkError, err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
				continue
			}
			return body, nil
		}

		resp.Body.Close()

		if retryableStatus(resp.StatusCode) {
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("%w: %s", ErrRateLimited, u.String())
			} else {
				lastErr = &APIError{StatusCode: resp.StatusCode, URL: u.String()}
			}
			continue
		}

		// Terminal status: no more retries.
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, &APIError{StatusCode: resp.StatusCode, URL: u.String()}
	}

	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// sleepCtx sleeps for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
