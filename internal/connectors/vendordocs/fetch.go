package vendordocs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/netassist/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the default number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// maxBodySize caps downloaded documents.
	maxBodySize = 64 << 20
)

// cacheMode controls how a request uses the page cache.
type cacheMode int

const (
	// cacheBypass neither reads nor writes the cache.
	cacheBypass cacheMode = iota
	// cacheUse serves cached pages and stores new ones.
	cacheUse
	// cacheRefresh skips the cached copy and replaces it.
	cacheRefresh
)

// page is a downloaded response body.
type page struct {
	// URL is the final URL after redirects.
	URL          string
	ContentType  string
	LastModified string
	Body         []byte
}

// fetcher downloads pages with pacing, retries and an optional cache.
type fetcher struct {
	client     *http.Client
	limiter    *RateLimiter
	cache      *lru.Cache[string, *page]
	userAgent  string
	maxRetries int
	retryDelay time.Duration
}

// get downloads rawURL, consulting the cache according to mode.
func (f *fetcher) get(ctx context.Context, rawURL string, mode cacheMode) (*page, error) {
	if mode == cacheUse && f.cache != nil {
		if p, ok := f.cache.Get(rawURL); ok {
			logger.Debug("vendordocs: cache hit %s", rawURL)
			return p, nil
		}
	}

	var result *page
	op := func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		p, err := f.do(ctx, rawURL)
		if err != nil {
			return err
		}
		result = p
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.retryDelay
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(f.maxRetries, 0))), ctx)

	notify := func(err error, wait time.Duration) {
		logger.Debug("vendordocs: retrying %s in %s: %v", rawURL, wait, err)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	if mode != cacheBypass && f.cache != nil {
		f.cache.Add(rawURL, result)
	}
	return result, nil
}

// do performs a single request. Client errors other than rate limiting
// are permanent.
func (f *fetcher) do(ctx context.Context, rawURL string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	logger.Debug("vendordocs: GET %s", rawURL)
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()

	if err := f.limiter.CheckResponse(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), URL: rawURL}
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, backoff.Permanent(httpErr)
		}
		return nil, httpErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &page{
		URL:          final,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		Body:         body,
	}, nil
}
