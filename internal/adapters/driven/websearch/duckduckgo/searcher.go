// Package duckduckgo provides a WebSearcher backed by the DuckDuckGo HTML
// endpoint. Calls run behind a circuit breaker; when the backend fails or
// the breaker is open a fixed set of vendor documentation portals is
// returned instead.
package duckduckgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/logger"
)

// Ensure Searcher implements the interface.
var _ driven.WebSearcher = (*Searcher)(nil)

const (
	// DefaultEndpoint is the JavaScript-free results page.
	DefaultEndpoint = "https://html.duckduckgo.com/html/"

	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxResults applies when settings leave the cap unset.
	DefaultMaxResults = 5

	maxBodySize = 2 << 20
)

// ErrBlocked indicates DuckDuckGo answered with its anomaly page.
var ErrBlocked = errors.New("duckduckgo: request blocked")

// Searcher queries DuckDuckGo.
type Searcher struct {
	client     *http.Client
	endpoint   string
	userAgent  string
	maxResults int
	breaker    *gobreaker.CircuitBreaker
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Searcher) {
		s.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Searcher) {
		s.userAgent = ua
	}
}

// WithBreakerSettings replaces the circuit breaker configuration.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(s *Searcher) {
		s.breaker = gobreaker.NewCircuitBreaker(st)
	}
}

// New creates a searcher from the web search settings.
func New(settings domain.WebSearchSettings, opts ...Option) *Searcher {
	timeout := settings.Timeout.Std()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	endpoint := settings.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	maxResults := settings.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	s := &Searcher{
		client:     &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		userAgent:  domain.DefaultUserAgent,
		maxResults: maxResults,
		breaker:    gobreaker.NewCircuitBreaker(BreakerSettings()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BreakerSettings returns the default circuit breaker configuration: trip
// after five requests with at least half failing, probe again after a minute.
func BreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "duckduckgo",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("%s: circuit breaker %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
}

// MaxResults returns the result cap.
func (s *Searcher) MaxResults() int {
	return s.maxResults
}

// Search returns up to MaxResults results. It never fails: errors and an
// open breaker yield the offline fallback set.
func (s *Searcher) Search(ctx context.Context, query string) []domain.WebResult {
	logger.Info("web search: %q", query)

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.search(ctx, query)
	})
	if err != nil {
		logger.Warn("web search failed, using offline results: %v", err)
		return Fallback(query, s.maxResults)
	}

	results := out.([]domain.WebResult)
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	logger.Info("web search: %d results", len(results))
	return results
}

// State reports the circuit breaker state.
func (s *Searcher) State() gobreaker.State {
	return s.breaker.State()
}

func (s *Searcher) search(ctx context.Context, query string) ([]domain.WebResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("kl", "wt-wt")
	params.Set("df", "m")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	// DuckDuckGo answers throttled clients with 202 and a challenge page.
	if resp.StatusCode == http.StatusAccepted {
		return nil, ErrBlocked
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return ParseResults(body)
}
