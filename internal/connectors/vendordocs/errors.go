package vendordocs

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// Scraper-specific errors.
var (
	// ErrUnsupportedDocType indicates a watched source with no listing parser.
	ErrUnsupportedDocType = errors.New("vendordocs: unsupported document type")

	// ErrUnsupportedContent indicates no normaliser handles the response type.
	ErrUnsupportedContent = errors.New("vendordocs: unsupported content type")
)

// RateLimitError reports a 429 or 503 response with its retry time.
type RateLimitError struct {
	URL     string
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("vendordocs: rate limited by %s until %s", e.URL, e.ResetAt.Format(time.RFC3339))
}

// Unwrap lets callers match domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// HTTPError represents an unsuccessful HTTP response.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("vendordocs: HTTP %d %s (URL: %s)", e.StatusCode, e.Status, e.URL)
}

// Unwrap maps 404 and 410 to domain.ErrNotFound.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone {
		return domain.ErrNotFound
	}
	return nil
}

// IsNotFound checks if the error indicates a missing page.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsForbidden checks if the portal refused the request.
func IsForbidden(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusForbidden
	}
	return false
}
