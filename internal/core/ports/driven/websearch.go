package driven

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// WebSearcher queries the public web.
// Implementations never fail: when the backend is unreachable they return
// a deterministic offline fallback set.
type WebSearcher interface {
	// Search returns at most the configured number of results, best first.
	Search(ctx context.Context, query string) []domain.WebResult
}
