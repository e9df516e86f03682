package driving

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// QueryAnalyzer turns free text into a QueryAnalysis.
// The regex classifier is one implementation; a learned classifier can
// replace it without touching the assistant.
type QueryAnalyzer interface {
	Analyze(query string) domain.QueryAnalysis
}

// Assistant answers integration questions.
type Assistant interface {
	// Ask runs analysis, retrieval, optional web search and generation.
	// It never returns an error: failures become the apology message with
	// Degraded set.
	Ask(ctx context.Context, req domain.AskRequest) domain.Answer

	// Analyze exposes the query analyzer.
	Analyze(query string) domain.QueryAnalysis
}

// TopologyGenerator renders a Mermaid diagram for an answer.
type TopologyGenerator interface {
	// Generate returns Mermaid source. It never fails; a fallback diagram is
	// returned when generation is not possible.
	Generate(ctx context.Context, answer string, analysis domain.QueryAnalysis) string
}
