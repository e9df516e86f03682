package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
	"github.com/custodia-labs/netassist/internal/logger"
	"github.com/custodia-labs/netassist/internal/metrics"
)

// Ensure AssistantService implements the interface.
var _ driving.Assistant = (*AssistantService)(nil)

// webDocType labels merged web results.
const webDocType = "Web Search Result"

// thinkBlock matches reasoning traces some models emit before the answer.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// AssistantConfig holds retrieval and generation tunables.
type AssistantConfig struct {
	// ResultsPerQuery is n_results for each collection query.
	ResultsPerQuery int

	// SufficiencyThreshold is the minimum number of distinct local documents
	// before web search is skipped.
	SufficiencyThreshold int

	// WebSearchEnabled gates escalation to the web searcher.
	WebSearchEnabled bool

	MaxTokens   int
	Temperature float64
}

// DefaultAssistantConfig returns the built-in tunables.
func DefaultAssistantConfig() AssistantConfig {
	return AssistantConfig{
		ResultsPerQuery:      3,
		SufficiencyThreshold: 2,
		WebSearchEnabled:     true,
		MaxTokens:            4000,
		Temperature:          0.5,
	}
}

// AssistantService answers integration questions with retrieval-augmented
// generation.
type AssistantService struct {
	cfg         AssistantConfig
	analyzer    driving.QueryAnalyzer
	collections driving.CollectionService
	llm         driven.LLMService
	prompts     driven.PromptStore
	web         driven.WebSearcher
	topology    driving.TopologyGenerator
	metrics     *metrics.Metrics
}

// NewAssistantService creates an assistant. web, topology and mt are optional.
func NewAssistantService(
	cfg AssistantConfig,
	analyzer driving.QueryAnalyzer,
	collections driving.CollectionService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	web driven.WebSearcher,
	topology driving.TopologyGenerator,
	mt *metrics.Metrics,
) *AssistantService {
	if cfg.ResultsPerQuery <= 0 {
		cfg.ResultsPerQuery = 3
	}
	if cfg.SufficiencyThreshold <= 0 {
		cfg.SufficiencyThreshold = 2
	}
	return &AssistantService{
		cfg:         cfg,
		analyzer:    analyzer,
		collections: collections,
		llm:         llm,
		prompts:     prompts,
		web:         web,
		topology:    topology,
		metrics:     mt,
	}
}

// Analyze exposes the query analyzer.
func (a *AssistantService) Analyze(query string) domain.QueryAnalysis {
	return a.analyzer.Analyze(query)
}

// plannedQuery is one collection query built from the analysis.
type plannedQuery struct {
	key   string
	text  string
	where map[string]string
}

// Ask answers a question. Any failure, including a panic, becomes the
// apology message with the analysis still attached.
func (a *AssistantService) Ask(ctx context.Context, req domain.AskRequest) (answer domain.Answer) {
	start := time.Now()
	logger.Section("Ask")
	logger.Debug("Query: %q", req.Query)

	analysis := domain.QueryAnalysis{Intent: domain.IntentGeneral, OriginalQuery: req.Query}
	var docs int
	defer func() {
		if r := recover(); r != nil {
			logger.Error("assistant: panic while answering: %v", r)
			answer = degraded(analysis)
		}
		a.metrics.RecordQuery(string(analysis.Intent), time.Since(start), docs, answer.UsedWebSearch, answer.Degraded)
	}()

	analysis = a.analyzer.Analyze(req.Query)
	answer.Analysis = &analysis

	sets := a.retrieve(ctx, analysis)
	docs = domain.DistinctDocuments(sets)
	logger.Debug("assistant: %d distinct local documents", docs)

	if docs < a.cfg.SufficiencyThreshold && a.cfg.WebSearchEnabled && a.web != nil {
		logger.Info("assistant: local context insufficient (%d < %d), searching the web", docs, a.cfg.SufficiencyThreshold)
		results := a.web.Search(ctx, WebQuery(analysis))
		if len(results) > 0 {
			sets = append(sets, WebResultSet(results))
		}
		answer.UsedWebSearch = true
	}

	response, err := a.generate(ctx, req.Query, sets, answer.UsedWebSearch)
	if err != nil {
		logger.Error("assistant: generate response: %v", err)
		used := answer.UsedWebSearch
		answer = degraded(analysis)
		answer.UsedWebSearch = used
		return answer
	}
	answer.Response = response

	if req.IncludeTopology && a.topology != nil {
		answer.Topology = a.topology.Generate(ctx, response, analysis)
	}
	return answer
}

func degraded(analysis domain.QueryAnalysis) domain.Answer {
	return domain.Answer{
		Response: domain.ApologyMessage,
		Analysis: &analysis,
		Degraded: true,
	}
}

// planQueries builds the collection queries for an analysis.
func (a *AssistantService) planQueries(analysis domain.QueryAnalysis) []plannedQuery {
	var plan []plannedQuery
	text := augmentQuery(analysis)
	for _, vendor := range analysis.Vendors() {
		plan = append(plan, plannedQuery{
			key:   vendor,
			text:  text,
			where: map[string]string{domain.MetaVendor: strings.ToLower(vendor)},
		})
	}
	if analysis.Intent == domain.IntentTroubleshooting {
		plan = append(plan, plannedQuery{key: domain.CollectionErrorCodes, text: analysis.OriginalQuery})
	}
	return plan
}

// retrieve runs the planned queries concurrently. With no plan every
// managed collection is queried with the raw text.
func (a *AssistantService) retrieve(ctx context.Context, analysis domain.QueryAnalysis) []domain.ResultSet {
	plan := a.planQueries(analysis)
	if len(plan) == 0 {
		return a.collections.QueryAll(ctx, analysis.OriginalQuery, a.cfg.ResultsPerQuery)
	}

	sets := make([]domain.ResultSet, len(plan))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range plan {
		g.Go(func() error {
			sets[i] = a.collections.Query(gctx, q.key, q.text, a.cfg.ResultsPerQuery, q.where)
			return nil
		})
	}
	_ = g.Wait()
	return sets
}

// augmentQuery rewrites the query text for the intent.
func augmentQuery(an domain.QueryAnalysis) string {
	var parts []string
	switch an.Intent {
	case domain.IntentIntegration:
		if an.SourceVendor != "" && an.TargetVendor != "" {
			parts = []string{"integrate", an.SourceVendor, "with", an.TargetVendor}
			parts = append(parts, an.Products()...)
		}
	case domain.IntentConfiguration:
		vendor := an.TargetVendor
		product := an.TargetProduct
		if vendor == "" {
			vendor, product = an.SourceVendor, an.SourceProduct
		}
		if vendor != "" {
			parts = []string{"configure", vendor, product}
		}
	case domain.IntentMigration:
		if an.SourceVendor != "" && an.TargetVendor != "" {
			parts = []string{"migrate from", an.SourceVendor, "to", an.TargetVendor}
			parts = append(parts, an.Products()...)
		}
	case domain.IntentProductInfo:
		parts = an.Products()
	}

	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if text == "" {
		return an.OriginalQuery
	}
	return text
}

// WebQuery builds the web search text, prefixing the target vendor and
// product when both are known.
func WebQuery(an domain.QueryAnalysis) string {
	if an.TargetVendor != "" && an.TargetProduct != "" {
		return fmt.Sprintf("%s %s %s", an.TargetVendor, an.TargetProduct, an.OriginalQuery)
	}
	return an.OriginalQuery
}

// WebResultSet shapes web results like vector results with a fixed distance.
func WebResultSet(results []domain.WebResult) domain.ResultSet {
	rs := domain.ResultSet{
		Collection: domain.CollectionWebSearch,
		Source:     domain.ResultSourceWeb,
		Hits:       make([]domain.Hit, 0, len(results)),
	}
	for i, r := range results {
		rs.Hits = append(rs.Hits, domain.Hit{
			ID:       fmt.Sprintf("web_%d", i),
			Document: fmt.Sprintf("Title: %s\nSnippet: %s\nSource: %s", r.Title, r.Snippet, r.Link),
			Metadata: domain.Metadata{
				domain.MetaTitle:   r.Title,
				domain.MetaSource:  r.Link,
				domain.MetaDocType: webDocType,
			},
			Distance: domain.WebDistance,
		})
	}
	return rs
}

// FormatContext renders every result set for the prompt.
func FormatContext(sets []domain.ResultSet) string {
	var b strings.Builder
	for _, rs := range sets {
		if rs.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "=== %s ===\n", rs.Collection)
		for i, h := range rs.Hits {
			title := h.Metadata.String(domain.MetaTitle)
			if title == "" {
				title = h.Metadata.String(domain.MetaDocType)
			}
			fmt.Fprintf(&b, "[%d] %s", i+1, title)
			if v := h.Metadata.String(domain.MetaVendor); v != "" && rs.Source == domain.ResultSourceVector {
				fmt.Fprintf(&b, " (vendor: %s", v)
				if r := h.Metadata.String(domain.MetaRelease); r != "" && r != domain.UnknownValue {
					fmt.Fprintf(&b, ", release: %s", r)
				}
				b.WriteString(")")
			}
			b.WriteString("\n")
			b.WriteString(strings.TrimSpace(h.Document))
			b.WriteString("\n\n")
		}
	}
	if b.Len() == 0 {
		return "No relevant documentation was found."
	}
	return strings.TrimSpace(b.String())
}

func (a *AssistantService) generate(ctx context.Context, query string, sets []domain.ResultSet, usedWeb bool) (string, error) {
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if a.prompts == nil {
		return "", errors.New("no prompt store configured")
	}

	system, err := a.prompts.Load(driven.PromptSystem)
	if err != nil {
		return "", fmt.Errorf("load system prompt: %w", err)
	}
	name := driven.PromptIntegration
	if usedWeb && hasWebHits(sets) {
		name = driven.PromptWebAugmented
	}
	tmpl, err := a.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load %s prompt: %w", name, err)
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf(tmpl, FormatContext(sets), query)},
	}
	out, err := a.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	out = strings.TrimSpace(thinkBlock.ReplaceAllString(out, ""))
	if out == "" {
		return "", errors.New("empty response from model")
	}
	return out, nil
}

func hasWebHits(sets []domain.ResultSet) bool {
	for _, rs := range sets {
		if rs.Source == domain.ResultSourceWeb && rs.Len() > 0 {
			return true
		}
	}
	return false
}
