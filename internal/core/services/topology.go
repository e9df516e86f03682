package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
	"github.com/custodia-labs/netassist/internal/logger"
)

// Ensure TopologyService implements the interface.
var _ driving.TopologyGenerator = (*TopologyService)(nil)

const mermaidFence = "```mermaid"

// TopologyService asks the LLM for a Mermaid diagram of an answer.
type TopologyService struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewTopologyService creates a topology generator. llm may be nil, in which
// case only fallback diagrams are produced.
func NewTopologyService(llm driven.LLMService, prompts driven.PromptStore) *TopologyService {
	return &TopologyService{llm: llm, prompts: prompts}
}

// Generate returns Mermaid source for the answer.
func (t *TopologyService) Generate(ctx context.Context, answer string, analysis domain.QueryAnalysis) string {
	fallback := FallbackDiagram(analysis.SourceVendor, analysis.TargetVendor, string(analysis.Intent))
	if t.llm == nil || t.prompts == nil {
		return fallback
	}

	tmpl, err := t.prompts.Load(driven.PromptTopology)
	if err != nil {
		logger.Warn("topology: load prompt: %v", err)
		return fallback
	}
	prompt := fmt.Sprintf(tmpl,
		analysis.Intent,
		strings.Join(analysis.Vendors(), ", "),
		strings.Join(analysis.Products(), ", "),
		answer,
	)

	out, err := t.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 1000, Temperature: 0.2})
	if err != nil {
		logger.Warn("topology: generate: %v", err)
		return fallback
	}

	diagram := ExtractMermaid(out)
	if diagram == "" {
		logger.Debug("topology: no mermaid block in response, using fallback")
		return fallback
	}
	return diagram
}

// ExtractMermaid returns the contents of a ```mermaid block, or the whole
// text when it is a bare "graph TD" diagram. It returns "" otherwise.
func ExtractMermaid(text string) string {
	if start := strings.Index(text, mermaidFence); start >= 0 {
		body := text[start+len(mermaidFence):]
		if end := strings.Index(body, "```"); end >= 0 {
			return strings.TrimSpace(body[:end])
		}
	}
	if strings.Contains(text, "graph TD") {
		return strings.TrimSpace(text)
	}
	return ""
}

// FallbackDiagram builds a small diagram from the vendors and intent.
func FallbackDiagram(source, target, intent string) string {
	s := sanitizeNode(source, "Source")
	t := sanitizeNode(target, "Target")

	switch intent {
	case string(domain.IntentMigration):
		return "graph TD\n" +
			"    subgraph Before_Migration\n" +
			"        A[" + s + " Switch] --> B[User Devices]\n" +
			"        A --> E[Router]\n" +
			"    end\n" +
			"    subgraph After_Migration\n" +
			"        C[" + t + " Switch] --> B\n" +
			"        C --> E\n" +
			"    end"
	case string(domain.IntentIntegration):
		return "graph TD\n" +
			"    A[" + s + " Switch] --> B[" + t + " Switch]\n" +
			"    A --> C[User Devices]\n" +
			"    B --> D[Servers]"
	case string(domain.IntentConfiguration):
		return "graph TD\n" +
			"    A[" + s + " Switch] --> B[" + t + " Switch]\n" +
			"    A --> C[VLAN 10]\n" +
			"    B --> C"
	case "interoperability":
		return "graph TD\n" +
			"    A[" + s + " Switch] --> B[" + t + " Switch]\n" +
			"    C[Standard Protocols] --> A\n" +
			"    C --> B"
	default:
		return "graph TD\n    A[" + s + " Device] --> B[" + t + " Device]"
	}
}

// sanitizeNode keeps letters, digits and underscores; spaces become underscores.
func sanitizeNode(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	var b strings.Builder
	for _, r := range strings.ReplaceAll(name, " ", "_") {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
