// Package metadata provides a post-processor that normalises chunk metadata.
package metadata

import (
	"context"
	"strings"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// listKeys hold categorical labels stored as comma-joined strings.
var listKeys = []string{domain.MetaFeatures, domain.MetaCategories, domain.MetaDeployment}

// Processor stamps chunk position and normalises vendor and tag fields.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a metadata processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "metadata"
}

// Process annotates chunks in place and returns them.
func (p *Processor) Process(_ context.Context, doc *domain.SourceDocument, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		md := chunks[i].Metadata
		if md == nil {
			md = domain.Metadata{}
			if doc != nil {
				md = doc.Metadata.Clone()
			}
		}
		Normalise(md)
		md[domain.MetaChunkIndex] = i
		md[domain.MetaTotalChunks] = len(chunks)
		chunks[i].Metadata = md
	}
	return chunks, nil
}

// Normalise lower-cases the vendor and flattens list-valued tags.
func Normalise(md domain.Metadata) {
	if v := md.String(domain.MetaVendor); v != "" {
		md[domain.MetaVendor] = strings.ToLower(strings.TrimSpace(v))
	}
	for _, k := range listKeys {
		switch v := md[k].(type) {
		case []string:
			md[k] = domain.JoinTags(v)
		case []any:
			tags := make([]string, 0, len(v))
			for _, t := range v {
				if s, ok := t.(string); ok {
					tags = append(tags, s)
				}
			}
			md[k] = domain.JoinTags(tags)
		}
	}
}
