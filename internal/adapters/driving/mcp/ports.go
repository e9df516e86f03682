package mcp

import (
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
)

// Ports aggregates the services the MCP server exposes.
type Ports struct {
	// Assistant answers questions and analyses queries.
	Assistant driving.Assistant

	// Collections serves raw vector search and statistics.
	Collections driving.CollectionService

	// Web is optional; without it the web_search tool reports an error.
	Web driven.WebSearcher

	// Updates is optional and backs the sources resource.
	Updates driving.UpdateService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	if p.Collections == nil {
		return ErrMissingCollections
	}
	return nil
}
