package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for netassist resources.
	uriScheme = "netassist://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "Vector store collections with document counts",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{name}",
		Name:        "collection",
		Description: "Statistics for one collection",
		MIMEType:    "application/json",
	}, s.handleCollectionResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Documentation listings checked for updates",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)
}

// handleCollectionsResource returns statistics for every collection.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Collections.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("collection stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

// handleCollectionResource returns statistics for one collection.
func (s *Server) handleCollectionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractCollectionName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	physical := s.ports.Collections.ResolveCollection(name)

	stats, err := s.ports.Collections.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("collection stats: %w", err)
	}
	for _, st := range stats {
		if st.Name == name || st.Name == physical {
			return jsonResource(req.Params.URI, st)
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// handleSourcesResource returns the watched documentation sources.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type sourceInfo struct {
		Key      string `json:"key"`
		URL      string `json:"url"`
		Vendor   string `json:"vendor"`
		DocType  string `json:"doc_type"`
		Interval string `json:"interval,omitempty"`
	}

	infos := []sourceInfo{}
	if s.ports.Updates != nil {
		for _, src := range s.ports.Updates.Sources() {
			info := sourceInfo{
				Key:     src.Key(),
				URL:     src.URL,
				Vendor:  src.Vendor,
				DocType: string(src.DocType),
			}
			if src.Interval > 0 {
				info.Interval = src.Interval.Std().String()
			}
			infos = append(infos, info)
		}
	}
	return jsonResource(req.Params.URI, infos)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCollectionName extracts the name from netassist://collections/{name}.
func extractCollectionName(uri string) string {
	const prefix = uriScheme + "collections/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
