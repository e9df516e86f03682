// Package mcp provides an MCP (Model Context Protocol) server adapter for
// netassist. It lets AI assistants ask integration questions, search the
// vector store directly and inspect collections.
package mcp

import "errors"

var (
	// ErrMissingAssistant is returned when the assistant is not provided.
	ErrMissingAssistant = errors.New("mcp: assistant is required")

	// ErrMissingCollections is returned when the collection service is not provided.
	ErrMissingCollections = errors.New("mcp: collection service is required")

	// ErrWebSearchDisabled is returned by the web_search tool when no searcher is wired.
	ErrWebSearchDisabled = errors.New("mcp: web search is disabled")
)
