// Package domain defines the core business entities for netassist.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded unit of document text plus flat metadata
//   - CollectionInfo: A named partition of the vector store
//   - IngestionRecord: An entry in the idempotency ledger
//   - QueryAnalysis: Vendors, products and intent extracted from a query
//   - ResultSet: Ranked hits from a collection or from web search
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
