// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - VectorStore: Collections of embedded chunks (SQLite)
//   - IngestionLedger: Idempotency ledger (JSON file)
//   - EmbeddingService: Generates vector embeddings
//   - DocScraper: Lists and fetches vendor documentation
//   - Normaliser: Extracts text from fetched HTML or PDF
//   - PostProcessorPipeline: Chunks extracted text
//   - PromptStore: Prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, answers degrade to the apology message.
//   - WebSearcher: Without it, thin local context is answered as is.
//   - SchedulerStore, UpdateStateStore: Needed only by the update checker.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
