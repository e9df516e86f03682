package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSystem is the system message for answer generation.
	// This prompt has no format placeholders.
	PromptSystem = "system"

	// PromptIntegration answers from retrieved documentation.
	// The template expects %s (formatted context) then %s (user query).
	PromptIntegration = "integration"

	// PromptWebAugmented answers when web results were merged into the context.
	// The template expects %s (formatted context) then %s (user query).
	PromptWebAugmented = "web_augmented"

	// PromptTopology asks for a Mermaid network diagram.
	// The template expects %s (intent), %s (vendors), %s (products) then %s (answer).
	PromptTopology = "topology"
)
