package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptGroundedAnswer is the instruction block placed before the
	// conversation, context and question. It has no format placeholders.
	PromptGroundedAnswer = "grounded_answer"
)

// PromptStoreAware is implemented by services whose prompts can be customised.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store. Without one the built-in prompt is used.
	SetPromptStore(store PromptStore)
}
