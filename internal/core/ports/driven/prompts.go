package driven

// PromptStore resolves the prompt templates used by the router and the
// composer. A template the user has not overridden falls back to the
// built-in default.
type PromptStore interface {
	// Load returns the template called name.
	Load(name string) (string, error)

	// Reload drops cached templates so the next Load reads from disk.
	Reload()
}

// Template names.
const (
	// PromptClassify asks for a route label. The template expects %s
	// placeholders for the route list, the candidate files and the question.
	PromptClassify = "classify"

	// PromptAnswer asks for an answer. The template expects %s placeholders
	// for the context blocks and the question.
	PromptAnswer = "answer"
)

// PromptStoreAware is implemented by adapters whose templates can be
// replaced after construction. Without a store they use the built-ins.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
