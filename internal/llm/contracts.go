package llm

import "context"

// CompletionRequest is a provider-neutral chat prompt: one system and one user message.
type CompletionRequest struct {
	System string
	User   string
}

// Completion is the text a provider returned plus what produced it.
type Completion struct {
	Text         string
	Model        string
	FinishReason string
}

// Completer is the interface the extractor depends on. Sampling parameters and the model
// are fixed per client at construction time.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Provider() string
	Model() string
}
