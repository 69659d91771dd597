package generator

import "context"

// LLMClient abstracts the model backend so the pipeline can be exercised
// with a mock.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMSettings carries the backend configuration handed to the concrete
// implementations.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}
