// Package llm wraps the language-model backend used to describe indicators.
// The backend is an upstream collaborator: the analysis engine only ever
// consumes its text output, and a deterministic fallback keeps the pipeline
// working when no backend is configured or the backend fails.
package llm

import "context"

// Provider generates analysis text for a prompt.
type Provider interface {
	// Name returns the provider name for logging and metrics.
	Name() string
	// Generate produces analysis text for the prompt. Implementations
	// honor ctx cancellation and return wrapped errors on failure.
	Generate(ctx context.Context, prompt string) (string, error)
}
