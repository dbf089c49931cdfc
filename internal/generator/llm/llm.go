// Package llm provides the two C5 model providers: the primary
// google.golang.org/genai client (grounded on the teacher's
// generative_ai.AIClient) and a plain-net/http OpenAI-compatible
// fallback client for deployments configured with LLM_PROVIDER=openai.
package llm

import "context"

// Provider generates free text from a fully-rendered prompt at a fixed
// temperature of 0.7, matching spec.md §4.3.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies the active provider for /health reporting.
	Name() string
}
