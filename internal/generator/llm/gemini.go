package llm

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

var _ Provider = (*GeminiClient)(nil)

// GeminiClient wraps google.golang.org/genai the same way the
// teacher's generative_ai.AIClient does: a single shared client, a
// fixed model name, and an otel span per call.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds a client bound to apiKey and model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }

// Generate submits prompt at temperature=0.7, per spec.md §4.3.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("generator.llm").Start(ctx, "GeminiClient.Generate", trace.WithAttributes(
		attribute.String("model", g.model),
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	temperature := float32(0.7)
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gemini generation failed")
		return "", fmt.Errorf("llm: gemini generation failed: %w", err)
	}

	text := result.Text()
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "generated")
	return text, nil
}
