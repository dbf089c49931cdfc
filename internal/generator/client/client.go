// Package client is the thin HTTP client C6/C7 use to call C5's
// /generate endpoint. No HTTP client library appears anywhere in the
// example corpus, so this is deliberately a plain net/http wrapper
// (see DESIGN.md).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// Generator calls the message-generation service.
type Generator interface {
	Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error)
}

// HTTPGenerator is the production Generator implementation.
type HTTPGenerator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGenerator builds a client against baseURL (e.g.
// MESSAGE_GENERATOR_URL).
func NewHTTPGenerator(baseURL string) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.GenerateResponse{}, fmt.Errorf("client: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return models.GenerateResponse{}, fmt.Errorf("client: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return models.GenerateResponse{}, fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.GenerateResponse{}, fmt.Errorf("client: generator returned status %d", resp.StatusCode)
	}

	var out models.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.GenerateResponse{}, fmt.Errorf("client: failed to decode response: %w", err)
	}
	return out, nil
}
