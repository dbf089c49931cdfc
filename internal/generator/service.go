// Package generator implements C5: the message-generation service —
// fingerprinting, cache-through, LLM dispatch, and category fallback,
// ported from services/message_generator's cache_utils.py and
// generator_service.py.
package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/Nic0Byte/NearYou-v1/internal/cache"
	"github.com/Nic0Byte/NearYou-v1/internal/generator/llm"
	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// Service orchestrates C5's generate-or-serve-from-cache algorithm.
type Service struct {
	cache    cache.Cache
	provider llm.Provider
	stats    *Stats
	baseTTL  time.Duration
	logger   *slog.Logger
}

// NewService wires a Service from its dependencies.
func NewService(c cache.Cache, provider llm.Provider, stats *Stats, baseTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{cache: c, provider: provider, stats: stats, baseTTL: baseTTL, logger: logger}
}

// Generate implements spec.md §4.3's generation algorithm: fingerprint,
// cache lookup, LLM call on miss, adaptive-TTL cache-through on
// success, uncached category fallback on LLM failure.
func (s *Service) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
	key := Fingerprint(req.User, req.POI)

	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		s.stats.RecordHit()
		return models.GenerateResponse{Message: cached, Cached: true}, nil
	}

	prompt := renderPrompt(req.User, req.POI)
	message, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("llm generation failed, using fallback", "error", err, "poi", req.POI.Name)
		s.stats.RecordMiss()
		return models.GenerateResponse{
			Message: fallbackMessage(req.POI.Name, req.POI.Category),
			Cached:  false,
		}, nil
	}

	ttl := s.baseTTL
	if IsPopularCategory(req.POI.Category) {
		ttl *= 2
	}
	if err := s.cache.Set(ctx, key, message, ttl); err != nil {
		s.logger.Warn("failed to cache generated message", "error", err)
	}

	s.stats.RecordMiss()
	return models.GenerateResponse{Message: message, Cached: false}, nil
}
