package generator

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// Handler exposes C5's HTTP surface: POST /generate, GET /health,
// GET /cache/stats.
type Handler struct {
	service  *Service
	provider string
}

// NewHandler builds a Handler reporting providerName at /health.
func NewHandler(service *Service, providerName string) *Handler {
	return &Handler{service: service, provider: providerName}
}

// Routes mounts the handler's endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/generate", h.generate)
	r.Get("/health", h.health)
	r.Get("/cache/stats", h.cacheStats)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Generate(r.Context(), req)
	if err != nil {
		http.Error(w, "generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"provider": h.provider,
	})
}

func (h *Handler) cacheStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.service.stats.Snapshot())
}
