package query

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes C9's HTTP surface: the four read endpoints plus the
// data-sources introspection and health routes spec.md §4.7 names.
type Handler struct {
	service *Service
}

// NewHandler builds a Handler over service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the handler's endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/timeseries", h.timeseries)
	r.Post("/aggregate", h.aggregate)
	r.Post("/user/activity", h.userActivity)
	r.Post("/shop/performance", h.shopPerformance)
	r.Get("/data/sources", h.dataSources)
	r.Get("/health", h.health)
}

func (h *Handler) timeseries(w http.ResponseWriter, r *http.Request) {
	var req TimeseriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, cached, err := h.service.Timeseries(r.Context(), req)
	if err != nil {
		http.Error(w, "timeseries query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, withCacheHeader(result, cached))
}

func (h *Handler) aggregate(w http.ResponseWriter, r *http.Request) {
	var req AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, cached, err := h.service.Aggregate(r.Context(), req)
	if err != nil {
		http.Error(w, "aggregate query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, withCacheHeader(result, cached))
}

func (h *Handler) userActivity(w http.ResponseWriter, r *http.Request) {
	var req UserActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	result, cached, err := h.service.UserActivity(r.Context(), req)
	if err != nil {
		http.Error(w, "user activity query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, withCacheHeader(result, cached))
}

func (h *Handler) shopPerformance(w http.ResponseWriter, r *http.Request) {
	var req ShopPerformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PeriodDays <= 0 {
		req.PeriodDays = 7
	}

	result, cached, err := h.service.ShopPerformance(r.Context(), req)
	if err != nil {
		http.Error(w, "shop performance query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, withCacheHeader(result, cached))
}

// dataSources reports the routing law /timeseries and /aggregate apply,
// so callers can reason about freshness without guessing at source.
func (h *Handler) dataSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"stream": map[string]string{
			"description": "raw event log, last 7 days at minute/hour granularity or any <=24h window",
		},
		"batch": map[string]string{
			"description": "hourly/daily/monthly projections refreshed by the aggregation jobs",
		},
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// withCacheHeader stamps a "cached" field onto any result struct by
// round-tripping it through a generic map, avoiding one cached/non-cached
// type per endpoint.
func withCacheHeader(result any, cached bool) map[string]any {
	raw, _ := json.Marshal(result)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	out["cached"] = cached
	return out
}
