package query

import (
	"time"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// TimeseriesRequest is the decoded body of POST /timeseries.
type TimeseriesRequest struct {
	Metric      string    `json:"metric"`
	Start       time.Time `json:"start_time"`
	End         time.Time `json:"end_time"`
	Granularity string    `json:"granularity"`
	ShopID      int64     `json:"shop_id,omitempty"`
	UserID      uint64    `json:"user_id,omitempty"`
}

// TimeseriesResult is the cacheable body of a /timeseries response.
type TimeseriesResult struct {
	Points []models.TimeseriesPoint `json:"points"`
	Source string                   `json:"source"`
}

// AggregateRequest is the decoded body of POST /aggregate.
type AggregateRequest struct {
	Metric     string `json:"metric"`
	Dimensions []string `json:"dimensions"`
}

// AggregateRow is one line of an /aggregate response.
type AggregateRow struct {
	Dimensions map[string]any `json:"dimensions"`
	Value      float64        `json:"value"`
	Count      uint64         `json:"count"`
}

// AggregateResult is the cacheable body of an /aggregate response.
type AggregateResult struct {
	Rows   []AggregateRow `json:"rows"`
	Source string         `json:"source"`
}

// UserActivityRequest is the decoded body of POST /user/activity.
type UserActivityRequest struct {
	UserID uint64     `json:"user_id"`
	Start  *time.Time `json:"start_date,omitempty"`
	End    *time.Time `json:"end_date,omitempty"`
}

// UserActivityResult is the cacheable body of a /user/activity response.
type UserActivityResult struct {
	Realtime           models.UserRealtimeActivity `json:"realtime"`
	TotalDaysActive    uint64                      `json:"total_days_active"`
	TotalShopsVisited  uint64                      `json:"total_shops_visited"`
	TotalDistanceKm    float64                     `json:"total_distance_km"`
	FavoriteShops      []models.FavoriteShop        `json:"favorite_shops"`
}

// ShopPerformanceRequest is the decoded body of POST /shop/performance.
type ShopPerformanceRequest struct {
	ShopIDs    []int64 `json:"shop_ids"`
	PeriodDays int     `json:"period_days"`
}

// ShopPerformanceRow bundles one shop's latest projection row with its
// week-over-week trend.
type ShopPerformanceRow struct {
	Metrics models.ShopPerformanceMetrics `json:"metrics"`
	Trend   models.ShopTrend              `json:"trend"`
}

// ShopPerformanceResult is the cacheable body of a /shop/performance response.
type ShopPerformanceResult struct {
	Shops []ShopPerformanceRow `json:"shops"`
}
