// Package models holds the domain types shared across the enrichment
// pipeline, the message generator, and the query service.
package models

import "time"

// GPSEvent is a raw location ping produced by an agent. Immutable once
// received — the pipeline only ever reads from it.
type GPSEvent struct {
	UserID     uint64  `json:"user_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Timestamp  string  `json:"timestamp"` // ISO-8601 UTC
	Age        *uint8  `json:"age,omitempty"`
	Profession string  `json:"profession,omitempty"`
	Interests  string  `json:"interests,omitempty"`
	// Offset carries the source partition offset when known, used as
	// EnrichedEvent.EventID. Zero means "not available".
	Offset uint64 `json:"-"`
}

// POI is a point of interest maintained by the out-of-scope scraping ETL.
type POI struct {
	ShopID   int64
	ShopName string
	Category string
	Lat      float64
	Lon      float64
}

// NearestPOI is the result of a spatial nearest-neighbour query: the POI
// plus the geodesic distance in metres from the query point.
type NearestPOI struct {
	ShopID   int64
	ShopName string
	Category string
	Distance float64
}

// UserProfile is an immutable, externally-seeded user attribute record.
type UserProfile struct {
	UserID     uint64
	Age        uint8
	Profession string
	Interests  string
}

// EnrichedEvent is the append-only record written to the event log.
type EnrichedEvent struct {
	EventID   uint64
	EventTime time.Time // UTC, naive (no offset), seconds precision
	UserID    uint64
	ShopID    int64
	Latitude  float64
	Longitude float64
	PoiRange  float64
	PoiName   string
	PoiInfo   string
}

// GenerateUserInput is the user half of a /generate request.
type GenerateUserInput struct {
	Age        uint8  `json:"age"`
	Profession string `json:"profession"`
	Interests  string `json:"interests"`
}

// GeneratePOIInput is the POI half of a /generate request.
type GeneratePOIInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	User GenerateUserInput `json:"user"`
	POI  GeneratePOIInput  `json:"poi"`
}

// GenerateResponse is the body returned by POST /generate.
type GenerateResponse struct {
	Message string `json:"message"`
	Cached  bool   `json:"cached"`
}

// MonthlyShopSummary is an upsert-by-latest projection row.
type MonthlyShopSummary struct {
	Month          time.Time
	ShopID         int64
	ShopName       string
	TotalVisits    uint64
	UniqueVisitors uint64
	AvgDistance    float64
	CalculatedAt   time.Time
}

// ShopPerformanceMetrics is an upsert-by-latest projection row.
type ShopPerformanceMetrics struct {
	ShopID           int64
	ShopName         string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	TotalImpressions uint64
	ConversionRate   float64
	PeakHour         int
	AvgDwellTime     float64
	UpdatedAt        time.Time
}

// UserJourneySummary is an append-only projection row.
type UserJourneySummary struct {
	UserID          uint64
	JourneyDate     time.Time
	ShopsVisited    []string
	TotalDistance   float64
	JourneyDuration time.Duration
	CreatedAt       time.Time
}

// ShopVisitsHourly backs the C9 "hour" batch granularity.
type ShopVisitsHourly struct {
	Hour           time.Time
	ShopID         int64
	Visits         uint64
	UniqueVisitors uint64
	AvgDistance    float64
}

// UserActivityDaily backs the C9 "day" batch granularity.
type UserActivityDaily struct {
	UserID        uint64
	Day           time.Time
	TotalEvents   uint64
	UniqueShops   uint64
	TotalDistance float64
}

// TimeseriesPoint is one bucket of a C9 /timeseries response; the
// source it was served from is carried once on the enclosing result.
type TimeseriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// UserRealtimeActivity is the last-24h block of a /user/activity
// response, read straight from the event log.
type UserRealtimeActivity struct {
	LastLat          *float64 `json:"last_lat,omitempty"`
	LastLon          *float64 `json:"last_lon,omitempty"`
	RecentShops      []string `json:"recent_shops"`
	Events           uint64   `json:"events"`
	MessagesReceived uint64   `json:"messages_received"`
}

// FavoriteShop is one row of the /user/activity favourite-shops list.
type FavoriteShop struct {
	Name   string `json:"name"`
	Visits uint64 `json:"visits"`
}

// ShopTrend compares a shop's visit count this week against last week.
type ShopTrend struct {
	ShopID             int64   `json:"shop_id"`
	Direction          string  `json:"trend_direction"`
	PercentChange      float64 `json:"percent_change"`
	ForecastNextPeriod *int64  `json:"forecast_next_period,omitempty"`
}

// ShopAggregateRow is one shop_id-grouped row of a C9 /aggregate
// stream-path response.
type ShopAggregateRow struct {
	ShopID int64   `json:"shop_id"`
	Value  float64 `json:"value"`
	Count  uint64  `json:"count"`
}
