// Package eventlog implements C4: the ClickHouse-backed append-only
// event sink and the read paths over its batch projection tables,
// grounded on the original write_to_clickhouse insert and the
// monthly_shop_summary / shop_performance_metrics / user_journey_summary
// projections built by C8.
package eventlog

import (
	"context"
	"time"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// Sink appends enriched events to the event log.
type Sink interface {
	WriteEvent(ctx context.Context, event models.EnrichedEvent) error
}

// Projections is the read side over the batch-aggregation tables C8
// populates, consumed by the query service's batch routing path.
type Projections interface {
	MonthlyShopSummary(ctx context.Context, shopID int64, month string) (*models.MonthlyShopSummary, error)
	ShopPerformanceMetrics(ctx context.Context, shopID int64) (*models.ShopPerformanceMetrics, error)
	UserJourneySummary(ctx context.Context, userID uint64, day string) (*models.UserJourneySummary, error)
	ShopVisitsHourly(ctx context.Context, shopID int64, from, to string) ([]models.ShopVisitsHourly, error)
	UserActivityDaily(ctx context.Context, userID uint64, from, to string) ([]models.UserActivityDaily, error)

	// TopShopSummaries and TopShopPerformance back the /aggregate
	// batch path's two named metrics (monthly_summary,
	// shop_performance), ranked the same way as the original's
	// query_batch_aggregate.
	TopShopSummaries(ctx context.Context, since time.Time, limit int) ([]models.MonthlyShopSummary, error)
	TopShopPerformance(ctx context.Context, since time.Time) ([]models.ShopPerformanceMetrics, error)
}

// TimeseriesStreamParams selects one /timeseries stream-path query.
// ShopID/UserID of 0 mean "unfiltered".
type TimeseriesStreamParams struct {
	Metric      string
	Start       time.Time
	End         time.Time
	Granularity string
	ShopID      int64
	UserID      uint64
}

// StreamReader is the read side over the raw append-only event log,
// consumed by the query service's stream routing path and by the
// always-raw real-time/trend blocks.
type StreamReader interface {
	TimeseriesStream(ctx context.Context, p TimeseriesStreamParams) ([]models.TimeseriesPoint, error)
	UserRealtimeActivity(ctx context.Context, userID uint64, hours int) (models.UserRealtimeActivity, error)
	FavoriteShops(ctx context.Context, userID uint64, limit int) ([]models.FavoriteShop, error)
	ShopVisitCounts(ctx context.Context, shopIDs []int64, since, until time.Time) (map[int64]uint64, error)

	// StreamAggregateByShop backs /aggregate's stream fallback path
	// for any metric not in the three named batch-only metrics,
	// narrowed to grouping by shop_id (the one dimension meaningful
	// across this domain's tables, versus the original's free-form
	// dimension list).
	StreamAggregateByShop(ctx context.Context, metric string, since time.Time) ([]models.ShopAggregateRow, error)
}
