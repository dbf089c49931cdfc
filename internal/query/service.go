package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/Nic0Byte/NearYou-v1/internal/cache"
	"github.com/Nic0Byte/NearYou-v1/internal/eventlog"
	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// resultTTL is the 300s cache TTL spec.md §4.7 fixes for every C9
// response.
const resultTTL = 300 * time.Second

const favoriteShopsLimit = 5

// Service implements the four C9 read endpoints: cache probe, source
// routing, execute, cache store.
type Service struct {
	Cache       cache.Cache
	Projections eventlog.Projections
	Stream      eventlog.StreamReader
	Logger      *slog.Logger
}

// NewService wires a Service over its collaborators.
func NewService(c cache.Cache, projections eventlog.Projections, stream eventlog.StreamReader, logger *slog.Logger) *Service {
	return &Service{Cache: c, Projections: projections, Stream: stream, Logger: logger}
}

// Timeseries serves POST /timeseries: cache probe, stream/batch
// routing per spec.md §4.7, cache store.
func (s *Service) Timeseries(ctx context.Context, req TimeseriesRequest) (TimeseriesResult, bool, error) {
	key := CacheKey("timeseries", map[string]any{
		"metric": req.Metric, "start": req.Start, "end": req.End,
		"granularity": req.Granularity, "shop_id": req.ShopID, "user_id": req.UserID,
	})

	var cached TimeseriesResult
	if ok, err := cache.GetJSON(ctx, s.Cache, key, &cached); err == nil && ok {
		return cached, true, nil
	}

	now := time.Now().UTC()
	var result TimeseriesResult
	if ShouldUseStream(now, req.Start, req.End, req.Granularity) {
		points, err := s.Stream.TimeseriesStream(ctx, eventlog.TimeseriesStreamParams{
			Metric: req.Metric, Start: req.Start, End: req.End,
			Granularity: req.Granularity, ShopID: req.ShopID, UserID: req.UserID,
		})
		if err != nil {
			return TimeseriesResult{}, false, err
		}
		result = TimeseriesResult{Points: points, Source: "stream"}
	} else {
		points, err := s.timeseriesBatch(ctx, req)
		if err != nil {
			return TimeseriesResult{}, false, err
		}
		result = TimeseriesResult{Points: points, Source: "batch"}
	}

	if err := cache.SetJSON(ctx, s.Cache, key, result, resultTTL); err != nil {
		s.Logger.Warn("failed to cache timeseries result", "error", err)
	}
	return result, false, nil
}

// timeseriesBatch reads the projection table BatchTable selects and
// maps it to the metric/timestamp shape /timeseries always returns.
func (s *Service) timeseriesBatch(ctx context.Context, req TimeseriesRequest) ([]models.TimeseriesPoint, error) {
	from := req.Start.Format("2006-01-02")
	to := req.End.Format("2006-01-02")

	switch BatchTable(req.Granularity) {
	case "shop_visits_hourly":
		rows, err := s.Projections.ShopVisitsHourly(ctx, req.ShopID, req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))
		if err != nil {
			return nil, err
		}
		out := make([]models.TimeseriesPoint, 0, len(rows))
		for _, r := range rows {
			out = append(out, models.TimeseriesPoint{Timestamp: r.Hour, Value: shopVisitsHourlyValue(req.Metric, r)})
		}
		return out, nil
	case "user_activity_daily":
		rows, err := s.Projections.UserActivityDaily(ctx, req.UserID, from, to)
		if err != nil {
			return nil, err
		}
		out := make([]models.TimeseriesPoint, 0, len(rows))
		for _, r := range rows {
			out = append(out, models.TimeseriesPoint{Timestamp: r.Day, Value: userActivityDailyValue(req.Metric, r)})
		}
		return out, nil
	default:
		row, err := s.Projections.MonthlyShopSummary(ctx, req.ShopID, req.Start.Format("2006-01"))
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, nil
		}
		return []models.TimeseriesPoint{{Timestamp: row.Month, Value: monthlyShopSummaryValue(req.Metric, *row)}}, nil
	}
}

func shopVisitsHourlyValue(metric string, r models.ShopVisitsHourly) float64 {
	switch metric {
	case "unique_users":
		return float64(r.UniqueVisitors)
	case "avg_distance":
		return r.AvgDistance
	default:
		return float64(r.Visits)
	}
}

func userActivityDailyValue(metric string, r models.UserActivityDaily) float64 {
	switch metric {
	case "unique_shops":
		return float64(r.UniqueShops)
	case "total_distance":
		return r.TotalDistance
	default:
		return float64(r.TotalEvents)
	}
}

func monthlyShopSummaryValue(metric string, r models.MonthlyShopSummary) float64 {
	switch metric {
	case "unique_users":
		return float64(r.UniqueVisitors)
	case "avg_distance":
		return r.AvgDistance
	default:
		return float64(r.TotalVisits)
	}
}

// Aggregate serves POST /aggregate: the three named metrics always
// read batch projections; everything else uses a 24h stream window.
func (s *Service) Aggregate(ctx context.Context, req AggregateRequest) (AggregateResult, bool, error) {
	key := CacheKey("aggregate", map[string]any{"metric": req.Metric, "dimensions": req.Dimensions})

	var cached AggregateResult
	if ok, err := cache.GetJSON(ctx, s.Cache, key, &cached); err == nil && ok {
		return cached, true, nil
	}

	var result AggregateResult
	if ShouldUseBatchForAggregate(req.Metric) {
		rows, err := s.aggregateBatch(ctx, req.Metric)
		if err != nil {
			return AggregateResult{}, false, err
		}
		result = AggregateResult{Rows: rows, Source: "batch"}
	} else {
		rows, err := s.aggregateStream(ctx, req.Metric)
		if err != nil {
			return AggregateResult{}, false, err
		}
		result = AggregateResult{Rows: rows, Source: "stream"}
	}

	if err := cache.SetJSON(ctx, s.Cache, key, result, resultTTL); err != nil {
		s.Logger.Warn("failed to cache aggregate result", "error", err)
	}
	return result, false, nil
}

func (s *Service) aggregateBatch(ctx context.Context, metric string) ([]AggregateRow, error) {
	now := time.Now().UTC()
	switch metric {
	case "monthly_summary":
		rows, err := s.Projections.TopShopSummaries(ctx, now.AddDate(0, -3, 0), 50)
		if err != nil {
			return nil, err
		}
		out := make([]AggregateRow, 0, len(rows))
		for _, r := range rows {
			out = append(out, AggregateRow{
				Dimensions: map[string]any{"shop_id": r.ShopID, "month": r.Month.Format("2006-01-02")},
				Value:      float64(r.TotalVisits), Count: r.UniqueVisitors,
			})
		}
		return out, nil
	case "shop_performance":
		rows, err := s.Projections.TopShopPerformance(ctx, now.AddDate(0, 0, -7))
		if err != nil {
			return nil, err
		}
		out := make([]AggregateRow, 0, len(rows))
		for _, r := range rows {
			out = append(out, AggregateRow{
				Dimensions: map[string]any{"shop_id": r.ShopID, "period_start": r.PeriodStart.Format(time.RFC3339)},
				Value:      r.ConversionRate, Count: r.TotalImpressions,
			})
		}
		return out, nil
	default:
		// "user_journeys": the original's batch-aggregate branch has
		// no matching table shape either and falls through to an
		// empty result; preserved here rather than inventing a new
		// projection this endpoint never exposed.
		return nil, nil
	}
}

func (s *Service) aggregateStream(ctx context.Context, metric string) ([]AggregateRow, error) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	rows, err := s.Stream.StreamAggregateByShop(ctx, metric, since)
	if err != nil {
		return nil, err
	}
	out := make([]AggregateRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, AggregateRow{
			Dimensions: map[string]any{"shop_id": r.ShopID},
			Value:      r.Value, Count: r.Count,
		})
	}
	return out, nil
}

// UserActivity serves POST /user/activity: always combines a
// real-time block (last 24h, raw events) with a historical block
// (daily projection + top-5 favourite shops).
func (s *Service) UserActivity(ctx context.Context, req UserActivityRequest) (UserActivityResult, bool, error) {
	key := CacheKey("user_activity", map[string]any{"user_id": req.UserID, "start": req.Start, "end": req.End})

	var cached UserActivityResult
	if ok, err := cache.GetJSON(ctx, s.Cache, key, &cached); err == nil && ok {
		return cached, true, nil
	}

	realtime, err := s.Stream.UserRealtimeActivity(ctx, req.UserID, 24)
	if err != nil {
		return UserActivityResult{}, false, err
	}

	from, to := "1970-01-01", time.Now().UTC().Format("2006-01-02")
	if req.Start != nil {
		from = req.Start.Format("2006-01-02")
	}
	if req.End != nil {
		to = req.End.Format("2006-01-02")
	}
	daily, err := s.Projections.UserActivityDaily(ctx, req.UserID, from, to)
	if err != nil {
		return UserActivityResult{}, false, err
	}

	var daysActive, totalShops uint64
	var totalDistance float64
	for _, d := range daily {
		daysActive++
		totalShops += d.UniqueShops
		totalDistance += d.TotalDistance
	}

	favorites, err := s.Stream.FavoriteShops(ctx, req.UserID, favoriteShopsLimit)
	if err != nil {
		return UserActivityResult{}, false, err
	}

	result := UserActivityResult{
		Realtime:          realtime,
		TotalDaysActive:   daysActive,
		TotalShopsVisited: totalShops,
		TotalDistanceKm:   totalDistance / 1000,
		FavoriteShops:     favorites,
	}

	if err := cache.SetJSON(ctx, s.Cache, key, result, resultTTL); err != nil {
		s.Logger.Warn("failed to cache user activity result", "error", err)
	}
	return result, false, nil
}

// ShopPerformance serves POST /shop/performance: always reads the
// latest per-shop projection row plus a week-over-week trend computed
// from raw events.
func (s *Service) ShopPerformance(ctx context.Context, req ShopPerformanceRequest) (ShopPerformanceResult, bool, error) {
	key := CacheKey("shop_performance", map[string]any{"shop_ids": req.ShopIDs, "period_days": req.PeriodDays})

	var cached ShopPerformanceResult
	if ok, err := cache.GetJSON(ctx, s.Cache, key, &cached); err == nil && ok {
		return cached, true, nil
	}

	now := time.Now().UTC()
	currentWeek, err := s.Stream.ShopVisitCounts(ctx, req.ShopIDs, now.AddDate(0, 0, -7), now)
	if err != nil {
		return ShopPerformanceResult{}, false, err
	}
	previousWeek, err := s.Stream.ShopVisitCounts(ctx, req.ShopIDs, now.AddDate(0, 0, -14), now.AddDate(0, 0, -7))
	if err != nil {
		return ShopPerformanceResult{}, false, err
	}

	rows := make([]ShopPerformanceRow, 0, len(req.ShopIDs))
	for _, shopID := range req.ShopIDs {
		metrics, err := s.Projections.ShopPerformanceMetrics(ctx, shopID)
		if err != nil {
			return ShopPerformanceResult{}, false, err
		}
		if metrics == nil {
			continue
		}
		rows = append(rows, ShopPerformanceRow{
			Metrics: *metrics,
			Trend:   computeTrend(shopID, currentWeek[shopID], previousWeek[shopID]),
		})
	}

	result := ShopPerformanceResult{Shops: rows}
	if err := cache.SetJSON(ctx, s.Cache, key, result, resultTTL); err != nil {
		s.Logger.Warn("failed to cache shop performance result", "error", err)
	}
	return result, false, nil
}

// computeTrend implements get_shop_trends' bucketing: >5% up, <-5%
// down, else stable, with a naive linear forecast for the next period.
func computeTrend(shopID int64, current, previous uint64) models.ShopTrend {
	if previous == 0 {
		return models.ShopTrend{ShopID: shopID, Direction: "stable", PercentChange: 0}
	}

	change := (float64(current) - float64(previous)) / float64(previous)
	direction := "stable"
	switch {
	case change > 0.05:
		direction = "up"
	case change < -0.05:
		direction = "down"
	}

	forecast := int64(float64(current) * (1 + change))
	return models.ShopTrend{
		ShopID: shopID, Direction: direction,
		PercentChange: change * 100, ForecastNextPeriod: &forecast,
	}
}
