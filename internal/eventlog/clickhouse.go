package eventlog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

var (
	_ Sink        = (*ClickHouseStore)(nil)
	_ Projections = (*ClickHouseStore)(nil)
)

// ClickHouseStore is the single ClickHouse-backed implementation of
// both the append-only sink and the projection read paths; both sides
// share one connection pool since they address the same database.
type ClickHouseStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewClickHouseStore wires a ClickHouseStore against an open connection.
func NewClickHouseStore(db *sql.DB, logger *slog.Logger) *ClickHouseStore {
	return &ClickHouseStore{db: db, logger: logger}
}

const insertEventQuery = `
INSERT INTO user_events
  (event_id, event_time, user_id, shop_id, latitude, longitude, poi_range, poi_name, poi_info)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// WriteEvent appends one enriched event. A ClickHouse write failure is
// logged and returned. The enrichment pipeline only logs that error and
// moves on: the source offset is committed when the message is
// dispatched, so a failed write loses the event from the sink.
func (s *ClickHouseStore) WriteEvent(ctx context.Context, e models.EnrichedEvent) error {
	_, err := s.db.ExecContext(ctx, insertEventQuery,
		e.EventID, e.EventTime, e.UserID, e.ShopID, e.Latitude, e.Longitude,
		e.PoiRange, e.PoiName, e.PoiInfo,
	)
	if err != nil {
		s.logger.Error("clickhouse event write failed", "user_id", e.UserID, "error", err)
		return err
	}
	return nil
}

const monthlyShopSummaryQuery = `
SELECT month, shop_id, shop_name, total_visits, unique_visitors, avg_distance, calculated_at
FROM monthly_shop_summary
WHERE shop_id = ? AND month = ?
ORDER BY calculated_at DESC
LIMIT 1`

func (s *ClickHouseStore) MonthlyShopSummary(ctx context.Context, shopID int64, month string) (*models.MonthlyShopSummary, error) {
	var row models.MonthlyShopSummary
	err := s.db.QueryRowContext(ctx, monthlyShopSummaryQuery, shopID, month).Scan(
		&row.Month, &row.ShopID, &row.ShopName, &row.TotalVisits,
		&row.UniqueVisitors, &row.AvgDistance, &row.CalculatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("monthly_shop_summary read failed", "shop_id", shopID, "error", err)
		return nil, err
	}
	return &row, nil
}

const shopPerformanceMetricsQuery = `
SELECT shop_id, shop_name, period_start, period_end, total_impressions,
       conversion_rate, peak_hour, avg_dwell_time, updated_at
FROM shop_performance_metrics
WHERE shop_id = ?
ORDER BY updated_at DESC
LIMIT 1`

func (s *ClickHouseStore) ShopPerformanceMetrics(ctx context.Context, shopID int64) (*models.ShopPerformanceMetrics, error) {
	var row models.ShopPerformanceMetrics
	err := s.db.QueryRowContext(ctx, shopPerformanceMetricsQuery, shopID).Scan(
		&row.ShopID, &row.ShopName, &row.PeriodStart, &row.PeriodEnd,
		&row.TotalImpressions, &row.ConversionRate, &row.PeakHour,
		&row.AvgDwellTime, &row.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("shop_performance_metrics read failed", "shop_id", shopID, "error", err)
		return nil, err
	}
	return &row, nil
}

const userJourneySummaryQuery = `
SELECT user_id, journey_date, shops_visited, total_distance, journey_duration, created_at
FROM user_journey_summary
WHERE user_id = ? AND journey_date = ?
ORDER BY created_at DESC
LIMIT 1`

func (s *ClickHouseStore) UserJourneySummary(ctx context.Context, userID uint64, day string) (*models.UserJourneySummary, error) {
	var row models.UserJourneySummary
	var durationSeconds uint32
	err := s.db.QueryRowContext(ctx, userJourneySummaryQuery, userID, day).Scan(
		&row.UserID, &row.JourneyDate, &row.ShopsVisited, &row.TotalDistance,
		&durationSeconds, &row.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("user_journey_summary read failed", "user_id", userID, "error", err)
		return nil, err
	}
	row.JourneyDuration = secondsToDuration(durationSeconds)
	return &row, nil
}

const topShopSummariesQuery = `
SELECT month, shop_id, shop_name, total_visits, unique_visitors, avg_distance, calculated_at
FROM monthly_shop_summary
WHERE month >= ?
ORDER BY total_visits DESC
LIMIT ?`

// TopShopSummaries serves /aggregate's "monthly_summary" batch metric.
func (s *ClickHouseStore) TopShopSummaries(ctx context.Context, since time.Time, limit int) ([]models.MonthlyShopSummary, error) {
	rows, err := s.db.QueryContext(ctx, topShopSummariesQuery, since, limit)
	if err != nil {
		s.logger.Error("top shop summaries query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.MonthlyShopSummary
	for rows.Next() {
		var r models.MonthlyShopSummary
		if err := rows.Scan(&r.Month, &r.ShopID, &r.ShopName, &r.TotalVisits,
			&r.UniqueVisitors, &r.AvgDistance, &r.CalculatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const topShopPerformanceQuery = `
SELECT shop_id, shop_name, period_start, period_end, total_impressions,
       conversion_rate, peak_hour, avg_dwell_time, updated_at
FROM shop_performance_metrics
WHERE period_end >= ?
ORDER BY conversion_rate DESC`

// TopShopPerformance serves /aggregate's "shop_performance" batch metric.
func (s *ClickHouseStore) TopShopPerformance(ctx context.Context, since time.Time) ([]models.ShopPerformanceMetrics, error) {
	rows, err := s.db.QueryContext(ctx, topShopPerformanceQuery, since)
	if err != nil {
		s.logger.Error("top shop performance query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ShopPerformanceMetrics
	for rows.Next() {
		var r models.ShopPerformanceMetrics
		if err := rows.Scan(&r.ShopID, &r.ShopName, &r.PeriodStart, &r.PeriodEnd,
			&r.TotalImpressions, &r.ConversionRate, &r.PeakHour, &r.AvgDwellTime, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const shopVisitsHourlyQuery = `
SELECT hour, shop_id, visits, unique_visitors, avg_distance
FROM shop_visits_hourly
WHERE shop_id = ? AND hour >= ? AND hour < ?
ORDER BY hour`

func (s *ClickHouseStore) ShopVisitsHourly(ctx context.Context, shopID int64, from, to string) ([]models.ShopVisitsHourly, error) {
	rows, err := s.db.QueryContext(ctx, shopVisitsHourlyQuery, shopID, from, to)
	if err != nil {
		s.logger.Error("shop_visits_hourly read failed", "shop_id", shopID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ShopVisitsHourly
	for rows.Next() {
		var r models.ShopVisitsHourly
		if err := rows.Scan(&r.Hour, &r.ShopID, &r.Visits, &r.UniqueVisitors, &r.AvgDistance); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const userActivityDailyQuery = `
SELECT user_id, day, total_events, unique_shops, total_distance
FROM user_activity_daily
WHERE user_id = ? AND day >= ? AND day < ?
ORDER BY day`

func (s *ClickHouseStore) UserActivityDaily(ctx context.Context, userID uint64, from, to string) ([]models.UserActivityDaily, error) {
	rows, err := s.db.QueryContext(ctx, userActivityDailyQuery, userID, from, to)
	if err != nil {
		s.logger.Error("user_activity_daily read failed", "user_id", userID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.UserActivityDaily
	for rows.Next() {
		var r models.UserActivityDaily
		if err := rows.Scan(&r.UserID, &r.Day, &r.TotalEvents, &r.UniqueShops, &r.TotalDistance); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
