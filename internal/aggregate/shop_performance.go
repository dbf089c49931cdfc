package aggregate

import (
	"context"
	"fmt"
	"time"
)

const shopPerformanceAggregatesQuery = `
SELECT
  shop_id,
  any(poi_name) AS shop_name,
  count() AS total_impressions,
  countIf(poi_info != '') / count() AS conversion_rate,
  avg(poi_range) AS avg_dwell_time
FROM user_events
WHERE event_time >= ? AND event_time <= ? AND poi_name != ''
GROUP BY shop_id`

const shopHourlyCountsQuery = `
SELECT shop_id, toHour(event_time) AS hr, count() AS cnt
FROM user_events
WHERE event_time >= ? AND event_time <= ? AND poi_name != ''
GROUP BY shop_id, hr`

const insertShopPerformanceQuery = `
INSERT INTO shop_performance_metrics
  (shop_id, shop_name, period_start, period_end, total_impressions,
   conversion_rate, peak_hour, avg_dwell_time, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, now())`

type shopPerformanceRow struct {
	shopID           int64
	shopName         string
	totalImpressions uint64
	conversionRate   float64
	avgDwellTime     float64
}

// CalculateShopPerformance recomputes conversion/dwell/peak-hour
// metrics over the last periodDays ending at asOf. The original's SQL
// derived peak_hour via `argMax(event_time, count())`, which orders by
// a constant and returns an arbitrary hour rather than the busiest
// one; this resolves it the honest way, reading per-hour counts and
// picking the max in Go (see DESIGN.md open-question #2).
func (j *Jobs) CalculateShopPerformance(ctx context.Context, periodDays int, asOf time.Time) error {
	periodEnd := asOf
	periodStart := asOf.AddDate(0, 0, -periodDays)

	aggRows, err := j.db.QueryContext(ctx, shopPerformanceAggregatesQuery, periodStart, periodEnd)
	if err != nil {
		return fmt.Errorf("aggregate: shop performance aggregates: %w", err)
	}
	defer aggRows.Close()

	perShop := make(map[int64]*shopPerformanceRow)
	for aggRows.Next() {
		var r shopPerformanceRow
		if err := aggRows.Scan(&r.shopID, &r.shopName, &r.totalImpressions, &r.conversionRate, &r.avgDwellTime); err != nil {
			return fmt.Errorf("aggregate: scan shop performance aggregate: %w", err)
		}
		perShop[r.shopID] = &r
	}
	if err := aggRows.Err(); err != nil {
		return fmt.Errorf("aggregate: iterate shop performance aggregates: %w", err)
	}

	peakHour, err := j.peakHourPerShop(ctx, periodStart, periodEnd)
	if err != nil {
		return err
	}

	for shopID, row := range perShop {
		_, err := j.db.ExecContext(ctx, insertShopPerformanceQuery,
			row.shopID, row.shopName, periodStart, periodEnd,
			row.totalImpressions, row.conversionRate, peakHour[shopID], row.avgDwellTime,
		)
		if err != nil {
			j.logger.Error("shop performance insert failed", "shop_id", shopID, "error", err)
			return fmt.Errorf("aggregate: insert shop performance for shop %d: %w", shopID, err)
		}
	}

	j.logger.Info("shop performance metrics calculated", "shops", len(perShop), "period_days", periodDays)
	return nil
}

// peakHourPerShop returns, for each shop with any traffic in the
// window, the hour-of-day (0-23) with the highest event count.
func (j *Jobs) peakHourPerShop(ctx context.Context, start, end time.Time) (map[int64]int, error) {
	rows, err := j.db.QueryContext(ctx, shopHourlyCountsQuery, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate: shop hourly counts: %w", err)
	}
	defer rows.Close()

	bestCount := make(map[int64]uint64)
	peak := make(map[int64]int)
	for rows.Next() {
		var shopID int64
		var hour int
		var count uint64
		if err := rows.Scan(&shopID, &hour, &count); err != nil {
			return nil, fmt.Errorf("aggregate: scan shop hourly count: %w", err)
		}
		if count > bestCount[shopID] {
			bestCount[shopID] = count
			peak[shopID] = hour
		}
	}
	return peak, rows.Err()
}
