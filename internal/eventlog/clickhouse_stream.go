package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// TimeseriesStream serves the /timeseries stream routing path: one
// value per time bucket over the raw event log, grounded on
// query_stream_timeseries's metric/bucket mapping.
func (s *ClickHouseStore) TimeseriesStream(ctx context.Context, p TimeseriesStreamParams) ([]models.TimeseriesPoint, error) {
	query, args := timeseriesQuery(p)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("timeseries stream query failed", "metric", p.Metric, "error", err)
		return nil, fmt.Errorf("eventlog: timeseries stream: %w", err)
	}
	defer rows.Close()

	var out []models.TimeseriesPoint
	for rows.Next() {
		var pt models.TimeseriesPoint
		if err := rows.Scan(&pt.Timestamp, &pt.Value); err != nil {
			return nil, fmt.Errorf("eventlog: scan timeseries point: %w", err)
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

const userRealtimeActivityQuery = `
SELECT
  argMax(latitude, event_time) AS last_lat,
  argMax(longitude, event_time) AS last_lon,
  groupArray(poi_name) AS recent_shops,
  count() AS events,
  countIf(poi_info != '') AS messages
FROM user_events
WHERE user_id = ? AND event_time >= ?`

// UserRealtimeActivity serves the always-present real-time block of
// /user/activity, grounded on get_user_realtime_activity.
func (s *ClickHouseStore) UserRealtimeActivity(ctx context.Context, userID uint64, hours int) (models.UserRealtimeActivity, error) {
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	var out models.UserRealtimeActivity
	var lastLat, lastLon *float64
	err := s.db.QueryRowContext(ctx, userRealtimeActivityQuery, userID, since).
		Scan(&lastLat, &lastLon, &out.RecentShops, &out.Events, &out.MessagesReceived)
	if err != nil {
		s.logger.Error("user realtime activity query failed", "user_id", userID, "error", err)
		return models.UserRealtimeActivity{}, fmt.Errorf("eventlog: user realtime activity: %w", err)
	}
	out.LastLat, out.LastLon = lastLat, lastLon
	out.RecentShops = dedupStrings(out.RecentShops)
	return out, nil
}

const favoriteShopsQuery = `
SELECT poi_name, count() AS visits
FROM user_events
WHERE user_id = ? AND poi_name != ''
GROUP BY poi_name
ORDER BY visits DESC
LIMIT ?`

// FavoriteShops serves the top-N favourite-shops list in /user/activity.
func (s *ClickHouseStore) FavoriteShops(ctx context.Context, userID uint64, limit int) ([]models.FavoriteShop, error) {
	rows, err := s.db.QueryContext(ctx, favoriteShopsQuery, userID, limit)
	if err != nil {
		s.logger.Error("favorite shops query failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("eventlog: favorite shops: %w", err)
	}
	defer rows.Close()

	var out []models.FavoriteShop
	for rows.Next() {
		var f models.FavoriteShop
		if err := rows.Scan(&f.Name, &f.Visits); err != nil {
			return nil, fmt.Errorf("eventlog: scan favorite shop: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ShopVisitCounts returns visit counts per shop_id in [since, until),
// used by /shop/performance's week-over-week trend comparison.
func (s *ClickHouseStore) ShopVisitCounts(ctx context.Context, shopIDs []int64, since, until time.Time) (map[int64]uint64, error) {
	if len(shopIDs) == 0 {
		return map[int64]uint64{}, nil
	}

	args := make([]any, 0, len(shopIDs)+2)
	for _, id := range shopIDs {
		args = append(args, id)
	}
	args = append(args, since, until)

	query := fmt.Sprintf(`
SELECT shop_id, count() AS visits
FROM user_events
WHERE shop_id IN (%s) AND event_time >= ? AND event_time < ?
GROUP BY shop_id`, inPlaceholders(len(shopIDs)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("shop visit counts query failed", "error", err)
		return nil, fmt.Errorf("eventlog: shop visit counts: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]uint64, len(shopIDs))
	for rows.Next() {
		var shopID int64
		var visits uint64
		if err := rows.Scan(&shopID, &visits); err != nil {
			return nil, fmt.Errorf("eventlog: scan shop visit count: %w", err)
		}
		out[shopID] = visits
	}
	return out, rows.Err()
}

var streamAggregateMetricSQL = map[string]string{
	"count":        "count()",
	"unique_users": "uniq(user_id)",
	"avg_distance": "avg(poi_range)",
}

// StreamAggregateByShop serves /aggregate's stream fallback: a
// shop_id-grouped ranking over the last 24h, mirroring
// query_stream_aggregate narrowed to this domain's one meaningful
// dimension.
func (s *ClickHouseStore) StreamAggregateByShop(ctx context.Context, metric string, since time.Time) ([]models.ShopAggregateRow, error) {
	metricSQL, ok := streamAggregateMetricSQL[metric]
	if !ok {
		metricSQL = "count()"
	}

	query := fmt.Sprintf(`
SELECT shop_id, %s AS value, count() AS count
FROM user_events
WHERE event_time >= ? AND shop_id != 0
GROUP BY shop_id
ORDER BY value DESC
LIMIT 100`, metricSQL)

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		s.logger.Error("stream aggregate by shop query failed", "metric", metric, "error", err)
		return nil, fmt.Errorf("eventlog: stream aggregate by shop: %w", err)
	}
	defer rows.Close()

	var out []models.ShopAggregateRow
	for rows.Next() {
		var r models.ShopAggregateRow
		if err := rows.Scan(&r.ShopID, &r.Value, &r.Count); err != nil {
			return nil, fmt.Errorf("eventlog: scan shop aggregate row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func dedupStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
