package eventlog

import (
	"fmt"
	"strings"
)

var (
	_ StreamReader = (*ClickHouseStore)(nil)
)

var timeseriesMetricSQL = map[string]string{
	"visits":        "count()",
	"unique_users":  "uniq(user_id)",
	"avg_distance":  "avg(poi_range)",
	"messages":      "countIf(poi_info != '')",
}

var timeseriesBucketSQL = map[string]string{
	"minute": "toStartOfMinute(event_time)",
	"hour":   "toStartOfHour(event_time)",
	"day":    "toDate(event_time)",
	"month":  "toStartOfMonth(event_time)",
}

func inPlaceholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ",")
}

func timeseriesQuery(p TimeseriesStreamParams) (string, []any) {
	metricSQL, ok := timeseriesMetricSQL[p.Metric]
	if !ok {
		metricSQL = "count()"
	}
	bucketSQL, ok := timeseriesBucketSQL[p.Granularity]
	if !ok {
		bucketSQL = "toStartOfHour(event_time)"
	}

	query := fmt.Sprintf(`
SELECT %s AS bucket, %s AS value
FROM user_events
WHERE event_time >= ? AND event_time <= ?`, bucketSQL, metricSQL)
	args := []any{p.Start, p.End}

	if p.ShopID != 0 {
		query += " AND shop_id = ?"
		args = append(args, p.ShopID)
	}
	if p.UserID != 0 {
		query += " AND user_id = ?"
		args = append(args, p.UserID)
	}
	query += " GROUP BY bucket ORDER BY bucket"
	return query, args
}
