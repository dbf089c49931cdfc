// Package query implements C9: the unified read API that routes
// requests between the raw event log (C4) and C8's batch projections,
// caching results through C1.
package query

import "time"

// ShouldUseStream mirrors query_engine.py's should_use_stream: recent,
// fine-grained, or short-range queries are cheap enough to serve
// straight from the raw event log; everything else goes to a
// projection table.
func ShouldUseStream(now, start, end time.Time, granularity string) bool {
	sevenDaysAgo := now.Add(-7 * 24 * time.Hour)
	if !start.Before(sevenDaysAgo) && (granularity == "minute" || granularity == "hour") {
		return true
	}
	if end.Sub(start) <= 24*time.Hour {
		return true
	}
	return false
}

// BatchTable picks the projection table /timeseries reads from on the
// batch path, keyed by requested granularity.
func BatchTable(granularity string) string {
	switch granularity {
	case "hour":
		return "shop_visits_hourly"
	case "day":
		return "user_activity_daily"
	default:
		return "monthly_shop_summary"
	}
}

// aggregateMetricsAlwaysBatch are the /aggregate metrics that always
// read C8 projections regardless of the requested time range.
var aggregateMetricsAlwaysBatch = map[string]bool{
	"monthly_summary": true,
	"shop_performance": true,
	"user_journeys":   true,
}

// ShouldUseBatchForAggregate implements the /aggregate routing rule:
// named projection metrics always use batch; anything else falls back
// to a 24h stream window.
func ShouldUseBatchForAggregate(metric string) bool {
	return aggregateMetricsAlwaysBatch[metric]
}
