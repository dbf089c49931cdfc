package aggregate

import (
	"context"
	"fmt"
	"time"
)

const refreshMonthlyShopSummaryQuery = `
INSERT INTO monthly_shop_summary
  (month, shop_id, shop_name, total_visits, unique_visitors, avg_distance, calculated_at)
SELECT
  ? AS month,
  shop_id,
  any(poi_name) AS shop_name,
  count() AS total_visits,
  uniq(user_id) AS unique_visitors,
  avg(poi_range) AS avg_distance,
  now() AS calculated_at
FROM user_events
WHERE event_time >= ? AND event_time < ? AND poi_name != ''
GROUP BY shop_id`

// RefreshMonthlyShopSummary recomputes the calendar-month bucket
// containing asOf and appends a fresh version row per shop (read by
// C9 ordered by calculated_at DESC / LIMIT 1, ReplacingMergeTree keeps
// only the latest on merge).
func (j *Jobs) RefreshMonthlyShopSummary(ctx context.Context, asOf time.Time) error {
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	_, err := j.db.ExecContext(ctx, refreshMonthlyShopSummaryQuery, monthStart, monthStart, monthEnd)
	if err != nil {
		j.logger.Error("monthly shop summary refresh failed", "month", monthStart, "error", err)
		return fmt.Errorf("aggregate: refresh monthly shop summary: %w", err)
	}
	j.logger.Info("monthly shop summary refreshed", "month", monthStart.Format("2006-01"))
	return nil
}
