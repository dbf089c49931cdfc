package aggregate

import (
	"context"
	"fmt"
	"time"
)

const aggregateUserJourneysQuery = `
INSERT INTO user_journey_summary
  (user_id, journey_date, shops_visited, total_distance, journey_duration, created_at)
SELECT
  user_id,
  ? AS journey_date,
  groupArray(poi_name) AS shops_visited,
  sum(poi_range) AS total_distance,
  dateDiff('second', min(event_time), max(event_time)) AS journey_duration,
  now() AS created_at
FROM (
  SELECT *
  FROM user_events
  WHERE toDate(event_time) = ? AND poi_name != ''
  ORDER BY user_id, event_time
)
GROUP BY user_id
HAVING length(shops_visited) > 0`

// AggregateUserJourneys appends one user_journey_summary row per user
// with at least one poi touch on day. It is append-only (MergeTree,
// not ReplacingMergeTree): rerunning the same day produces duplicate
// rows, matching the original's un-deduplicated journey table.
func (j *Jobs) AggregateUserJourneys(ctx context.Context, day time.Time) error {
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	_, err := j.db.ExecContext(ctx, aggregateUserJourneysQuery, date, date)
	if err != nil {
		j.logger.Error("user journey aggregation failed", "day", date, "error", err)
		return fmt.Errorf("aggregate: aggregate user journeys: %w", err)
	}
	j.logger.Info("user journeys aggregated", "day", date.Format("2006-01-02"))
	return nil
}
