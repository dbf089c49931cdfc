// Package aggregate implements C8: the three batch-projection jobs
// that populate the ReplacingMergeTree/MergeTree summary tables C9's
// batch routing path reads (monthly_shop_summary,
// shop_performance_metrics, user_journey_summary). The monthly summary
// and user journey jobs are each a single INSERT ... SELECT; the shop
// performance job reads with two queries (aggregates, then per-hour
// counts for the Go-side peak hour) and inserts one row per shop. Each
// job runs once per invocation; external scheduling (cron, a k8s
// CronJob) decides when `cmd/aggregator` runs.
package aggregate

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// Jobs bundles the batch-aggregation queries against one ClickHouse
// connection pool.
type Jobs struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewJobs wires Jobs against an open ClickHouse *sql.DB.
func NewJobs(db *sql.DB, logger *slog.Logger) *Jobs {
	return &Jobs{db: db, logger: logger}
}

// RunAll runs every batch job once, in the order the original
// materialized-view manager did (monthly summary, shop performance,
// user journeys), stopping at the first failure.
func (j *Jobs) RunAll(ctx context.Context) error {
	now := time.Now().UTC()
	if err := j.RefreshMonthlyShopSummary(ctx, now); err != nil {
		return err
	}
	if err := j.CalculateShopPerformance(ctx, 7, now); err != nil {
		return err
	}
	if err := j.AggregateUserJourneys(ctx, now.AddDate(0, 0, -1)); err != nil {
		return err
	}
	return nil
}
