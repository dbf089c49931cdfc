package aggregate

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRefreshMonthlyShopSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	asOf := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO monthly_shop_summary").
		WithArgs(monthStart, monthStart, monthEnd).
		WillReturnResult(sqlmock.NewResult(0, 3))

	jobs := NewJobs(db, testLogger())
	require.NoError(t, jobs.RefreshMonthlyShopSummary(context.Background(), asOf))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCalculateShopPerformance_PicksBusiestHour(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	asOf := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	start := asOf.AddDate(0, 0, -7)

	mock.ExpectQuery("SELECT(.|\n)*shop_id,(.|\n)*any\\(poi_name\\)").
		WithArgs(start, asOf).
		WillReturnRows(sqlmock.NewRows([]string{"shop_id", "shop_name", "total_impressions", "conversion_rate", "avg_dwell_time"}).
			AddRow(int64(1), "Bar Centrale", uint64(100), 0.42, 55.0))

	mock.ExpectQuery("SELECT shop_id, toHour").
		WithArgs(start, asOf).
		WillReturnRows(sqlmock.NewRows([]string{"shop_id", "hr", "cnt"}).
			AddRow(int64(1), 9, uint64(5)).
			AddRow(int64(1), 18, uint64(40)).
			AddRow(int64(1), 20, uint64(12)))

	mock.ExpectExec("INSERT INTO shop_performance_metrics").
		WithArgs(int64(1), "Bar Centrale", start, asOf, uint64(100), 0.42, 18, 55.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	jobs := NewJobs(db, testLogger())
	require.NoError(t, jobs.CalculateShopPerformance(context.Background(), 7, asOf))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateUserJourneys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2026, 7, 29, 14, 30, 0, 0, time.UTC)
	date := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO user_journey_summary").
		WithArgs(date, date).
		WillReturnResult(sqlmock.NewResult(0, 2))

	jobs := NewJobs(db, testLogger())
	require.NoError(t, jobs.AggregateUserJourneys(context.Background(), day))
	require.NoError(t, mock.ExpectationsWereMet())
}
