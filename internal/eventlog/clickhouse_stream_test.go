package eventlog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeseriesStream_HourlyBucket(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT toStartOfHour").
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "value"}).
			AddRow(start, 12.0))

	store := NewClickHouseStore(db, newTestLogger())
	pts, err := store.TimeseriesStream(context.Background(), TimeseriesStreamParams{
		Metric: "visits", Start: start, End: end, Granularity: "hour",
	})
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, 12.0, pts[0].Value)
}

func TestTimeseriesStream_FiltersByShopAndUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Now().UTC()
	end := start.Add(time.Hour)

	mock.ExpectQuery("SELECT toStartOfHour(.|\n)*shop_id = \\?(.|\n)*user_id = \\?").
		WithArgs(start, end, int64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "value"}))

	store := NewClickHouseStore(db, newTestLogger())
	_, err = store.TimeseriesStream(context.Background(), TimeseriesStreamParams{
		Metric: "visits", Start: start, End: end, Granularity: "hour", ShopID: 3, UserID: 7,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRealtimeActivity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT(.|\n)*argMax\\(latitude").
		WithArgs(uint64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"last_lat", "last_lon", "recent_shops", "events", "messages"}).
			AddRow(45.0, 7.6, []string{"Bar Centrale", "Bar Centrale"}, uint64(10), uint64(3)))

	store := NewClickHouseStore(db, newTestLogger())
	out, err := store.UserRealtimeActivity(context.Background(), 7, 24)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), out.Events)
	assert.Equal(t, []string{"Bar Centrale"}, out.RecentShops, "duplicate shop names must be deduped")
}

func TestFavoriteShops(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT poi_name").
		WithArgs(uint64(7), 5).
		WillReturnRows(sqlmock.NewRows([]string{"poi_name", "visits"}).
			AddRow("Bar Centrale", uint64(9)))

	store := NewClickHouseStore(db, newTestLogger())
	shops, err := store.FavoriteShops(context.Background(), 7, 5)
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Bar Centrale", shops[0].Name)
}

func TestShopVisitCounts_EmptyInput(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewClickHouseStore(db, newTestLogger())
	counts, err := store.ShopVisitCounts(context.Background(), nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestShopVisitCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	since := time.Now().UTC().AddDate(0, 0, -7)
	until := time.Now().UTC()

	mock.ExpectQuery("SELECT shop_id, count\\(\\)").
		WithArgs(int64(1), int64(2), since, until).
		WillReturnRows(sqlmock.NewRows([]string{"shop_id", "visits"}).
			AddRow(int64(1), uint64(5)).
			AddRow(int64(2), uint64(3)))

	store := NewClickHouseStore(db, newTestLogger())
	counts, err := store.ShopVisitCounts(context.Background(), []int64{1, 2}, since, until)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), counts[1])
	assert.Equal(t, uint64(3), counts[2])
}
