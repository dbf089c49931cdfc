package eventlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClickHouseStore_WriteEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	event := models.EnrichedEvent{
		EventID: 10, EventTime: time.Now().UTC(), UserID: 1, ShopID: 5,
		Latitude: 45.0, Longitude: 7.6, PoiRange: 87.3,
		PoiName: "Bar Centrale", PoiInfo: "Come in for coffee",
	}

	mock.ExpectExec("INSERT INTO user_events").
		WithArgs(event.EventID, event.EventTime, event.UserID, event.ShopID, event.Latitude,
			event.Longitude, event.PoiRange, event.PoiName, event.PoiInfo).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewClickHouseStore(db, newTestLogger())
	require.NoError(t, store.WriteEvent(context.Background(), event))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClickHouseStore_WriteEvent_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO user_events").WillReturnError(errors.New("connection reset"))

	store := NewClickHouseStore(db, newTestLogger())
	err = store.WriteEvent(context.Background(), models.EnrichedEvent{})
	require.Error(t, err)
}

func TestClickHouseStore_MonthlyShopSummary_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT month, shop_id").
		WithArgs(int64(1), "2026-01").
		WillReturnRows(sqlmock.NewRows([]string{
			"month", "shop_id", "shop_name", "total_visits",
			"unique_visitors", "avg_distance", "calculated_at",
		}))

	store := NewClickHouseStore(db, newTestLogger())
	row, err := store.MonthlyShopSummary(context.Background(), 1, "2026-01")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestClickHouseStore_ShopVisitsHourly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT hour, shop_id").
		WithArgs(int64(3), "2026-07-30", "2026-07-31").
		WillReturnRows(sqlmock.NewRows([]string{"hour", "shop_id", "visits", "unique_visitors", "avg_distance"}).
			AddRow(now, int64(3), uint64(12), uint64(9), 55.2))

	store := NewClickHouseStore(db, newTestLogger())
	rows, err := store.ShopVisitsHourly(context.Background(), 3, "2026-07-30", "2026-07-31")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(12), rows[0].Visits)
}
