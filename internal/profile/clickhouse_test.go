package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClickHouseStore_Get_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id", "age", "profession", "interests"}).
		AddRow(uint64(7), uint8(34), "Designer", "art,coffee")
	mock.ExpectQuery("SELECT user_id, age, profession, interests").
		WithArgs(uint64(7)).
		WillReturnRows(rows)

	store := NewClickHouseStore(db, newTestLogger())
	p, err := store.Get(context.Background(), 7)

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, uint64(7), p.UserID)
	assert.Equal(t, uint8(34), p.Age)
	assert.Equal(t, "Designer", p.Profession)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClickHouseStore_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id", "age", "profession", "interests"})
	mock.ExpectQuery("SELECT user_id, age, profession, interests").
		WithArgs(uint64(99)).
		WillReturnRows(rows)

	store := NewClickHouseStore(db, newTestLogger())
	p, err := store.Get(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestClickHouseStore_Get_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id, age, profession, interests").
		WithArgs(uint64(5)).
		WillReturnError(errors.New("connection reset"))

	store := NewClickHouseStore(db, newTestLogger())
	p, err := store.Get(context.Background(), 5)
	require.Error(t, err)
	assert.Nil(t, p)
}
