package spatial

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

var _ Index = (*Repository)(nil)

// querier is the slice of pgxpool.Pool this repository needs; narrowing
// it to an interface lets pgxmock.PgxPoolIface stand in for tests.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the PostGIS-backed Index implementation, grounded on
// the teacher's internal/api/poi/poi_repository.go query shape.
type Repository struct {
	pool   querier
	logger *slog.Logger
}

// NewRepository wires a Repository against an already-open pool.
func NewRepository(pool querier, logger *slog.Logger) *Repository {
	return &Repository{pool: pool, logger: logger}
}

const nearestQuery = `
SELECT
  shop_id,
  shop_name,
  category,
  ST_Distance(
    geom::geography,
    ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
  ) AS distance
FROM shops
ORDER BY distance
LIMIT 1`

// Nearest runs the PostGIS nearest-neighbour query under a 10s
// statement timeout. A query-level error is logged and returned as
// (nil, err); an empty result set (no shops) returns (nil, nil).
func (r *Repository) Nearest(ctx context.Context, lat, lon float64) (*models.NearestPOI, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var poi models.NearestPOI
	err := r.pool.QueryRow(ctx, nearestQuery, lon, lat).Scan(
		&poi.ShopID, &poi.ShopName, &poi.Category, &poi.Distance,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("postgis nearest-shop query failed", "error", err)
		return nil, err
	}
	return &poi, nil
}
