// Package spatial implements C2: nearest-POI lookup over Postgres +
// PostGIS, the Go half of the original _find_nearest_shop query.
package spatial

import (
	"context"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// Index resolves the nearest point of interest to a coordinate.
type Index interface {
	// Nearest returns the closest POI to (lat, lon), or (nil, nil) when
	// the shops table holds no rows.
	Nearest(ctx context.Context, lat, lon float64) (*models.NearestPOI, error)
}
