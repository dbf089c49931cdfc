// Package profile implements C3: a read-only lookup of externally-seeded
// user attributes (age, profession, interests) from ClickHouse's
// `users` table, mirroring the original _get_user_profile query.
package profile

import (
	"context"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// Store resolves a user's profile by id.
type Store interface {
	// Get returns (nil, nil) when no row exists for userID.
	Get(ctx context.Context, userID uint64) (*models.UserProfile, error)
}
