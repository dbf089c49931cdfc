package profile

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

var _ Store = (*ClickHouseStore)(nil)

// ClickHouseStore reads user profiles from the "users" table populated
// out-of-core by the user-management side of the system.
type ClickHouseStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewClickHouseStore wires a ClickHouseStore against an open connection.
func NewClickHouseStore(db *sql.DB, logger *slog.Logger) *ClickHouseStore {
	return &ClickHouseStore{db: db, logger: logger}
}

const getProfileQuery = `
SELECT user_id, age, profession, interests
FROM users
WHERE user_id = ?
LIMIT 1`

// Get looks up a single user profile. A missing row is not an error.
func (s *ClickHouseStore) Get(ctx context.Context, userID uint64) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.QueryRowContext(ctx, getProfileQuery, userID).Scan(
		&p.UserID, &p.Age, &p.Profession, &p.Interests,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("clickhouse user profile lookup failed", "user_id", userID, "error", err)
		return nil, err
	}
	return &p, nil
}
