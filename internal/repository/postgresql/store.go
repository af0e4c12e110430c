package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type storeRepositoryImpl struct {
	db *database.DB
}

func NewStoreRepository(db *database.DB) attendance.StoreDirectory {
	return &storeRepositoryImpl{db: db}
}

// GetByID implements attendance.StoreDirectory.
func (r *storeRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Store, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, latitude, longitude, COALESCE(radius_meters, 0)
		FROM stores
		WHERE id = $1 AND deleted_at IS NULL
	`

	var result attendance.Store
	err := q.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&result.Name,
		&result.Latitude,
		&result.Longitude,
		&result.RadiusMeters,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Store{}, attendance.ErrStoreNotFound
		}
		return attendance.Store{}, fmt.Errorf("failed to get store with id %s: %w", id, err)
	}

	return result, nil
}
