package geofence

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

type GeofenceValidatorImpl struct {
	stores        attendance.StoreDirectory
	defaultRadius float64
}

func NewGeofenceValidator(stores attendance.StoreDirectory, defaultRadius float64) attendance.GeofenceValidator {
	if defaultRadius <= 0 {
		defaultRadius = attendance.DefaultRadiusMeters
	}
	return &GeofenceValidatorImpl{
		stores:        stores,
		defaultRadius: defaultRadius,
	}
}

// Validate implements attendance.GeofenceValidator.
func (g *GeofenceValidatorImpl) Validate(ctx context.Context, storeID string, lat, lon float64) (attendance.GeofenceResult, error) {
	store, err := g.stores.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, attendance.ErrStoreNotFound) {
			return attendance.GeofenceResult{}, attendance.ErrStoreNotFound
		}
		return attendance.GeofenceResult{}, fmt.Errorf("failed to get store %s: %w", storeID, err)
	}

	radius := store.RadiusMeters
	if radius <= 0 {
		radius = g.defaultRadius
	}

	distance := utils.CalculateHaversineDistance(lat, lon, store.Latitude, store.Longitude)
	rounded := utils.RoundMeters(distance)

	// The unrounded distance decides; rounding is for reporting only.
	valid := distance <= radius

	result := attendance.GeofenceResult{
		Valid:          valid,
		DistanceMeters: rounded,
		RadiusMeters:   radius,
		StoreID:        store.ID,
		StoreName:      store.Name,
	}
	if valid {
		result.Reason = fmt.Sprintf("within %.0f m of %s (radius %.0f m)", rounded, store.Name, radius)
	} else {
		result.Reason = fmt.Sprintf("%.0f m from %s exceeds the allowed radius of %.0f m", rounded, store.Name, radius)
	}

	return result, nil
}
