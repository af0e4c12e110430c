package attendance

import (
	"context"
	"time"
)

// AttendanceService defines the check-in rule engine
type AttendanceService interface {
	// PerformCheckIn runs one check-in or check-out event end-to-end
	PerformCheckIn(ctx context.Context, req CheckInRequest) (CheckInResult, error)

	// WorkingHours returns the shift window currently in force
	WorkingHours() WorkingHours

	// SetWorkingHours replaces the shift window for subsequent events
	SetWorkingHours(hours WorkingHours)
}

// GeofenceValidator decides whether a coordinate is inside a store's geofence
type GeofenceValidator interface {
	Validate(ctx context.Context, storeID string, lat, lon float64) (GeofenceResult, error)
}

// StatusClassifier compares an event time against working hours
type StatusClassifier interface {
	Classify(checkTime time.Time, checkType CheckType, hours WorkingHours) Classification
}
