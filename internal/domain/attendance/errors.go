package attendance

import "errors"

// Attendance domain errors
var (
	// Reference data errors
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrStoreNotFound    = errors.New("store not found")

	// Business rejection, reported in CheckInResult rather than returned
	ErrGeofenceViolation = errors.New("you are outside the allowed radius")

	// Internal faults during hashing, arithmetic or persistence
	ErrSystem = errors.New("attendance engine failure")

	// Request errors
	ErrInvalidCheckType    = errors.New("check type must be check_in or check_out")
	ErrInvalidWorkingHours = errors.New("working hours must be HH:MM with start before end")
)
