package attendance

import (
	"fmt"
	"strings"
	"time"
)

// CheckType distinguishes the two kinds of attendance events.
type CheckType string

const (
	CheckIn  CheckType = "check_in"
	CheckOut CheckType = "check_out"
)

func (t CheckType) IsValid() bool {
	return t == CheckIn || t == CheckOut
}

// Status is the final classification of an attendance record.
type Status string

const (
	StatusNormal     Status = "normal"
	StatusLate       Status = "late"
	StatusEarlyLeave Status = "early_leave"
	StatusAnomalous  Status = "anomalous"
)

// Outcome is the terminal state of a check-in attempt.
type Outcome string

const (
	OutcomeRecorded Outcome = "recorded"
	OutcomeRejected Outcome = "rejected"
)

// DefaultRadiusMeters is applied to stores without their own geofence radius.
const DefaultRadiusMeters = 50.0

type Store struct {
	ID           string
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64 // 0 means the engine default
}

type Employee struct {
	ID      string
	Name    string
	StoreID string
}

type Location struct {
	Latitude  float64
	Longitude float64
}

// DeviceDescriptor is what the mobile browser reports about itself.
type DeviceDescriptor struct {
	UserAgent        string
	ScreenResolution string
	Timezone         string
	Language         string
	Platform         string
}

type CheckInEvent struct {
	EmployeeID string
	CheckType  CheckType
	Timestamp  time.Time
	Location   Location
	Device     DeviceDescriptor
}

type AttendanceRecord struct {
	ID              string
	EmployeeID      string
	StoreID         string
	CheckType       CheckType
	Timestamp       time.Time
	DistanceMeters  float64
	FingerprintHash string
	Status          Status
	LateMinutes     int
	EarlyMinutes    int
	Remark          string
	IsAnomalous     bool
	AnomalyReason   string
	CreatedAt       time.Time
}

// GeofenceResult is the outcome of comparing a coordinate to a store geofence.
type GeofenceResult struct {
	Valid          bool
	DistanceMeters float64 // rounded to the nearest meter
	RadiusMeters   float64
	StoreID        string
	StoreName      string
	Reason         string
}

// Classification is the time-based status of an event before device checks.
type Classification struct {
	Status  Status
	Minutes int
	Remark  string
}

// TimeOfDay is a wall-clock time within a day, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant of t on the calendar day of ref, in ref's location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
}

// WorkingHours is the process-wide shift window.
type WorkingHours struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidWorkingHours, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ParseWorkingHours parses a start/end pair and requires start < end.
func ParseWorkingHours(start, end string) (WorkingHours, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return WorkingHours{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return WorkingHours{}, err
	}
	if s.Hour*60+s.Minute >= e.Hour*60+e.Minute {
		return WorkingHours{}, fmt.Errorf("%w: %s-%s", ErrInvalidWorkingHours, s, e)
	}
	return WorkingHours{Start: s, End: e}, nil
}
