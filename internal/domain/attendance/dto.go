package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type DeviceRequest struct {
	UserAgent        string `json:"user_agent"`
	ScreenResolution string `json:"screen_resolution"`
	Timezone         string `json:"timezone"`
	Language         string `json:"language"`
	Platform         string `json:"platform"`
}

func (d DeviceRequest) ToDescriptor() DeviceDescriptor {
	return DeviceDescriptor{
		UserAgent:        d.UserAgent,
		ScreenResolution: d.ScreenResolution,
		Timezone:         d.Timezone,
		Language:         d.Language,
		Platform:         d.Platform,
	}
}

type CheckInRequest struct {
	EmployeeID string        `json:"-"`
	CheckType  CheckType     `json:"-"`
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	Device     DeviceRequest `json:"device"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !r.CheckType.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "check_type",
			Message: ErrInvalidCheckType.Error(),
		})
	}

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if validator.IsEmpty(r.Device.UserAgent) {
		errs = append(errs, validator.ValidationError{
			Field:   "device.user_agent",
			Message: "device user agent is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// CheckInResult is everything the engine produced for one event.
// Record and Trigger are nil when Outcome is rejected; Payload is always filled.
type CheckInResult struct {
	Outcome     Outcome
	Geofence    GeofenceResult
	Record      *AttendanceRecord
	Differences []string
	Trigger     *lateness.PunishmentTrigger
	Payload     notification.AttendancePayload
}

type CheckInResponse struct {
	Outcome         Outcome                    `json:"outcome"`
	RecordID        string                     `json:"record_id,omitempty"`
	EmployeeID      string                     `json:"employee_id"`
	StoreID         string                     `json:"store_id"`
	StoreName       string                     `json:"store_name"`
	CheckType       CheckType                  `json:"check_type"`
	Timestamp       string                     `json:"timestamp"`
	DistanceMeters  float64                    `json:"distance_meters"`
	RadiusMeters    float64                    `json:"radius_meters"`
	Status          Status                     `json:"status,omitempty"`
	LateMinutes     int                        `json:"late_minutes"`
	EarlyMinutes    int                        `json:"early_minutes"`
	Remark          string                     `json:"remark,omitempty"`
	FingerprintHash string                     `json:"fingerprint_hash,omitempty"`
	IsAnomalous     bool                       `json:"is_anomalous"`
	AnomalyReason   string                     `json:"anomaly_reason,omitempty"`
	Reason          string                     `json:"reason,omitempty"`
	Punishment      *PunishmentTriggerResponse `json:"punishment,omitempty"`
}

type PunishmentTriggerResponse struct {
	YearMonth        string `json:"year_month"`
	Reason           string `json:"reason"`
	TotalLateCount   int    `json:"total_late_count"`
	TotalLateMinutes int    `json:"total_late_minutes"`
}

// NewCheckInResponse flattens a CheckInResult for the HTTP layer.
func NewCheckInResponse(res CheckInResult) CheckInResponse {
	resp := CheckInResponse{
		Outcome:        res.Outcome,
		EmployeeID:     res.Payload.EmployeeID,
		StoreID:        res.Geofence.StoreID,
		StoreName:      res.Geofence.StoreName,
		CheckType:      CheckType(res.Payload.CheckType),
		Timestamp:      res.Payload.Timestamp.Format(time.RFC3339),
		DistanceMeters: res.Geofence.DistanceMeters,
		RadiusMeters:   res.Geofence.RadiusMeters,
		Reason:         res.Geofence.Reason,
	}

	if rec := res.Record; rec != nil {
		resp.RecordID = rec.ID
		resp.Status = rec.Status
		resp.LateMinutes = rec.LateMinutes
		resp.EarlyMinutes = rec.EarlyMinutes
		resp.Remark = rec.Remark
		resp.FingerprintHash = rec.FingerprintHash
		resp.IsAnomalous = rec.IsAnomalous
		resp.AnomalyReason = rec.AnomalyReason
		resp.Reason = ""
	}

	if tr := res.Trigger; tr != nil {
		resp.Punishment = &PunishmentTriggerResponse{
			YearMonth:        string(tr.YearMonth),
			Reason:           tr.Reason,
			TotalLateCount:   tr.Statistic.TotalLateCount,
			TotalLateMinutes: tr.Statistic.TotalLateMinutes,
		}
	}

	return resp
}

type WorkingHoursRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r *WorkingHoursRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidClock(r.Start) {
		errs = append(errs, validator.ValidationError{
			Field:   "start",
			Message: "start must be HH:MM",
		})
	}

	if !validator.IsValidClock(r.End) {
		errs = append(errs, validator.ValidationError{
			Field:   "end",
			Message: "end must be HH:MM",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type WorkingHoursResponse struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}
