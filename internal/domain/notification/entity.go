package notification

import (
	"time"
)

// NotificationType represents the type of outbound event
type NotificationType string

const (
	TypeAttendanceCheckIn  NotificationType = "attendance_check_in"
	TypeAttendanceCheckOut NotificationType = "attendance_check_out"
	TypeAttendanceRejected NotificationType = "attendance_rejected"
	TypeDeviceAnomaly      NotificationType = "device_anomaly"
	TypePunishmentTrigger  NotificationType = "punishment_trigger"
)

// AttendancePayload describes one check-in attempt for the notification
// dispatcher. It carries plain fields only; the dispatcher owns rendering.
type AttendancePayload struct {
	EmployeeID     string    `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	StoreID        string    `json:"store_id"`
	StoreName      string    `json:"store_name"`
	CheckType      string    `json:"check_type"`
	Timestamp      time.Time `json:"timestamp"`
	Outcome        string    `json:"outcome"`
	Status         string    `json:"status,omitempty"`
	Minutes        int       `json:"minutes"`
	Remark         string    `json:"remark,omitempty"`
	DistanceMeters float64   `json:"distance_meters"`
	RadiusMeters   float64   `json:"radius_meters"`
	Device         Device    `json:"device"`
	IsAnomalous    bool      `json:"is_anomalous"`
	AnomalyReason  string    `json:"anomaly_reason,omitempty"`
	Differences    []string  `json:"differences,omitempty"`
}

// Device summarizes the submitting device.
type Device struct {
	UserAgent        string `json:"user_agent"`
	ScreenResolution string `json:"screen_resolution"`
	Platform         string `json:"platform"`
	Language         string `json:"language"`
	Timezone         string `json:"timezone"`
	FingerprintHash  string `json:"fingerprint_hash,omitempty"`
}

// PunishmentPayload announces a first lateness threshold crossing in a month.
type PunishmentPayload struct {
	EmployeeID       string    `json:"employee_id"`
	EmployeeName     string    `json:"employee_name"`
	YearMonth        string    `json:"year_month"`
	Reason           string    `json:"reason"`
	TotalLateCount   int       `json:"total_late_count"`
	TotalLateMinutes int       `json:"total_late_minutes"`
	TriggeredAt      time.Time `json:"triggered_at"`
}

// Event is an outbox row consumed by external senders (e.g. Telegram).
type Event struct {
	ID         string
	Type       NotificationType
	EmployeeID string
	Data       interface{}
	CreatedAt  time.Time
}
