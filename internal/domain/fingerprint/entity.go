package fingerprint

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// HistorySize is how many fingerprints are retained per employee.
const HistorySize = 10

// MaxAttributeChanges is the number of differing attributes still treated as the same device.
const MaxAttributeChanges = 2

// Fingerprint is one captured device signature. Hash covers the snapshot and
// the capture time, so it is unique per capture rather than per device.
type Fingerprint struct {
	Hash      string
	Snapshot  attendance.DeviceDescriptor
	CreatedAt time.Time
}

// Anomaly is the result of comparing a fingerprint to an employee's history.
type Anomaly struct {
	IsAnomalous bool
	Reason      string
	Differences []string
}

// Attribute names used in Anomaly.Differences.
const (
	AttrUserAgent        = "user_agent"
	AttrScreenResolution = "screen_resolution"
	AttrTimezone         = "timezone"
	AttrLanguage         = "language"
	AttrPlatform         = "platform"
)
