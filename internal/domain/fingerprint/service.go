package fingerprint

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// Analyzer derives device fingerprints and flags unfamiliar devices.
type Analyzer interface {
	Generate(descriptor attendance.DeviceDescriptor, capturedAt time.Time) (Fingerprint, error)
	DetectAnomaly(employeeID string, current Fingerprint) Anomaly
	Record(employeeID string, fp Fingerprint)
	History(employeeID string) []Fingerprint
}
