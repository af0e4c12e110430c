package classifier

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

type StatusClassifierImpl struct {
	loc *time.Location
}

// NewStatusClassifier interprets working hours in loc (UTC when nil).
func NewStatusClassifier(loc *time.Location) attendance.StatusClassifier {
	if loc == nil {
		loc = time.UTC
	}
	return &StatusClassifierImpl{loc: loc}
}

// Classify implements attendance.StatusClassifier.
func (c *StatusClassifierImpl) Classify(checkTime time.Time, checkType attendance.CheckType, hours attendance.WorkingHours) attendance.Classification {
	local := checkTime.In(c.loc)

	switch checkType {
	case attendance.CheckIn:
		start := hours.Start.On(local)
		if local.After(start) {
			minutes := roundMinutes(local.Sub(start))
			return attendance.Classification{
				Status:  attendance.StatusLate,
				Minutes: minutes,
				Remark:  fmt.Sprintf("late %d minutes", minutes),
			}
		}
	case attendance.CheckOut:
		end := hours.End.On(local)
		if local.Before(end) {
			minutes := roundMinutes(end.Sub(local))
			return attendance.Classification{
				Status:  attendance.StatusEarlyLeave,
				Minutes: minutes,
				Remark:  fmt.Sprintf("left early %d minutes", minutes),
			}
		}
	}

	return attendance.Classification{
		Status:  attendance.StatusNormal,
		Minutes: 0,
		Remark:  "on time",
	}
}

// roundMinutes rounds to whole minutes; a late or early event is never 0 minutes.
func roundMinutes(d time.Duration) int {
	m := int(math.Round(d.Minutes()))
	if m < 1 {
		return 1
	}
	return m
}
