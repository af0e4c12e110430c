package lateness

import (
	"time"
)

// YearMonth identifies a calendar month bucket, formatted "2006-01".
type YearMonth string

const yearMonthLayout = "2006-01"

// YearMonthOf returns the bucket key of t in t's own location.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth(t.Format(yearMonthLayout))
}

// Previous returns the month before ym.
func (ym YearMonth) Previous() YearMonth {
	t, err := time.Parse(yearMonthLayout, string(ym))
	if err != nil {
		return ""
	}
	return YearMonthOf(t.AddDate(0, -1, 0))
}

// Thresholds above which lateness escalates. Crossing means strictly greater.
type Thresholds struct {
	MaxLateCount   int
	MaxLateMinutes int
}

// DefaultThresholds escalates on the fourth late arrival or the eleventh late minute.
var DefaultThresholds = Thresholds{MaxLateCount: 3, MaxLateMinutes: 10}

// MonthlyLateStatistic accumulates one employee's lateness within one month.
// PunishmentTriggered only ever moves from false to true.
type MonthlyLateStatistic struct {
	EmployeeID          string
	YearMonth           YearMonth
	TotalLateCount      int
	TotalLateMinutes    int
	PunishmentTriggered bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// UpdateResult reports the effect of one late event on its month bucket.
type UpdateResult struct {
	PunishmentTriggered bool
	Reason              string
	Statistic           MonthlyLateStatistic
}

// PunishmentTrigger is handed to the disciplinary vote subsystem.
type PunishmentTrigger struct {
	EmployeeID  string
	YearMonth   YearMonth
	Reason      string
	Statistic   MonthlyLateStatistic
	TriggeredAt time.Time
}

// ResetSummary reports a month rollover.
type ResetSummary struct {
	ArchivedCount int
	ResetMonth    YearMonth
}
