package lateness

import (
	"context"
	"time"
)

// Aggregator tracks monthly lateness and decides escalation.
type Aggregator interface {
	// UpdateMonthly adds one late event to the bucket of the month containing at
	UpdateMonthly(employeeID string, lateMinutes int, at time.Time) UpdateResult

	// ResetMonthly archives last month's buckets and clears the current month
	ResetMonthly(ctx context.Context) (ResetSummary, error)

	// Statistic returns the employee's current month bucket, if any
	Statistic(employeeID string) (MonthlyLateStatistic, bool)
}
