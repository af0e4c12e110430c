package lateness

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
)

type bucketKey struct {
	employeeID string
	month      lateness.YearMonth
}

type LateStatisticsAggregatorImpl struct {
	mu         sync.RWMutex
	buckets    map[bucketKey]*lateness.MonthlyLateStatistic
	thresholds lateness.Thresholds
	archiver   lateness.Archiver
	clock      clock.Clock
}

func NewLateStatisticsAggregator(archiver lateness.Archiver, thresholds lateness.Thresholds, clk clock.Clock) lateness.Aggregator {
	if thresholds.MaxLateCount <= 0 {
		thresholds.MaxLateCount = lateness.DefaultThresholds.MaxLateCount
	}
	if thresholds.MaxLateMinutes <= 0 {
		thresholds.MaxLateMinutes = lateness.DefaultThresholds.MaxLateMinutes
	}
	return &LateStatisticsAggregatorImpl{
		buckets:    make(map[bucketKey]*lateness.MonthlyLateStatistic),
		thresholds: thresholds,
		archiver:   archiver,
		clock:      clk,
	}
}

// UpdateMonthly implements lateness.Aggregator.
// The bucket is chosen by the event time so an event classified just before
// midnight at month end lands in the month it was classified in.
func (a *LateStatisticsAggregatorImpl) UpdateMonthly(employeeID string, lateMinutes int, at time.Time) lateness.UpdateResult {
	now := at.In(a.clock.Now().Location())
	key := bucketKey{employeeID: employeeID, month: lateness.YearMonthOf(now)}

	a.mu.Lock()
	defer a.mu.Unlock()

	if lateMinutes <= 0 {
		var snapshot lateness.MonthlyLateStatistic
		if stat, ok := a.buckets[key]; ok {
			snapshot = *stat
		}
		return lateness.UpdateResult{Statistic: snapshot}
	}

	stat, ok := a.buckets[key]
	if !ok {
		stat = &lateness.MonthlyLateStatistic{
			EmployeeID: employeeID,
			YearMonth:  key.month,
			CreatedAt:  now,
		}
		a.buckets[key] = stat
	}

	stat.TotalLateCount++
	stat.TotalLateMinutes += lateMinutes
	stat.UpdatedAt = now

	countCrossed := stat.TotalLateCount > a.thresholds.MaxLateCount
	minutesCrossed := stat.TotalLateMinutes > a.thresholds.MaxLateMinutes

	if !(countCrossed || minutesCrossed) || stat.PunishmentTriggered {
		return lateness.UpdateResult{Statistic: *stat}
	}

	stat.PunishmentTriggered = true

	var reason string
	switch {
	case countCrossed && minutesCrossed:
		reason = fmt.Sprintf("late count %d exceeds %d and late minutes %d exceed %d in %s",
			stat.TotalLateCount, a.thresholds.MaxLateCount, stat.TotalLateMinutes, a.thresholds.MaxLateMinutes, key.month)
	case countCrossed:
		reason = fmt.Sprintf("late count %d exceeds %d in %s", stat.TotalLateCount, a.thresholds.MaxLateCount, key.month)
	default:
		reason = fmt.Sprintf("late minutes %d exceed %d in %s", stat.TotalLateMinutes, a.thresholds.MaxLateMinutes, key.month)
	}

	slog.Info("Lateness threshold crossed",
		"employee_id", employeeID,
		"year_month", key.month,
		"late_count", stat.TotalLateCount,
		"late_minutes", stat.TotalLateMinutes)

	return lateness.UpdateResult{
		PunishmentTriggered: true,
		Reason:              reason,
		Statistic:           *stat,
	}
}

// ResetMonthly implements lateness.Aggregator.
func (a *LateStatisticsAggregatorImpl) ResetMonthly(ctx context.Context) (lateness.ResetSummary, error) {
	current := lateness.YearMonthOf(a.clock.Now())
	previous := current.Previous()

	a.mu.Lock()
	defer a.mu.Unlock()

	var archived []lateness.MonthlyLateStatistic
	for key, stat := range a.buckets {
		if key.month == previous {
			archived = append(archived, *stat)
		}
	}

	if len(archived) > 0 && a.archiver != nil {
		if err := a.archiver.Archive(ctx, previous, archived); err != nil {
			return lateness.ResetSummary{}, fmt.Errorf("%w: %v", lateness.ErrArchiveFailed, err)
		}
	}

	for key := range a.buckets {
		if key.month == previous || key.month == current {
			delete(a.buckets, key)
		}
	}

	slog.Info("Monthly late statistics reset",
		"archived_month", previous,
		"archived_count", len(archived),
		"reset_month", current)

	return lateness.ResetSummary{
		ArchivedCount: len(archived),
		ResetMonth:    current,
	}, nil
}

// Statistic implements lateness.Aggregator.
func (a *LateStatisticsAggregatorImpl) Statistic(employeeID string) (lateness.MonthlyLateStatistic, bool) {
	key := bucketKey{employeeID: employeeID, month: lateness.YearMonthOf(a.clock.Now())}

	a.mu.RLock()
	defer a.mu.RUnlock()

	stat, ok := a.buckets[key]
	if !ok {
		return lateness.MonthlyLateStatistic{}, false
	}
	return *stat, true
}
