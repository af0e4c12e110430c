package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
)

const ResetMonthlyLateStatisticsJob = "reset_monthly_late_statistics"

type LatenessJobs struct {
	aggregator lateness.Aggregator
	clock      clock.Clock

	mu        sync.Mutex
	lastMonth lateness.YearMonth
}

func NewLatenessJobs(aggregator lateness.Aggregator, clk clock.Clock) *LatenessJobs {
	return &LatenessJobs{
		aggregator: aggregator,
		clock:      clk,
		lastMonth:  lateness.YearMonthOf(clk.Now()),
	}
}

func (j *LatenessJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(ResetMonthlyLateStatisticsJob, 1*time.Hour, j.ResetMonthlyLateStatistics)
}

// ResetMonthlyLateStatistics archives and clears the buckets once per calendar
// month change. A failed reset is retried on the next tick.
func (j *LatenessJobs) ResetMonthlyLateStatistics(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	current := lateness.YearMonthOf(j.clock.Now())
	if current == j.lastMonth {
		return nil
	}

	slog.Info("Cron: Starting monthly late statistics reset", "from", j.lastMonth, "to", current)

	summary, err := j.aggregator.ResetMonthly(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset monthly late statistics: %w", err)
	}

	j.lastMonth = current
	slog.Info("Cron: Reset monthly late statistics",
		"archived_count", summary.ArchivedCount,
		"reset_month", summary.ResetMonth)
	return nil
}
