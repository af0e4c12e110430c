package lateness

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type archiverStub struct {
	mu       sync.Mutex
	months   []lateness.YearMonth
	archived []lateness.MonthlyLateStatistic
	err      error
}

func (s *archiverStub) Archive(ctx context.Context, month lateness.YearMonth, stats []lateness.MonthlyLateStatistic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.months = append(s.months, month)
	s.archived = append(s.archived, stats...)
	return nil
}

func newTestAggregator(now time.Time) (lateness.Aggregator, *clock.Mock, *archiverStub) {
	clk := clock.NewMock(now)
	arch := &archiverStub{}
	return NewLateStatisticsAggregator(arch, lateness.DefaultThresholds, clk), clk, arch
}

var march = time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)

func TestUpdateMonthly_ZeroMinutesIsNoop(t *testing.T) {
	agg, clk, _ := newTestAggregator(march)

	res := agg.UpdateMonthly("emp-1", 0, clk.Now())

	assert.False(t, res.PunishmentTriggered)
	_, ok := agg.Statistic("emp-1")
	assert.False(t, ok)
}

func TestUpdateMonthly_CountThreshold(t *testing.T) {
	agg, clk, _ := newTestAggregator(march)

	for i := 1; i <= 3; i++ {
		res := agg.UpdateMonthly("emp-1", 1, clk.Now())
		assert.False(t, res.PunishmentTriggered, "call %d", i)
		assert.Equal(t, i, res.Statistic.TotalLateCount)
	}

	res := agg.UpdateMonthly("emp-1", 1, clk.Now())

	assert.True(t, res.PunishmentTriggered)
	assert.Contains(t, res.Reason, "late count 4 exceeds 3")
	assert.NotContains(t, res.Reason, "minutes")
	assert.Equal(t, 4, res.Statistic.TotalLateCount)
	assert.Equal(t, 4, res.Statistic.TotalLateMinutes)
	assert.True(t, res.Statistic.PunishmentTriggered)
	assert.Equal(t, lateness.YearMonth("2026-03"), res.Statistic.YearMonth)
}

func TestUpdateMonthly_MinutesThreshold(t *testing.T) {
	agg, clk, _ := newTestAggregator(march)

	res := agg.UpdateMonthly("emp-1", 11, clk.Now())

	assert.True(t, res.PunishmentTriggered)
	assert.Contains(t, res.Reason, "late minutes 11 exceed 10")
	assert.Equal(t, 1, res.Statistic.TotalLateCount)
	assert.Equal(t, 11, res.Statistic.TotalLateMinutes)
}

func TestUpdateMonthly_TriggersOncePerMonth(t *testing.T) {
	agg, clk, _ := newTestAggregator(march)

	require.True(t, agg.UpdateMonthly("emp-1", 11, clk.Now()).PunishmentTriggered)

	for i := 0; i < 5; i++ {
		res := agg.UpdateMonthly("emp-1", 3, clk.Now())
		assert.False(t, res.PunishmentTriggered)
		assert.True(t, res.Statistic.PunishmentTriggered)
	}

	stat, ok := agg.Statistic("emp-1")
	require.True(t, ok)
	assert.Equal(t, 6, stat.TotalLateCount)
	assert.Equal(t, 26, stat.TotalLateMinutes)

	// A new month starts a new bucket that may trigger again
	clk.Set(time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC))
	res := agg.UpdateMonthly("emp-1", 15, clk.Now())
	assert.True(t, res.PunishmentTriggered)
	assert.Equal(t, lateness.YearMonth("2026-04"), res.Statistic.YearMonth)
}

func TestUpdateMonthly_EmployeesAreIndependent(t *testing.T) {
	agg, clk, _ := newTestAggregator(march)

	agg.UpdateMonthly("emp-1", 11, clk.Now())
	res := agg.UpdateMonthly("emp-2", 5, clk.Now())

	assert.False(t, res.PunishmentTriggered)
	assert.Equal(t, 1, res.Statistic.TotalLateCount)
}

func TestUpdateMonthly_ConcurrentSingleTrigger(t *testing.T) {
	agg, clk, _ := newTestAggregator(march)

	var wg sync.WaitGroup
	var mu sync.Mutex
	triggered := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if agg.UpdateMonthly("emp-1", 1, clk.Now()).PunishmentTriggered {
				mu.Lock()
				triggered++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, triggered)
	stat, _ := agg.Statistic("emp-1")
	assert.Equal(t, 50, stat.TotalLateCount)
}

func TestResetMonthly(t *testing.T) {
	agg, clk, arch := newTestAggregator(time.Date(2026, 2, 20, 9, 10, 0, 0, time.UTC))

	agg.UpdateMonthly("emp-1", 5, clk.Now())
	agg.UpdateMonthly("emp-2", 12, clk.Now())
	agg.UpdateMonthly("emp-3", 2, clk.Now())

	clk.Set(time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC))
	agg.UpdateMonthly("emp-1", 4, clk.Now())

	summary, err := agg.ResetMonthly(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.ArchivedCount)
	assert.Equal(t, lateness.YearMonth("2026-03"), summary.ResetMonth)
	assert.Equal(t, []lateness.YearMonth{"2026-02"}, arch.months)
	assert.Len(t, arch.archived, 3)

	_, ok := agg.Statistic("emp-1")
	assert.False(t, ok, "current month bucket should be cleared")

	res := agg.UpdateMonthly("emp-1", 1, clk.Now())
	assert.Equal(t, 1, res.Statistic.TotalLateCount)
}

func TestResetMonthly_ArchiveFailureKeepsBuckets(t *testing.T) {
	agg, clk, arch := newTestAggregator(time.Date(2026, 2, 20, 9, 10, 0, 0, time.UTC))
	agg.UpdateMonthly("emp-1", 5, clk.Now())
	arch.err = errors.New("database unavailable")

	clk.Set(time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC))
	_, err := agg.ResetMonthly(context.Background())

	assert.ErrorIs(t, err, lateness.ErrArchiveFailed)

	arch.err = nil
	summary, err := agg.ResetMonthly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ArchivedCount)
}

func TestYearMonthPrevious(t *testing.T) {
	assert.Equal(t, lateness.YearMonth("2025-12"), lateness.YearMonth("2026-01").Previous())
	assert.Equal(t, lateness.YearMonth("2026-02"), lateness.YearMonth("2026-03").Previous())
}

func TestUpdateMonthly_BucketFollowsEventTime(t *testing.T) {
	agg, clk, _ := newTestAggregator(time.Date(2026, 3, 31, 23, 59, 30, 0, time.UTC))
	eventAt := clk.Now()

	// the clock has rolled into April by the time the statistic is updated
	clk.Set(time.Date(2026, 4, 1, 0, 0, 1, 0, time.UTC))
	res := agg.UpdateMonthly("emp-1", 3, eventAt)

	assert.Equal(t, lateness.YearMonth("2026-03"), res.Statistic.YearMonth)
	_, ok := agg.Statistic("emp-1")
	assert.False(t, ok, "April bucket must stay empty")
}
