package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStoreAndEmployee(t *testing.T, s *TestDatabaseSetup) {
	ctx := context.Background()
	_, err := s.DB.Exec(ctx, `
		INSERT INTO stores (id, name, latitude, longitude, radius_meters)
		VALUES ('store-1', 'Taipei 101', 25.0330, 121.5654, NULL)
	`)
	require.NoError(t, err)
	_, err = s.DB.Exec(ctx, `
		INSERT INTO employees (id, full_name, store_id)
		VALUES ('emp-1', 'Lin', 'store-1')
	`)
	require.NoError(t, err)
}

func TestStoreRepository_GetByID(t *testing.T) {
	s := NewTestDatabase(t)
	seedStoreAndEmployee(t, s)
	repo := postgresql.NewStoreRepository(s.DB)
	ctx := context.Background()

	store, err := repo.GetByID(ctx, "store-1")
	require.NoError(t, err)
	assert.Equal(t, "Taipei 101", store.Name)
	assert.InDelta(t, 25.0330, store.Latitude, 1e-9)
	assert.Zero(t, store.RadiusMeters)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, attendance.ErrStoreNotFound)
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	s := NewTestDatabase(t)
	seedStoreAndEmployee(t, s)
	repo := postgresql.NewEmployeeRepository(s.DB)
	ctx := context.Background()

	emp, err := repo.GetByID(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "store-1", emp.StoreID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

func TestAttendanceRepository_Create(t *testing.T) {
	s := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(s.DB)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	rec := attendance.AttendanceRecord{
		ID:              uuid.NewString(),
		EmployeeID:      "emp-1",
		StoreID:         "store-1",
		CheckType:       attendance.CheckIn,
		Timestamp:       now,
		DistanceMeters:  12,
		FingerprintHash: "abc",
		Status:          attendance.StatusLate,
		LateMinutes:     5,
		Remark:          "late 5 minutes",
		CreatedAt:       now,
	}
	require.NoError(t, repo.Create(ctx, rec))

	var status string
	var late int
	err := s.DB.QueryRow(ctx, `SELECT status, late_minutes FROM attendance_records WHERE id = $1`, rec.ID).Scan(&status, &late)
	require.NoError(t, err)
	assert.Equal(t, "late", status)
	assert.Equal(t, 5, late)

	assert.Error(t, repo.Create(ctx, rec), "duplicate id must fail")
}

func TestLateStatisticArchiveRepository_ArchiveReplacesMonth(t *testing.T) {
	s := NewTestDatabase(t)
	repo := postgresql.NewLateStatisticArchiveRepository(s.DB)
	ctx := context.Background()
	now := time.Now()

	stats := []lateness.MonthlyLateStatistic{
		{EmployeeID: "emp-1", YearMonth: "2024-01", TotalLateCount: 4, TotalLateMinutes: 4, PunishmentTriggered: true, CreatedAt: now, UpdatedAt: now},
		{EmployeeID: "emp-2", YearMonth: "2024-01", TotalLateCount: 1, TotalLateMinutes: 3, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, repo.Archive(ctx, "2024-01", stats))
	require.NoError(t, repo.Archive(ctx, "2024-01", stats[:1]))

	var count int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM late_statistic_archives WHERE year_month = '2024-01'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.NoError(t, repo.Archive(ctx, "2024-02", nil))
}

func TestPunishmentTriggerRepository_CreateOncePerMonth(t *testing.T) {
	s := NewTestDatabase(t)
	repo := postgresql.NewPunishmentTriggerRepository(s.DB)
	ctx := context.Background()

	trigger := lateness.PunishmentTrigger{
		EmployeeID:  "emp-1",
		YearMonth:   "2024-01",
		Reason:      "late count 4 exceeds 3 in 2024-01",
		Statistic:   lateness.MonthlyLateStatistic{TotalLateCount: 4, TotalLateMinutes: 4},
		TriggeredAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, trigger))
	require.NoError(t, repo.Create(ctx, trigger))

	var count int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM punishment_triggers WHERE employee_id = 'emp-1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotificationOutboxRepository_CreateBatch(t *testing.T) {
	s := NewTestDatabase(t)
	repo := postgresql.NewNotificationOutboxRepository(s.DB)
	ctx := context.Background()

	events := []notification.Event{
		{ID: uuid.NewString(), Type: notification.TypeAttendanceCheckIn, EmployeeID: "emp-1", Data: map[string]string{"status": "normal"}, CreatedAt: time.Now()},
		{Type: notification.TypePunishmentTrigger, EmployeeID: "emp-1", Data: map[string]int{"count": 4}, CreatedAt: time.Now()},
	}
	require.NoError(t, repo.CreateBatch(ctx, events))
	// retried batch with the same ids is ignored
	require.NoError(t, repo.CreateBatch(ctx, events[:1]))

	var count int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM notification_outbox`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
