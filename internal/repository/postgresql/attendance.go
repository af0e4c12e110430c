package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRepository{db: db}
}

// Create implements attendance.RecordRepository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, store_id, check_type, checked_at,
			distance_meters, fingerprint_hash, status,
			late_minutes, early_leave_minutes, remark,
			is_anomalous, anomaly_reason, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := q.Exec(ctx, query,
		rec.ID,
		rec.EmployeeID,
		rec.StoreID,
		string(rec.CheckType),
		rec.Timestamp.UTC(),
		rec.DistanceMeters,
		rec.FingerprintHash,
		string(rec.Status),
		rec.LateMinutes,
		rec.EarlyMinutes,
		rec.Remark,
		rec.IsAnomalous,
		rec.AnomalyReason,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create attendance record: %w", err)
	}

	return nil
}
