package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type lateStatisticArchiveRepository struct {
	db *database.DB
}

func NewLateStatisticArchiveRepository(db *database.DB) lateness.Archiver {
	return &lateStatisticArchiveRepository{db: db}
}

// Archive implements lateness.Archiver. Re-archiving a month overwrites its rows.
func (r *lateStatisticArchiveRepository) Archive(ctx context.Context, month lateness.YearMonth, stats []lateness.MonthlyLateStatistic) error {
	if len(stats) == 0 {
		return nil
	}

	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		q := GetQuerier(ContextWithTx(ctx, tx), r.db)

		if _, err := q.Exec(ctx, `DELETE FROM late_statistic_archives WHERE year_month = $1`, string(month)); err != nil {
			return fmt.Errorf("failed to clear archive for %s: %w", month, err)
		}

		query := `
			INSERT INTO late_statistic_archives (
				employee_id, year_month, total_late_count, total_late_minutes,
				punishment_triggered, created_at, updated_at, archived_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		`

		batch := &pgx.Batch{}
		for _, s := range stats {
			batch.Queue(query,
				s.EmployeeID,
				string(month),
				s.TotalLateCount,
				s.TotalLateMinutes,
				s.PunishmentTriggered,
				s.CreatedAt.UTC(),
				s.UpdatedAt.UTC(),
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to archive late statistics for %s: %w", month, err)
		}
		return nil
	})
}

type punishmentTriggerRepository struct {
	db *database.DB
}

func NewPunishmentTriggerRepository(db *database.DB) lateness.TriggerRepository {
	return &punishmentTriggerRepository{db: db}
}

// Create implements lateness.TriggerRepository. At most one trigger exists per employee and month.
func (r *punishmentTriggerRepository) Create(ctx context.Context, t lateness.PunishmentTrigger) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO punishment_triggers (
			id, employee_id, year_month, reason,
			total_late_count, total_late_minutes, triggered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, year_month) DO NOTHING
	`

	_, err := q.Exec(ctx, query,
		uuid.NewString(),
		t.EmployeeID,
		string(t.YearMonth),
		t.Reason,
		t.Statistic.TotalLateCount,
		t.Statistic.TotalLateMinutes,
		t.TriggeredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create punishment trigger: %w", err)
	}

	return nil
}
