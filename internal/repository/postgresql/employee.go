package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) attendance.EmployeeDirectory {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements attendance.EmployeeDirectory.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, full_name, store_id
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	var emp attendance.Employee
	err := q.QueryRow(ctx, query, id).Scan(&emp.ID, &emp.Name, &emp.StoreID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Employee{}, attendance.ErrEmployeeNotFound
		}
		return attendance.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}
