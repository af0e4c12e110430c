package attendance

import "context"

// StoreDirectory is the read-only store reference data owned by the platform.
type StoreDirectory interface {
	GetByID(ctx context.Context, id string) (Store, error)
}

// EmployeeDirectory is the read-only employee reference data owned by the platform.
type EmployeeDirectory interface {
	GetByID(ctx context.Context, id string) (Employee, error)
}

// RecordRepository is the persistence layer that receives accepted records.
type RecordRepository interface {
	Create(ctx context.Context, record AttendanceRecord) error
}
