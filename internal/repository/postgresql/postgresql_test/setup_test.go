package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS stores (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	radius_meters DOUBLE PRECISION,
	deleted_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	store_id TEXT NOT NULL REFERENCES stores(id),
	deleted_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS attendance_records (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL,
	store_id TEXT NOT NULL,
	check_type TEXT NOT NULL,
	checked_at TIMESTAMPTZ NOT NULL,
	distance_meters DOUBLE PRECISION NOT NULL,
	fingerprint_hash TEXT NOT NULL,
	status TEXT NOT NULL,
	late_minutes INT NOT NULL DEFAULT 0,
	early_leave_minutes INT NOT NULL DEFAULT 0,
	remark TEXT NOT NULL DEFAULT '',
	is_anomalous BOOLEAN NOT NULL DEFAULT FALSE,
	anomaly_reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS late_statistic_archives (
	employee_id TEXT NOT NULL,
	year_month TEXT NOT NULL,
	total_late_count INT NOT NULL,
	total_late_minutes INT NOT NULL,
	punishment_triggered BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	archived_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (employee_id, year_month)
);
CREATE TABLE IF NOT EXISTS punishment_triggers (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL,
	year_month TEXT NOT NULL,
	reason TEXT NOT NULL,
	total_late_count INT NOT NULL,
	total_late_minutes INT NOT NULL,
	triggered_at TIMESTAMPTZ NOT NULL,
	UNIQUE (employee_id, year_month)
);
CREATE TABLE IF NOT EXISTS notification_outbox (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	employee_id TEXT NOT NULL,
	data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

var tables = []string{
	"notification_outbox",
	"punishment_triggers",
	"late_statistic_archives",
	"attendance_records",
	"employees",
	"stores",
}

// TestDatabaseSetup wraps the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}
	if err := setup.TruncateAllTables(ctx); err != nil {
		db.Close()
		t.Fatalf("%v", err)
	}
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows from the engine tables
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
