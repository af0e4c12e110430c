package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type notificationOutboxRepository struct {
	db *database.DB
}

// NewNotificationOutboxRepository creates a new notification outbox repository
func NewNotificationOutboxRepository(db *database.DB) notification.OutboxRepository {
	return &notificationOutboxRepository{db: db}
}

// CreateBatch inserts events in a single statement
func (r *notificationOutboxRepository) CreateBatch(ctx context.Context, events []notification.Event) error {
	if len(events) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	// Build batch insert query
	valueStrings := make([]string, 0, len(events))
	valueArgs := make([]interface{}, 0, len(events)*5)

	for i, ev := range events {
		id := ev.ID
		if id == "" {
			id = uuid.New().String()
		}

		dataJSON, err := json.Marshal(ev.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}

		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		valueArgs = append(valueArgs,
			id,
			string(ev.Type),
			ev.EmployeeID,
			dataJSON,
			ev.CreatedAt.UTC(),
		)
	}

	// ON CONFLICT keeps retried batches idempotent
	query := fmt.Sprintf(`
		INSERT INTO notification_outbox (id, type, employee_id, data, created_at)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert notification outbox batch: %w", err)
	}

	return nil
}
