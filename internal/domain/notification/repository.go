package notification

import (
	"context"
)

// OutboxRepository persists events for delivery by external senders
type OutboxRepository interface {
	CreateBatch(ctx context.Context, events []Event) error
}
