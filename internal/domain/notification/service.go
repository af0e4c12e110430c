package notification

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
)

// Dispatcher hands structured events to downstream senders
type Dispatcher interface {
	// DispatchAttendance queues an attendance payload (async processing via background workers)
	DispatchAttendance(ctx context.Context, t NotificationType, payload AttendancePayload) error

	// DispatchPunishment queues a punishment trigger announcement
	DispatchPunishment(ctx context.Context, payload PunishmentPayload) error

	// Subscribe streams dispatched events to a live listener
	Subscribe(listenerID string) (<-chan sse.Event, func())

	// Lifecycle
	Stop()
}
