package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds dispatcher configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
	MaxRetries    uint          // default: 3
	RetryDelay    time.Duration // default: 500ms
}

type service struct {
	repo   notification.OutboxRepository
	hub    *sse.Hub
	config Config

	queue   chan notification.Event
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped atomic.Bool
}

// NewDispatcher creates a notification dispatcher with background workers
func NewDispatcher(repo notification.OutboxRepository, hub *sse.Hub, cfg Config) notification.Dispatcher {
	// Set defaults
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		queue:  make(chan notification.Event, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification dispatcher started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval)

	return s
}

// worker drains the queue into the outbox in batches
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.Event, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := retry.Do(
			func() error {
				return s.repo.CreateBatch(ctx, batch)
			},
			retry.Attempts(s.config.MaxRetries),
			retry.DelayType(retry.BackOffDelay),
			retry.Delay(s.config.RetryDelay),
			retry.LastErrorOnly(true),
			retry.Context(ctx),
			retry.OnRetry(func(n uint, err error) {
				slog.Warn("Retrying notification outbox write",
					"worker", id,
					"attempt", n+1,
					"events", len(batch),
					"error", err)
			}),
		)
		if err != nil {
			slog.Error("Failed to write notification outbox", "worker", id, "events", len(batch), "error", err)
		} else {
			slog.Debug("Notification outbox written", "worker", id, "events", len(batch))
		}

		// Live listeners see events even when the outbox write failed
		for _, ev := range batch {
			s.hub.Publish(ev.EmployeeID, sse.Event{
				Event: string(ev.Type),
				Data:  ev.Data,
			})
		}

		batch = batch[:0]
	}

	for {
		select {
		case ev := <-s.queue:
			batch = append(batch, ev)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued before exiting
		drain:
			for {
				select {
				case ev := <-s.queue:
					batch = append(batch, ev)
				default:
					break drain
				}
			}
			flush()
			return
		}
	}
}

// DispatchAttendance implements notification.Dispatcher.
func (s *service) DispatchAttendance(ctx context.Context, t notification.NotificationType, payload notification.AttendancePayload) error {
	return s.enqueue(ctx, notification.Event{
		ID:         uuid.NewString(),
		Type:       t,
		EmployeeID: payload.EmployeeID,
		Data:       payload,
		CreatedAt:  time.Now(),
	})
}

// DispatchPunishment implements notification.Dispatcher.
func (s *service) DispatchPunishment(ctx context.Context, payload notification.PunishmentPayload) error {
	return s.enqueue(ctx, notification.Event{
		ID:         uuid.NewString(),
		Type:       notification.TypePunishmentTrigger,
		EmployeeID: payload.EmployeeID,
		Data:       payload,
		CreatedAt:  time.Now(),
	})
}

func (s *service) enqueue(ctx context.Context, ev notification.Event) error {
	if s.stopped.Load() {
		return notification.ErrDispatcherStopped
	}

	select {
	case s.queue <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return notification.ErrQueueFull
	}
}

// Subscribe implements notification.Dispatcher.
func (s *service) Subscribe(listenerID string) (<-chan sse.Event, func()) {
	return s.hub.Subscribe(listenerID)
}

// Stop flushes pending events and stops the workers
func (s *service) Stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
	slog.Info("Notification dispatcher stopped")
}
