package lateness

import "context"

// Archiver receives the buckets of a closed month for external reporting.
type Archiver interface {
	Archive(ctx context.Context, month YearMonth, stats []MonthlyLateStatistic) error
}

// TriggerRepository stores punishment triggers for the disciplinary vote subsystem.
type TriggerRepository interface {
	Create(ctx context.Context, trigger PunishmentTrigger) error
}
