package lateness

import "errors"

var (
	ErrStatisticNotFound = errors.New("no late statistic for this month")
	ErrArchiveFailed     = errors.New("failed to archive monthly late statistics")
)
