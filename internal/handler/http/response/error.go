package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, attendance.ErrStoreNotFound):
		NotFound(w, "Store not found")
	case errors.Is(err, attendance.ErrInvalidCheckType):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrInvalidWorkingHours):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrSystem):
		slog.Error("Attendance engine failure", "error", err)
		InternalServerError(w, "Attendance could not be recorded, please retry")

	// Lateness domain errors
	case errors.Is(err, lateness.ErrStatisticNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, lateness.ErrArchiveFailed):
		slog.Error("Late statistic archive failed", "error", err)
		ServiceUnavailable(w, "Archive unavailable, statistics were kept")

	// Notification domain errors
	case errors.Is(err, notification.ErrQueueFull), errors.Is(err, notification.ErrDispatcherStopped):
		ServiceUnavailable(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
