package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetWorkingHours(w http.ResponseWriter, r *http.Request)
	UpdateWorkingHours(w http.ResponseWriter, r *http.Request)
	GetMyLateStatistic(w http.ResponseWriter, r *http.Request)
	GetLateStatistic(w http.ResponseWriter, r *http.Request)
	ResetLateStatistics(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	aggregator        lateness.Aggregator
	location          *time.Location
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, aggregator lateness.Aggregator, location *time.Location) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		aggregator:        aggregator,
		location:          location,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.perform(w, r, attendance.CheckIn)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.perform(w, r, attendance.CheckOut)
}

func (h *attendanceHandlerImpl) perform(w http.ResponseWriter, r *http.Request, checkType attendance.CheckType) {
	claims, ok := claimsFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req attendance.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode check-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.EmployeeID = claims.EmployeeID
	req.CheckType = checkType
	if req.Device.UserAgent == "" {
		req.Device.UserAgent = r.UserAgent()
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.PerformCheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := attendance.NewCheckInResponse(result)
	if result.Outcome == attendance.OutcomeRejected {
		response.UnprocessableWithData(w, "GEOFENCE_VIOLATION", attendance.ErrGeofenceViolation.Error(), resp)
		return
	}

	if checkType == attendance.CheckOut {
		response.Created(w, "Check out recorded", resp)
		return
	}
	response.Created(w, "Check in recorded", resp)
}

// GetWorkingHours implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetWorkingHours(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.workingHoursResponse(h.attendanceService.WorkingHours()))
}

// UpdateWorkingHours implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateWorkingHours(w http.ResponseWriter, r *http.Request) {
	var req attendance.WorkingHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	hours, err := attendance.ParseWorkingHours(req.Start, req.End)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.attendanceService.SetWorkingHours(hours)

	response.SuccessWithMessage(w, "Working hours updated", h.workingHoursResponse(hours))
}

func (h *attendanceHandlerImpl) workingHoursResponse(hours attendance.WorkingHours) attendance.WorkingHoursResponse {
	return attendance.WorkingHoursResponse{
		Start:    hours.Start.String(),
		End:      hours.End.String(),
		Timezone: h.location.String(),
	}
}

// GetMyLateStatistic implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyLateStatistic(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	h.writeStatistic(w, claims.EmployeeID)
}

// GetLateStatistic implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetLateStatistic(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}
	h.writeStatistic(w, employeeID)
}

func (h *attendanceHandlerImpl) writeStatistic(w http.ResponseWriter, employeeID string) {
	stat, ok := h.aggregator.Statistic(employeeID)
	if !ok {
		response.HandleError(w, lateness.ErrStatisticNotFound)
		return
	}
	response.Success(w, lateness.NewMonthlyLateStatisticResponse(stat))
}

// ResetLateStatistics implements AttendanceHandler.
func (h *attendanceHandlerImpl) ResetLateStatistics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.aggregator.ResetMonthly(r.Context())
	if err != nil {
		if !errors.Is(err, lateness.ErrArchiveFailed) {
			slog.Error("Unexpected reset failure", "error", err)
		}
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Monthly late statistics reset", lateness.ResetResponse{
		ArchivedCount: summary.ArchivedCount,
		ResetMonth:    string(summary.ResetMonth),
	})
}
