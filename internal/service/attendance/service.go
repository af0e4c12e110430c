package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/fingerprint"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	employees    attendance.EmployeeDirectory
	geofence     attendance.GeofenceValidator
	fingerprints fingerprint.Analyzer
	classifier   attendance.StatusClassifier
	lateness     lateness.Aggregator
	records      attendance.RecordRepository
	triggers     lateness.TriggerRepository
	dispatcher   notification.Dispatcher
	clock        clock.Clock
	locks        *employeeLocks

	hoursMu sync.RWMutex
	hours   attendance.WorkingHours
}

// NewAttendanceService wires the rule engine. triggers and dispatcher may be nil.
func NewAttendanceService(
	employees attendance.EmployeeDirectory,
	geofence attendance.GeofenceValidator,
	fingerprints fingerprint.Analyzer,
	classifier attendance.StatusClassifier,
	aggregator lateness.Aggregator,
	records attendance.RecordRepository,
	triggers lateness.TriggerRepository,
	dispatcher notification.Dispatcher,
	clk clock.Clock,
	hours attendance.WorkingHours,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		employees:    employees,
		geofence:     geofence,
		fingerprints: fingerprints,
		classifier:   classifier,
		lateness:     aggregator,
		records:      records,
		triggers:     triggers,
		dispatcher:   dispatcher,
		clock:        clk,
		locks:        newEmployeeLocks(),
		hours:        hours,
	}
}

// WorkingHours implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) WorkingHours() attendance.WorkingHours {
	s.hoursMu.RLock()
	defer s.hoursMu.RUnlock()
	return s.hours
}

// SetWorkingHours implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SetWorkingHours(hours attendance.WorkingHours) {
	s.hoursMu.Lock()
	defer s.hoursMu.Unlock()
	s.hours = hours
	slog.Info("Working hours updated", "start", hours.Start.String(), "end", hours.End.String())
}

// PerformCheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PerformCheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.CheckInResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckInResult{}, err
	}
	now := s.clock.Now()

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, attendance.ErrEmployeeNotFound) {
			return attendance.CheckInResult{}, attendance.ErrEmployeeNotFound
		}
		return attendance.CheckInResult{}, fmt.Errorf("%w: failed to get employee: %w", attendance.ErrSystem, err)
	}

	geo, err := s.geofence.Validate(ctx, emp.StoreID, req.Latitude, req.Longitude)
	if err != nil {
		if errors.Is(err, attendance.ErrStoreNotFound) {
			return attendance.CheckInResult{}, attendance.ErrStoreNotFound
		}
		return attendance.CheckInResult{}, fmt.Errorf("%w: failed to validate geofence: %w", attendance.ErrSystem, err)
	}

	descriptor := req.Device.ToDescriptor()
	payload := notification.AttendancePayload{
		EmployeeID:     emp.ID,
		EmployeeName:   emp.Name,
		StoreID:        geo.StoreID,
		StoreName:      geo.StoreName,
		CheckType:      string(req.CheckType),
		Timestamp:      now,
		DistanceMeters: geo.DistanceMeters,
		RadiusMeters:   geo.RadiusMeters,
		Device: notification.Device{
			UserAgent:        descriptor.UserAgent,
			ScreenResolution: descriptor.ScreenResolution,
			Platform:         descriptor.Platform,
			Language:         descriptor.Language,
			Timezone:         descriptor.Timezone,
		},
	}

	// Geofence gate: nothing below runs for an out-of-bounds event.
	if !geo.Valid {
		payload.Outcome = string(attendance.OutcomeRejected)
		payload.Remark = geo.Reason

		slog.Warn("Attendance rejected by geofence",
			"employee_id", emp.ID,
			"store_id", geo.StoreID,
			"distance_meters", geo.DistanceMeters,
			"radius_meters", geo.RadiusMeters)

		s.dispatchAttendance(ctx, notification.TypeAttendanceRejected, payload)

		return attendance.CheckInResult{
			Outcome:  attendance.OutcomeRejected,
			Geofence: geo,
			Payload:  payload,
		}, nil
	}

	fp, err := s.fingerprints.Generate(descriptor, now)
	if err != nil {
		return attendance.CheckInResult{}, fmt.Errorf("%w: %w", attendance.ErrSystem, err)
	}

	result, err := s.commit(ctx, emp, req.CheckType, now, geo, fp)
	if err != nil {
		return attendance.CheckInResult{}, err
	}

	rec := result.Record
	payload.Outcome = string(attendance.OutcomeRecorded)
	payload.Status = string(rec.Status)
	payload.Minutes = rec.LateMinutes + rec.EarlyMinutes
	payload.Remark = rec.Remark
	payload.IsAnomalous = rec.IsAnomalous
	payload.AnomalyReason = rec.AnomalyReason
	payload.Differences = result.Differences
	payload.Device.FingerprintHash = fp.Hash
	result.Payload = payload

	notifType := notification.TypeAttendanceCheckIn
	if req.CheckType == attendance.CheckOut {
		notifType = notification.TypeAttendanceCheckOut
	}
	if rec.IsAnomalous {
		notifType = notification.TypeDeviceAnomaly
	}
	s.dispatchAttendance(ctx, notifType, payload)

	if tr := result.Trigger; tr != nil && s.dispatcher != nil {
		if err := s.dispatcher.DispatchPunishment(ctx, notification.PunishmentPayload{
			EmployeeID:       emp.ID,
			EmployeeName:     emp.Name,
			YearMonth:        string(tr.YearMonth),
			Reason:           tr.Reason,
			TotalLateCount:   tr.Statistic.TotalLateCount,
			TotalLateMinutes: tr.Statistic.TotalLateMinutes,
			TriggeredAt:      tr.TriggeredAt,
		}); err != nil {
			slog.Error("Failed to dispatch punishment trigger", "employee_id", emp.ID, "error", err)
		}
	}

	return result, nil
}

// commit runs the stateful steps under the employee's lock. Every fallible
// step happens before the first mutation, so a failure leaves no trace.
func (s *AttendanceServiceImpl) commit(
	ctx context.Context,
	emp attendance.Employee,
	checkType attendance.CheckType,
	now time.Time,
	geo attendance.GeofenceResult,
	fp fingerprint.Fingerprint,
) (attendance.CheckInResult, error) {
	unlock := s.locks.Lock(emp.ID)
	defer unlock()

	anomaly := s.fingerprints.DetectAnomaly(emp.ID, fp)
	cls := s.classifier.Classify(now, checkType, s.WorkingHours())

	rec := attendance.AttendanceRecord{
		ID:              uuid.NewString(),
		EmployeeID:      emp.ID,
		StoreID:         geo.StoreID,
		CheckType:       checkType,
		Timestamp:       now,
		DistanceMeters:  geo.DistanceMeters,
		FingerprintHash: fp.Hash,
		Status:          cls.Status,
		Remark:          cls.Remark,
		IsAnomalous:     anomaly.IsAnomalous,
		CreatedAt:       now,
	}
	if checkType == attendance.CheckIn {
		rec.LateMinutes = cls.Minutes
	} else {
		rec.EarlyMinutes = cls.Minutes
	}
	if anomaly.IsAnomalous {
		// Minutes stay on the record for reporting.
		rec.Status = attendance.StatusAnomalous
		rec.AnomalyReason = anomaly.Reason
	}

	if err := s.records.Create(ctx, rec); err != nil {
		return attendance.CheckInResult{}, fmt.Errorf("%w: failed to persist attendance record: %w", attendance.ErrSystem, err)
	}

	s.fingerprints.Record(emp.ID, fp)

	result := attendance.CheckInResult{
		Outcome:     attendance.OutcomeRecorded,
		Geofence:    geo,
		Record:      &rec,
		Differences: anomaly.Differences,
	}

	if checkType == attendance.CheckIn && cls.Minutes > 0 {
		upd := s.lateness.UpdateMonthly(emp.ID, cls.Minutes, now)
		if upd.PunishmentTriggered {
			trigger := lateness.PunishmentTrigger{
				EmployeeID:  emp.ID,
				YearMonth:   upd.Statistic.YearMonth,
				Reason:      upd.Reason,
				Statistic:   upd.Statistic,
				TriggeredAt: now,
			}
			result.Trigger = &trigger

			if s.triggers != nil {
				if err := s.triggers.Create(ctx, trigger); err != nil {
					slog.Error("Failed to store punishment trigger",
						"employee_id", emp.ID,
						"year_month", trigger.YearMonth,
						"error", err)
				}
			}
		}
	}

	slog.Info("Attendance recorded",
		"employee_id", emp.ID,
		"record_id", rec.ID,
		"check_type", checkType,
		"status", rec.Status,
		"distance_meters", rec.DistanceMeters,
		"anomalous", rec.IsAnomalous)

	return result, nil
}

func (s *AttendanceServiceImpl) dispatchAttendance(ctx context.Context, t notification.NotificationType, payload notification.AttendancePayload) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.DispatchAttendance(ctx, t, payload); err != nil {
		slog.Error("Failed to dispatch attendance notification",
			"employee_id", payload.EmployeeID,
			"type", t,
			"error", err)
	}
}
