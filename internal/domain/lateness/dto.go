package lateness

import "time"

type MonthlyLateStatisticResponse struct {
	EmployeeID          string `json:"employee_id"`
	YearMonth           string `json:"year_month"`
	TotalLateCount      int    `json:"total_late_count"`
	TotalLateMinutes    int    `json:"total_late_minutes"`
	PunishmentTriggered bool   `json:"punishment_triggered"`
	UpdatedAt           string `json:"updated_at"`
}

func NewMonthlyLateStatisticResponse(s MonthlyLateStatistic) MonthlyLateStatisticResponse {
	return MonthlyLateStatisticResponse{
		EmployeeID:          s.EmployeeID,
		YearMonth:           string(s.YearMonth),
		TotalLateCount:      s.TotalLateCount,
		TotalLateMinutes:    s.TotalLateMinutes,
		PunishmentTriggered: s.PunishmentTriggered,
		UpdatedAt:           s.UpdatedAt.Format(time.RFC3339),
	}
}

type ResetResponse struct {
	ArchivedCount int    `json:"archived_count"`
	ResetMonth    string `json:"reset_month"`
}
