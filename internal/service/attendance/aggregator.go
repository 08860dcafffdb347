package attendance

import (
	"github.com/gajihub/payroll-core-go/internal/domain/attendance"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
)

// Aggregator folds raw attendance records into per-employee period totals.
// Grace and rounding rules are applied once per record, before summation, so
// payroll and reports read identical numbers.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Fold aggregates one employee's records under the given attendance rules.
func (a *Aggregator) Fold(employeeID string, records []attendance.Record, rules policy.AttendanceRulesConfig) attendance.Totals {
	totals := attendance.Totals{EmployeeID: employeeID}

	for _, rec := range records {
		switch rec.Status {
		case attendance.AttendanceStatusAbsent:
			totals.AbsentDays++
			continue
		case attendance.AttendanceStatusOnLeave:
			totals.OnLeaveDays++
			continue
		}

		workMinutes := a.effectiveWorkMinutes(rec, rules)
		if rules.MinimumWorkMinutes > 0 && workMinutes < rules.MinimumWorkMinutes {
			// Too short to count as a worked day.
			totals.AbsentDays++
			continue
		}

		lateMinutes := a.effectiveLateMinutes(rec, rules)
		if lateMinutes > 0 {
			totals.LateDays++
			totals.TotalLateMinutes += lateMinutes
		} else {
			totals.PresentDays++
		}
		totals.WorkedDays++
		totals.TotalWorkMinutes += workMinutes
		if rec.OvertimeMinutes != nil {
			totals.OvertimeMinutes += *rec.OvertimeMinutes
		}
	}

	return totals
}

// FoldCompany groups a company period's records by employee and folds each
// group.
func (a *Aggregator) FoldCompany(records []attendance.Record, rules policy.AttendanceRulesConfig) map[string]attendance.Totals {
	byEmployee := make(map[string][]attendance.Record)
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = append(byEmployee[rec.EmployeeID], rec)
	}

	totals := make(map[string]attendance.Totals, len(byEmployee))
	for employeeID, recs := range byEmployee {
		totals[employeeID] = a.Fold(employeeID, recs, rules)
	}

	return totals
}

// effectiveWorkMinutes applies rounding to a record's worked duration. Missing
// durations count as zero; rounding is to the nearest interval.
func (a *Aggregator) effectiveWorkMinutes(rec attendance.Record, rules policy.AttendanceRulesConfig) int {
	minutes := 0
	if rec.WorkMinutes != nil {
		minutes = *rec.WorkMinutes
	}
	if minutes < 0 {
		minutes = 0
	}

	if rules.RoundingEnabled && rules.RoundingIntervalMinutes > 0 {
		interval := rules.RoundingIntervalMinutes
		minutes = (minutes + interval/2) / interval * interval
	}

	return minutes
}

// effectiveLateMinutes applies the grace period: lateness within the grace
// window does not count as late at all.
func (a *Aggregator) effectiveLateMinutes(rec attendance.Record, rules policy.AttendanceRulesConfig) int {
	if rec.LateMinutes == nil || *rec.LateMinutes <= 0 {
		return 0
	}
	late := *rec.LateMinutes - rules.GracePeriodMinutes
	if late < 0 {
		return 0
	}
	return late
}
