package overtime

import (
	"fmt"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/gajihub/payroll-core-go/internal/domain/overtime"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/shopspring/decimal"
)

// Calculator computes overtime pay from the active OVERTIME_POLICY. Pure:
// day classification and rate derivation take their inputs as arguments.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Classify maps a calendar date to the policy's day-type buckets. Holidays
// win over the weekday/weekend split.
func (c *Calculator) Classify(date time.Time, isHoliday bool) policy.DayType {
	if isHoliday {
		return policy.DayTypeHoliday
	}
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return policy.DayTypeWeekend
	}
	return policy.DayTypeWeekday
}

// HourlyEquivalentRate derives the hourly rate overtime is paid from:
// hourly contracts use their rate directly, monthly contracts divide the base
// salary by the standard monthly hours, daily contracts divide the day rate
// by the standard daily hours.
func (c *Calculator) HourlyEquivalentRate(contract employee.Contract, cfg policy.PayrollConfigDoc) (decimal.Decimal, error) {
	switch contract.RateType {
	case employee.RateTypeHourly:
		if contract.HourlyRate == nil {
			return decimal.Zero, fmt.Errorf("hourly contract for employee %s has no hourly rate", contract.EmployeeID)
		}
		return *contract.HourlyRate, nil
	case employee.RateTypeMonthly:
		if contract.BaseSalary == nil {
			return decimal.Zero, fmt.Errorf("monthly contract for employee %s has no base salary", contract.EmployeeID)
		}
		if !cfg.MonthlyStandardHours.IsPositive() {
			return decimal.Zero, fmt.Errorf("payroll config has no positive monthly standard hours")
		}
		return contract.BaseSalary.Div(cfg.MonthlyStandardHours), nil
	case employee.RateTypeDaily:
		if contract.DailyRate == nil {
			return decimal.Zero, fmt.Errorf("daily contract for employee %s has no daily rate", contract.EmployeeID)
		}
		if !cfg.DailyStandardHours.IsPositive() {
			return decimal.Zero, fmt.Errorf("payroll config has no positive daily standard hours")
		}
		return contract.DailyRate.Div(cfg.DailyStandardHours), nil
	}
	return decimal.Zero, fmt.Errorf("unknown rate type %q", contract.RateType)
}

// Calculate computes the payable amount for durationMinutes under the rule
// for the request's day type. The duration cap applies to pay only; the
// stored request keeps its full duration. A disabled rule rejects the
// request rather than paying zero.
func (c *Calculator) Calculate(durationMinutes int, hourlyRate decimal.Decimal, rule policy.OvertimeRule) (decimal.Decimal, error) {
	if !rule.Enabled {
		return decimal.Zero, overtime.ErrOvertimeDayDisabled
	}

	hours := decimal.NewFromInt(int64(durationMinutes)).Div(decimal.NewFromInt(60))
	if rule.MaxHours != nil && hours.GreaterThan(*rule.MaxHours) {
		hours = *rule.MaxHours
	}

	amount := hours.Mul(hourlyRate).Mul(rule.Multiplier)
	if rule.MinimumPayment.IsPositive() && amount.LessThan(rule.MinimumPayment) {
		amount = rule.MinimumPayment
	}

	return amount, nil
}
