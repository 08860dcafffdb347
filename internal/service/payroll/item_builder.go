package payroll

import (
	"fmt"

	"github.com/gajihub/payroll-core-go/internal/domain/attendance"
	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/gajihub/payroll-core-go/internal/domain/overtime"
	"github.com/gajihub/payroll-core-go/internal/domain/payroll"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/shopspring/decimal"
)

// ItemBuilder composes one employee's payroll line. Pure: every input comes
// in as an argument, so a rebuild with unchanged inputs yields an identical
// line.
type ItemBuilder struct{}

func NewItemBuilder() *ItemBuilder {
	return &ItemBuilder{}
}

// BuildInput is everything one payroll line derives from.
type BuildInput struct {
	Employee    employee.Employee
	Contract    employee.Contract
	Totals      attendance.Totals
	Overtime    []overtime.OvertimeRequest
	Config      policy.PayrollConfigDoc
	PeriodMonth int
}

// Build composes a fresh line with nothing pinned.
func (b *ItemBuilder) Build(in BuildInput) (payroll.PayrollItem, error) {
	return b.Rebuild(in, payroll.PayrollItem{Pinned: payroll.PinnedFields{}})
}

// Rebuild recomputes a line, preserving the values of prior's pinned fields.
// Base pay, overtime pay and the statutory deductions are always regenerated;
// everything a manual edit pinned survives untouched, and the totals are
// recomputed from the merged values.
func (b *ItemBuilder) Rebuild(in BuildInput, prior payroll.PayrollItem) (payroll.PayrollItem, error) {
	basePay, rateUsed, err := b.basePay(in.Contract, in.Totals, in.Config)
	if err != nil {
		return payroll.PayrollItem{}, err
	}

	pinned := prior.Pinned
	if pinned == nil {
		pinned = payroll.PinnedFields{}
	}

	item := payroll.PayrollItem{
		ID:           prior.ID,
		PayrollRunID: prior.PayrollRunID,
		EmployeeID:   in.Employee.ID,

		RateType: in.Contract.RateType,
		RateUsed: rateUsed,

		BasePay:     basePay,
		OvertimePay: b.overtimePay(in.Overtime),

		Allowances:     in.Contract.Allowances,
		Bonuses:        decimal.Zero,
		TransportBonus: in.Contract.TransportBonus,
		LunchBonus:     in.Contract.LunchBonus,
		THR:            b.thr(in.Contract, in.Config, in.PeriodMonth),
		Deductions:     decimal.Zero,

		AttendanceDays:   in.Totals.WorkedDays,
		TotalWorkMinutes: in.Totals.TotalWorkMinutes,
		OvertimeMinutes:  in.Totals.OvertimeMinutes,

		Pinned: pinned,
	}

	// Pinned manual edits survive the rebuild.
	if pinned.Has(payroll.FieldAllowances) {
		item.Allowances = prior.Allowances
	}
	if pinned.Has(payroll.FieldBonuses) {
		item.Bonuses = prior.Bonuses
	}
	if pinned.Has(payroll.FieldTransportBonus) {
		item.TransportBonus = prior.TransportBonus
	}
	if pinned.Has(payroll.FieldLunchBonus) {
		item.LunchBonus = prior.LunchBonus
	}
	if pinned.Has(payroll.FieldTHR) {
		item.THR = prior.THR
	}
	if pinned.Has(payroll.FieldDeductions) {
		item.Deductions = prior.Deductions
	}

	b.applyTotals(&item, in.Config)

	return item, nil
}

// RecomputeTotals refreshes gross, statutory deductions and net after a
// manual field edit, without touching base pay or overtime pay.
func (b *ItemBuilder) RecomputeTotals(item *payroll.PayrollItem, cfg policy.PayrollConfigDoc) {
	b.applyTotals(item, cfg)
}

func (b *ItemBuilder) applyTotals(item *payroll.PayrollItem, cfg policy.PayrollConfigDoc) {
	item.GrossPay = item.BasePay.
		Add(item.OvertimePay).
		Add(item.Allowances).
		Add(item.Bonuses).
		Add(item.TransportBonus).
		Add(item.LunchBonus).
		Add(item.THR)

	item.BPJSKesehatanEmployee, item.BPJSKesehatanEmployer = statutory(cfg.BPJSKesehatan, item.GrossPay)
	item.BPJSKetenagakerjaanEmployee, item.BPJSKetenagakerjaanEmployer = statutory(cfg.BPJSKetenagakerjaan, item.GrossPay)
	pph21Employee, _ := statutory(cfg.PPh21, item.GrossPay)
	item.PPh21 = pph21Employee

	item.NetPay = item.GrossPay.
		Sub(item.BPJSKesehatanEmployee).
		Sub(item.BPJSKetenagakerjaanEmployee).
		Sub(item.PPh21).
		Sub(item.Deductions)
}

// basePay computes pay for the worked period by the contract's rate type.
func (b *ItemBuilder) basePay(contract employee.Contract, totals attendance.Totals, cfg policy.PayrollConfigDoc) (decimal.Decimal, decimal.Decimal, error) {
	switch contract.RateType {
	case employee.RateTypeMonthly:
		if contract.BaseSalary == nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("monthly contract for employee %s has no base salary", contract.EmployeeID)
		}
		pay := *contract.BaseSalary
		if cfg.ProrateUnpaidAbsence && totals.AbsentDays > 0 && cfg.MonthlyWorkingDays.IsPositive() {
			daily := contract.BaseSalary.Div(cfg.MonthlyWorkingDays)
			pay = pay.Sub(daily.Mul(decimal.NewFromInt(int64(totals.AbsentDays))))
			if pay.IsNegative() {
				pay = decimal.Zero
			}
		}
		return pay.Round(2), *contract.BaseSalary, nil

	case employee.RateTypeHourly:
		if contract.HourlyRate == nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("hourly contract for employee %s has no hourly rate", contract.EmployeeID)
		}
		hours := decimal.NewFromInt(int64(totals.TotalWorkMinutes)).Div(decimal.NewFromInt(60))
		return contract.HourlyRate.Mul(hours).Round(2), *contract.HourlyRate, nil

	case employee.RateTypeDaily:
		if contract.DailyRate == nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("daily contract for employee %s has no daily rate", contract.EmployeeID)
		}
		days := decimal.NewFromInt(int64(totals.WorkedDays))
		return contract.DailyRate.Mul(days).Round(2), *contract.DailyRate, nil
	}

	return decimal.Zero, decimal.Zero, fmt.Errorf("unknown rate type %q", contract.RateType)
}

// overtimePay sums the frozen amounts of the period's approved requests.
func (b *ItemBuilder) overtimePay(requests []overtime.OvertimeRequest) decimal.Decimal {
	total := decimal.Zero
	for _, req := range requests {
		if req.Status != overtime.OvertimeRequestStatusApproved || req.CalculatedAmount == nil {
			continue
		}
		total = total.Add(*req.CalculatedAmount)
	}
	return total
}

// thr pays one month's base in the configured religious-holiday month and
// zero otherwise. Hourly and daily contracts get their monthly equivalent.
func (b *ItemBuilder) thr(contract employee.Contract, cfg policy.PayrollConfigDoc, periodMonth int) decimal.Decimal {
	if cfg.THRMonth == nil || *cfg.THRMonth != periodMonth {
		return decimal.Zero
	}

	switch contract.RateType {
	case employee.RateTypeMonthly:
		if contract.BaseSalary != nil {
			return *contract.BaseSalary
		}
	case employee.RateTypeHourly:
		if contract.HourlyRate != nil {
			return contract.HourlyRate.Mul(cfg.MonthlyStandardHours).Round(2)
		}
	case employee.RateTypeDaily:
		if contract.DailyRate != nil {
			return contract.DailyRate.Mul(cfg.MonthlyWorkingDays).Round(2)
		}
	}
	return decimal.Zero
}

// statutory applies one percentage-or-fixed deduction rule to the gross pay,
// capping the base first when the rule carries a ceiling.
func statutory(rule policy.DeductionRule, gross decimal.Decimal) (employeeShare, employerShare decimal.Decimal) {
	switch rule.Method {
	case policy.DeductionMethodFixed:
		return rule.EmployeeFixed, rule.EmployerFixed
	case policy.DeductionMethodPercentage:
		base := gross
		if rule.BaseCap != nil && base.GreaterThan(*rule.BaseCap) {
			base = *rule.BaseCap
		}
		hundred := decimal.NewFromInt(100)
		return base.Mul(rule.EmployeePercent).Div(hundred).Round(2),
			base.Mul(rule.EmployerPercent).Div(hundred).Round(2)
	}
	return decimal.Zero, decimal.Zero
}
