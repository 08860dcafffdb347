package payroll

import (
	"time"

	"github.com/gajihub/payroll-core-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreatePayrollRunRequest struct {
	PeriodYear  int     `json:"period_year"`
	PeriodMonth int     `json:"period_month"`
	Notes       *string `json:"notes,omitempty"`
}

func (r CreatePayrollRunRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.PeriodYear < 2000 || r.PeriodYear > 2100 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be between 2000 and 2100"})
	}
	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdatePayrollItemRequest carries the manually-edited amounts. Every non-nil
// field gets pinned: later recalculations keep it untouched.
type UpdatePayrollItemRequest struct {
	ID             string           `json:"-"`
	Allowances     *decimal.Decimal `json:"allowances,omitempty"`
	Bonuses        *decimal.Decimal `json:"bonuses,omitempty"`
	TransportBonus *decimal.Decimal `json:"transport_bonus,omitempty"`
	LunchBonus     *decimal.Decimal `json:"lunch_bonus,omitempty"`
	THR            *decimal.Decimal `json:"thr,omitempty"`
	Deductions     *decimal.Decimal `json:"deductions,omitempty"`
	Reason         string           `json:"reason"`
}

func (r UpdatePayrollItemRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}
	if r.Allowances == nil && r.Bonuses == nil && r.TransportBonus == nil &&
		r.LunchBonus == nil && r.THR == nil && r.Deductions == nil {
		errs = append(errs, validator.ValidationError{Field: "fields", Message: "at least one editable field is required"})
	}
	for field, v := range map[string]*decimal.Decimal{
		FieldAllowances:     r.Allowances,
		FieldBonuses:        r.Bonuses,
		FieldTransportBonus: r.TransportBonus,
		FieldLunchBonus:     r.LunchBonus,
		FieldTHR:            r.THR,
		FieldDeductions:     r.Deductions,
	} {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must not be negative"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollRunResponse struct {
	ID          string           `json:"id"`
	CompanyID   string           `json:"company_id"`
	PeriodYear  int              `json:"period_year"`
	PeriodMonth int              `json:"period_month"`
	Status      string           `json:"status"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
	LockedAt    *time.Time       `json:"locked_at,omitempty"`
	LockedBy    *string          `json:"locked_by,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type PayrollItemResponse struct {
	ID           string  `json:"id"`
	PayrollRunID string  `json:"payroll_run_id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	EmployeeCode *string `json:"employee_code,omitempty"`

	RateType string          `json:"rate_type"`
	RateUsed decimal.Decimal `json:"rate_used"`

	BasePay                     decimal.Decimal `json:"base_pay"`
	OvertimePay                 decimal.Decimal `json:"overtime_pay"`
	Allowances                  decimal.Decimal `json:"allowances"`
	Bonuses                     decimal.Decimal `json:"bonuses"`
	TransportBonus              decimal.Decimal `json:"transport_bonus"`
	LunchBonus                  decimal.Decimal `json:"lunch_bonus"`
	THR                         decimal.Decimal `json:"thr"`
	Deductions                  decimal.Decimal `json:"deductions"`
	BPJSKesehatanEmployee       decimal.Decimal `json:"bpjs_kesehatan_employee"`
	BPJSKesehatanEmployer       decimal.Decimal `json:"bpjs_kesehatan_employer"`
	BPJSKetenagakerjaanEmployee decimal.Decimal `json:"bpjs_ketenagakerjaan_employee"`
	BPJSKetenagakerjaanEmployer decimal.Decimal `json:"bpjs_ketenagakerjaan_employer"`
	PPh21                       decimal.Decimal `json:"pph21"`
	GrossPay                    decimal.Decimal `json:"gross_pay"`
	NetPay                      decimal.Decimal `json:"net_pay"`

	AttendanceDays   int `json:"attendance_days"`
	TotalWorkMinutes int `json:"total_work_minutes"`
	OvertimeMinutes  int `json:"overtime_minutes"`

	PinnedFields []string `json:"pinned_fields"`
}

type PayrollRunDetailResponse struct {
	Run   PayrollRunResponse    `json:"run"`
	Items []PayrollItemResponse `json:"items"`
}

type PayrollSummaryResponse struct {
	PeriodYear    int             `json:"period_year"`
	PeriodMonth   int             `json:"period_month"`
	EmployeeCount int             `json:"employee_count"`
	TotalGross    decimal.Decimal `json:"total_gross"`
	TotalNet      decimal.Decimal `json:"total_net"`
	TotalPPh21    decimal.Decimal `json:"total_pph21"`
}

func ToRunResponse(r PayrollRun) PayrollRunResponse {
	return PayrollRunResponse{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		PeriodYear:  r.PeriodYear,
		PeriodMonth: r.PeriodMonth,
		Status:      string(r.Status),
		TotalAmount: r.TotalAmount,
		LockedAt:    r.LockedAt,
		LockedBy:    r.LockedBy,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
}

func ToItemResponse(it PayrollItem) PayrollItemResponse {
	pinned := make([]string, 0, len(it.Pinned))
	for f, ok := range it.Pinned {
		if ok {
			pinned = append(pinned, f)
		}
	}
	return PayrollItemResponse{
		ID:           it.ID,
		PayrollRunID: it.PayrollRunID,
		EmployeeID:   it.EmployeeID,
		EmployeeName: it.EmployeeName,
		EmployeeCode: it.EmployeeCode,

		RateType: string(it.RateType),
		RateUsed: it.RateUsed,

		BasePay:                     it.BasePay,
		OvertimePay:                 it.OvertimePay,
		Allowances:                  it.Allowances,
		Bonuses:                     it.Bonuses,
		TransportBonus:              it.TransportBonus,
		LunchBonus:                  it.LunchBonus,
		THR:                         it.THR,
		Deductions:                  it.Deductions,
		BPJSKesehatanEmployee:       it.BPJSKesehatanEmployee,
		BPJSKesehatanEmployer:       it.BPJSKesehatanEmployer,
		BPJSKetenagakerjaanEmployee: it.BPJSKetenagakerjaanEmployee,
		BPJSKetenagakerjaanEmployer: it.BPJSKetenagakerjaanEmployer,
		PPh21:                       it.PPh21,
		GrossPay:                    it.GrossPay,
		NetPay:                      it.NetPay,

		AttendanceDays:   it.AttendanceDays,
		TotalWorkMinutes: it.TotalWorkMinutes,
		OvertimeMinutes:  it.OvertimeMinutes,

		PinnedFields: pinned,
	}
}
