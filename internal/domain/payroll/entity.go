package payroll

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft      RunStatus = "draft"
	RunStatusProcessing RunStatus = "processing"
	RunStatusLocked     RunStatus = "locked"
	RunStatusPaid       RunStatus = "paid"
)

// validTransitions is the closed transition table for payroll runs. Processing
// is a transient state entered while items are rebuilt; a run never returns to
// draft once locked.
var validTransitions = map[RunStatus][]RunStatus{
	RunStatusDraft:      {RunStatusProcessing, RunStatusLocked},
	RunStatusProcessing: {RunStatusDraft, RunStatusLocked},
	RunStatusLocked:     {RunStatusPaid},
	RunStatusPaid:       {},
}

func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether the run's items may still change.
func (s RunStatus) Editable() bool {
	return s == RunStatusDraft || s == RunStatusProcessing
}

// PayrollRun entity. One per (company, year, month).
type PayrollRun struct {
	ID          string
	CompanyID   string
	PeriodYear  int
	PeriodMonth int
	Status      RunStatus
	TotalAmount *decimal.Decimal
	LockedAt    *time.Time
	LockedBy    *string
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PeriodStart returns the first day of the run's period in loc.
func (r PayrollRun) PeriodStart(loc *time.Location) time.Time {
	return time.Date(r.PeriodYear, time.Month(r.PeriodMonth), 1, 0, 0, 0, 0, loc)
}

// PeriodEnd returns the last day of the run's period in loc.
func (r PayrollRun) PeriodEnd(loc *time.Location) time.Time {
	return r.PeriodStart(loc).AddDate(0, 1, -1)
}

// Pinnable payroll item fields. Only these may be manually edited; everything
// else is always regenerated on recalculation.
const (
	FieldAllowances     = "allowances"
	FieldBonuses        = "bonuses"
	FieldTransportBonus = "transport_bonus"
	FieldLunchBonus     = "lunch_bonus"
	FieldTHR            = "thr"
	FieldDeductions     = "deductions"
)

// PinnedFields is the explicit set of manually-overridden fields on an item.
// An explicit set, not value sentinels: a legitimate zero and "never touched"
// must stay distinguishable across recalculations.
type PinnedFields map[string]bool

func (p PinnedFields) Has(field string) bool { return p[field] }

func (p PinnedFields) Pin(fields ...string) PinnedFields {
	out := PinnedFields{}
	for f := range p {
		out[f] = true
	}
	for _, f := range fields {
		out[f] = true
	}
	return out
}

// Value implements driver.Valuer for database storage
func (p PinnedFields) Value() (driver.Value, error) {
	if len(p) == 0 {
		return []byte("[]"), nil
	}
	fields := make([]string, 0, len(p))
	for f, pinned := range p {
		if pinned {
			fields = append(fields, f)
		}
	}
	return json.Marshal(fields)
}

// Scan implements sql.Scanner for database retrieval
func (p *PinnedFields) Scan(value interface{}) error {
	*p = PinnedFields{}
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan pinned fields: invalid type")
	}
	var fields []string
	if err := json.Unmarshal(bytes, &fields); err != nil {
		return err
	}
	for _, f := range fields {
		(*p)[f] = true
	}
	return nil
}

// PayrollItem entity. One per (run, employee); owned by its run and deleted
// with it. Carries the employment snapshot and attendance breakdown used to
// compute it so the line stays auditable after contracts change.
type PayrollItem struct {
	ID           string
	PayrollRunID string
	EmployeeID   string

	// Employment snapshot at computation time
	RateType employee.RateType
	RateUsed decimal.Decimal

	// Computed amounts
	BasePay                     decimal.Decimal
	OvertimePay                 decimal.Decimal
	Allowances                  decimal.Decimal
	Bonuses                     decimal.Decimal
	TransportBonus              decimal.Decimal
	LunchBonus                  decimal.Decimal
	THR                         decimal.Decimal
	Deductions                  decimal.Decimal
	BPJSKesehatanEmployee       decimal.Decimal
	BPJSKesehatanEmployer       decimal.Decimal
	BPJSKetenagakerjaanEmployee decimal.Decimal
	BPJSKetenagakerjaanEmployer decimal.Decimal
	PPh21                       decimal.Decimal
	GrossPay                    decimal.Decimal
	NetPay                      decimal.Decimal

	// Attendance breakdown snapshot
	AttendanceDays   int
	TotalWorkMinutes int
	OvertimeMinutes  int

	Pinned PinnedFields

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}
