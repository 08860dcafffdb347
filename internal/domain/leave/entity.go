package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType entity. Policy fields are pointers: nil falls through to the
// company-wide LEAVE_POLICY defaults, a set value overrides them for this type.
// Never hard-deleted, only deactivated, so historical requests keep resolving.
type LeaveType struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	IsPaid    bool
	IsActive  bool

	MaxBalance         *decimal.Decimal // nil = unlimited pool
	AccrualRate        *decimal.Decimal // days per month
	CarryoverAllowed   *bool
	CarryoverMax       *decimal.Decimal
	ExpiresAfterMonths *int
	RequiresAttachment bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

// LeaveRequest entity. Days is computed once from the working-day rule at
// create/update time and is immutable after approval.
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string

	StartDate time.Time
	EndDate   time.Time
	Days      decimal.Decimal

	Reason        string
	AttachmentURL *string

	Status          LeaveRequestStatus
	RequestedAt     time.Time
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	LeaveTypeName *string
	EmployeeName  *string
}

// Balance is derived on every read from policy + history, never stored as
// ground truth. Available is the only number callers may act on: pool after
// accrual, carryover and expiry, minus approved usage and pending holds.
type Balance struct {
	LeaveTypeID string
	Unlimited   bool
	Pool        decimal.Decimal
	Accrued     decimal.Decimal
	Carryover   decimal.Decimal
	Expired     decimal.Decimal
	Used        decimal.Decimal
	Pending     decimal.Decimal
	Available   decimal.Decimal
	AsOf        time.Time
}

// WorkingDays counts the leave-consuming days between start and end inclusive.
// Mondays never consume leave; Tuesday through Sunday do. This is a fixed
// business rule, not policy. start after end yields zero.
func WorkingDays(start, end time.Time) int {
	if start.After(end) {
		return 0
	}
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Monday {
			days++
		}
	}
	return days
}
