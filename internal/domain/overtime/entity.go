package overtime

import (
	"time"

	"github.com/shopspring/decimal"
)

type OvertimeRequestStatus string

const (
	OvertimeRequestStatusPending  OvertimeRequestStatus = "pending"
	OvertimeRequestStatusApproved OvertimeRequestStatus = "approved"
	OvertimeRequestStatusRejected OvertimeRequestStatus = "rejected"
)

// OvertimeRequest entity. At most one non-rejected request per (employee, date).
// CalculatedAmount is set once at approval with the policy active at that
// moment and never recomputed afterwards: it is a frozen audit fact.
type OvertimeRequest struct {
	ID         string
	EmployeeID string
	CompanyID  string

	Date            time.Time
	DurationMinutes int
	Reason          string
	Notes           *string

	Status           OvertimeRequestStatus
	CalculatedAmount *decimal.Decimal
	ApprovedBy       *string
	ApprovedAt       *time.Time
	RejectionReason  *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
}
