package overtime

import (
	"time"

	"github.com/gajihub/payroll-core-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateOvertimeRequestRequest struct {
	EmployeeID      string  `json:"employee_id"`
	Date            string  `json:"date"`
	DurationMinutes int     `json:"duration_minutes"`
	Reason          string  `json:"reason"`
	Notes           *string `json:"notes,omitempty"`
}

func (r CreateOvertimeRequestRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidDate(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.DurationMinutes <= 0 {
		errs = append(errs, validator.ValidationError{Field: "duration_minutes", Message: "must be positive"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectOvertimeRequestRequest struct {
	Reason string `json:"reason"`
}

type OvertimeRequestResponse struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employee_id"`
	EmployeeName     *string          `json:"employee_name,omitempty"`
	Date             string           `json:"date"`
	DurationMinutes  int              `json:"duration_minutes"`
	Reason           string           `json:"reason"`
	Notes            *string          `json:"notes,omitempty"`
	Status           string           `json:"status"`
	CalculatedAmount *decimal.Decimal `json:"calculated_amount,omitempty"`
	ApprovedBy       *string          `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty"`
	RejectionReason  *string          `json:"rejection_reason,omitempty"`
}

func ToResponse(r OvertimeRequest) OvertimeRequestResponse {
	return OvertimeRequestResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		Date:             r.Date.Format("2006-01-02"),
		DurationMinutes:  r.DurationMinutes,
		Reason:           r.Reason,
		Notes:            r.Notes,
		Status:           string(r.Status),
		CalculatedAmount: r.CalculatedAmount,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		RejectionReason:  r.RejectionReason,
	}
}
