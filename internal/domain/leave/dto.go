package leave

import (
	"time"

	"github.com/gajihub/payroll-core-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLeaveTypeRequest struct {
	Code               string           `json:"code"`
	Name               string           `json:"name"`
	IsPaid             bool             `json:"is_paid"`
	MaxBalance         *decimal.Decimal `json:"max_balance,omitempty"`
	AccrualRate        *decimal.Decimal `json:"accrual_rate,omitempty"`
	CarryoverAllowed   *bool            `json:"carryover_allowed,omitempty"`
	CarryoverMax       *decimal.Decimal `json:"carryover_max,omitempty"`
	ExpiresAfterMonths *int             `json:"expires_after_months,omitempty"`
	RequiresAttachment bool             `json:"requires_attachment"`
}

func (r CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "is required"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.MaxBalance != nil && r.MaxBalance.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "max_balance", Message: "must not be negative"})
	}
	if r.AccrualRate != nil && r.AccrualRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "accrual_rate", Message: "must not be negative"})
	}
	if r.ExpiresAfterMonths != nil && *r.ExpiresAfterMonths <= 0 {
		errs = append(errs, validator.ValidationError{Field: "expires_after_months", Message: "must be positive"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateLeaveTypeRequest struct {
	ID                 string           `json:"-"`
	Name               *string          `json:"name,omitempty"`
	IsPaid             *bool            `json:"is_paid,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
	MaxBalance         *decimal.Decimal `json:"max_balance,omitempty"`
	AccrualRate        *decimal.Decimal `json:"accrual_rate,omitempty"`
	CarryoverAllowed   *bool            `json:"carryover_allowed,omitempty"`
	CarryoverMax       *decimal.Decimal `json:"carryover_max,omitempty"`
	ExpiresAfterMonths *int             `json:"expires_after_months,omitempty"`
	RequiresAttachment *bool            `json:"requires_attachment,omitempty"`
}

type CreateLeaveRequestRequest struct {
	EmployeeID    string  `json:"employee_id"`
	LeaveTypeID   string  `json:"leave_type_id"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Reason        string  `json:"reason"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
}

func (r CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{Field: "leave_type_id", Message: "is required"})
	}
	if !validator.IsValidDate(r.StartDate) {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if !validator.IsValidDate(r.EndDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if validator.IsValidDate(r.StartDate) && validator.IsValidDate(r.EndDate) {
		start, _ := time.Parse("2006-01-02", r.StartDate)
		end, _ := time.Parse("2006-01-02", r.EndDate)
		if start.After(end) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
		}
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateLeaveRequestRequest struct {
	ID            string  `json:"-"`
	StartDate     *string `json:"start_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	Reason        *string `json:"reason,omitempty"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
}

type RejectLeaveRequestRequest struct {
	Reason string `json:"reason"`
}

type LeaveTypeResponse struct {
	ID                 string           `json:"id"`
	CompanyID          string           `json:"company_id"`
	Code               string           `json:"code"`
	Name               string           `json:"name"`
	IsPaid             bool             `json:"is_paid"`
	IsActive           bool             `json:"is_active"`
	MaxBalance         *decimal.Decimal `json:"max_balance,omitempty"`
	AccrualRate        *decimal.Decimal `json:"accrual_rate,omitempty"`
	CarryoverAllowed   *bool            `json:"carryover_allowed,omitempty"`
	CarryoverMax       *decimal.Decimal `json:"carryover_max,omitempty"`
	ExpiresAfterMonths *int             `json:"expires_after_months,omitempty"`
	RequiresAttachment bool             `json:"requires_attachment"`
}

type LeaveRequestResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    *string         `json:"employee_name,omitempty"`
	LeaveTypeID     string          `json:"leave_type_id"`
	LeaveTypeName   *string         `json:"leave_type_name,omitempty"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Days            decimal.Decimal `json:"days"`
	Reason          string          `json:"reason"`
	AttachmentURL   *string         `json:"attachment_url,omitempty"`
	Status          string          `json:"status"`
	RequestedAt     time.Time       `json:"requested_at"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
}

type BalanceResponse struct {
	LeaveTypeID string          `json:"leave_type_id"`
	Unlimited   bool            `json:"unlimited"`
	Pool        decimal.Decimal `json:"pool"`
	Accrued     decimal.Decimal `json:"accrued"`
	Carryover   decimal.Decimal `json:"carryover"`
	Expired     decimal.Decimal `json:"expired"`
	Used        decimal.Decimal `json:"used"`
	Pending     decimal.Decimal `json:"pending"`
	Available   decimal.Decimal `json:"available"`
	AsOf        time.Time       `json:"as_of"`
}

func ToLeaveTypeResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                 t.ID,
		CompanyID:          t.CompanyID,
		Code:               t.Code,
		Name:               t.Name,
		IsPaid:             t.IsPaid,
		IsActive:           t.IsActive,
		MaxBalance:         t.MaxBalance,
		AccrualRate:        t.AccrualRate,
		CarryoverAllowed:   t.CarryoverAllowed,
		CarryoverMax:       t.CarryoverMax,
		ExpiresAfterMonths: t.ExpiresAfterMonths,
		RequiresAttachment: t.RequiresAttachment,
	}
}

func ToLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		LeaveTypeID:     r.LeaveTypeID,
		LeaveTypeName:   r.LeaveTypeName,
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		Days:            r.Days,
		Reason:          r.Reason,
		AttachmentURL:   r.AttachmentURL,
		Status:          string(r.Status),
		RequestedAt:     r.RequestedAt,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		RejectionReason: r.RejectionReason,
	}
}

func ToBalanceResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		LeaveTypeID: b.LeaveTypeID,
		Unlimited:   b.Unlimited,
		Pool:        b.Pool,
		Accrued:     b.Accrued,
		Carryover:   b.Carryover,
		Expired:     b.Expired,
		Used:        b.Used,
		Pending:     b.Pending,
		Available:   b.Available,
		AsOf:        b.AsOf,
	}
}
