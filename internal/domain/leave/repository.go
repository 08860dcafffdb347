package leave

import (
	"context"
	"time"
)

// LeaveTypeRepository - interface for the leave_types table
type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string, companyID string) (LeaveType, error)
	GetByCompanyID(ctx context.Context, companyID string, activeOnly bool) ([]LeaveType, error)
	Update(ctx context.Context, companyID string, req UpdateLeaveTypeRequest) (LeaveType, error)
	Deactivate(ctx context.Context, id string, companyID string) error
}

// LeaveRequestRepository - interface for the leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetByEmployeeAndType(ctx context.Context, employeeID, leaveTypeID string, statuses []LeaveRequestStatus) ([]LeaveRequest, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	GetByCompanyID(ctx context.Context, companyID string, status *LeaveRequestStatus) ([]LeaveRequest, error)
	GetApprovedInPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)
	Update(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	Delete(ctx context.Context, id string) error
}
