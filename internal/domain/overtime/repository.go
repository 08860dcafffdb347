package overtime

import (
	"context"
	"time"
)

// OvertimeRequestRepository - interface for the overtime_requests table.
// Create must fail with ErrDuplicateOvertimeRequest when a non-rejected row
// already exists for the same (employee_id, date); a partial unique index
// backs this at the storage level.
type OvertimeRequestRepository interface {
	Create(ctx context.Context, request OvertimeRequest) (OvertimeRequest, error)
	GetByID(ctx context.Context, id string, companyID string) (OvertimeRequest, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]OvertimeRequest, error)
	GetByCompanyID(ctx context.Context, companyID string, status *OvertimeRequestStatus) ([]OvertimeRequest, error)
	GetApprovedInPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]OvertimeRequest, error)
	Update(ctx context.Context, request OvertimeRequest) (OvertimeRequest, error)
}
