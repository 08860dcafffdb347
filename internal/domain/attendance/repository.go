package attendance

import (
	"context"
	"time"
)

// AttendanceRepository - read interface over the attendances table. Attendance
// capture (clock in/out) belongs to an external service; this core only folds
// the records it finds there.
type AttendanceRepository interface {
	GetByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
	GetByCompanyPeriod(ctx context.Context, companyID string, from, to time.Time) ([]Record, error)
}
