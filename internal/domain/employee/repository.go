package employee

import "context"

// Directory - read interface to the external employee service. The core never
// writes these records.
type Directory interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	GetContract(ctx context.Context, employeeID string) (Contract, error)
}
