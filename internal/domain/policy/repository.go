package policy

import "context"

// PolicyRepository - interface for the policies table.
// CreateVersion must serialize per (company_id, type): it assigns
// version = max existing + 1, deactivates the prior active row and inserts the
// new one as a single atomic operation.
type PolicyRepository interface {
	GetActive(ctx context.Context, companyID string, policyType PolicyType) (Policy, error)
	GetByID(ctx context.Context, id string) (Policy, error)
	GetHistory(ctx context.Context, companyID string, policyType PolicyType) ([]Policy, error)
	CreateVersion(ctx context.Context, companyID string, policyType PolicyType, config Config) (Policy, error)
	UpdateActiveConfig(ctx context.Context, id string, config Config) (Policy, error)
}

// Store resolves active policy documents for calculation services. Implemented
// by the policy service; consumers depend on this narrow read surface only.
type Store interface {
	ActiveFor(ctx context.Context, companyID string, policyType PolicyType) (Policy, error)
}
