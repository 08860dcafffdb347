package policy

import (
	"context"
	"fmt"

	"github.com/gajihub/payroll-core-go/internal/domain/audit"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/pkg/jwt"
)

// PolicyService owns the versioned policy documents every calculator reads.
// It also implements policy.Store for those calculators.
type PolicyService struct {
	policyRepo policy.PolicyRepository
	auditor    audit.Recorder
}

func NewPolicyService(policyRepo policy.PolicyRepository, auditor audit.Recorder) *PolicyService {
	return &PolicyService{
		policyRepo: policyRepo,
		auditor:    auditor,
	}
}

// ActiveFor implements policy.Store.
func (s *PolicyService) ActiveFor(ctx context.Context, companyID string, policyType policy.PolicyType) (policy.Policy, error) {
	return s.policyRepo.GetActive(ctx, companyID, policyType)
}

// GetActive returns the caller company's active policy of the given type.
func (s *PolicyService) GetActive(ctx context.Context, policyType string) (policy.PolicyResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return policy.PolicyResponse{}, err
	}

	pt := policy.PolicyType(policyType)
	if !pt.Valid() {
		return policy.PolicyResponse{}, policy.ErrInvalidPolicyType
	}

	p, err := s.policyRepo.GetActive(ctx, companyID, pt)
	if err != nil {
		return policy.PolicyResponse{}, err
	}

	return policy.ToResponse(p), nil
}

// GetHistory returns every version of the given policy type, newest first.
func (s *PolicyService) GetHistory(ctx context.Context, policyType string) ([]policy.PolicyResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	pt := policy.PolicyType(policyType)
	if !pt.Valid() {
		return nil, policy.ErrInvalidPolicyType
	}

	history, err := s.policyRepo.GetHistory(ctx, companyID, pt)
	if err != nil {
		return nil, err
	}

	responses := make([]policy.PolicyResponse, 0, len(history))
	for _, p := range history {
		responses = append(responses, policy.ToResponse(p))
	}

	return responses, nil
}

// CreateVersion appends a new version of the policy and makes it the active
// one. The previous active version is deactivated in the same transaction.
func (s *PolicyService) CreateVersion(ctx context.Context, req policy.CreatePolicyRequest) (policy.PolicyResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return policy.PolicyResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return policy.PolicyResponse{}, err
	}

	pt := policy.PolicyType(req.Type)
	cfg := policy.Config(req.Config)
	if err := validateConfig(pt, cfg); err != nil {
		return policy.PolicyResponse{}, err
	}

	created, err := s.policyRepo.CreateVersion(ctx, companyID, pt, cfg)
	if err != nil {
		return policy.PolicyResponse{}, fmt.Errorf("failed to create policy version: %w", err)
	}

	entry := audit.NewEntry(userID, "policy.create_version", "policy", created.ID)
	entry.After = policy.ToResponse(created)
	s.auditor.Record(ctx, entry)

	return policy.ToResponse(created), nil
}

// UpdateActive rewrites the config of the currently active version in place.
// Version history is untouched; use CreateVersion when the change must stay
// traceable to a version bump.
func (s *PolicyService) UpdateActive(ctx context.Context, req policy.UpdatePolicyRequest) (policy.PolicyResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return policy.PolicyResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return policy.PolicyResponse{}, err
	}

	existing, err := s.policyRepo.GetByID(ctx, req.ID)
	if err != nil {
		return policy.PolicyResponse{}, err
	}
	if existing.CompanyID != companyID {
		return policy.PolicyResponse{}, policy.ErrPolicyNotFound
	}

	cfg := policy.Config(req.Config)
	if err := validateConfig(existing.Type, cfg); err != nil {
		return policy.PolicyResponse{}, err
	}

	updated, err := s.policyRepo.UpdateActiveConfig(ctx, req.ID, cfg)
	if err != nil {
		return policy.PolicyResponse{}, fmt.Errorf("failed to update policy: %w", err)
	}

	entry := audit.NewEntry(userID, "policy.update_active", "policy", updated.ID)
	entry.Before = policy.ToResponse(existing)
	entry.After = policy.ToResponse(updated)
	s.auditor.Record(ctx, entry)

	return policy.ToResponse(updated), nil
}

// validateConfig rejects documents that do not decode into the typed config
// struct for their policy type, so a malformed document fails at write time
// instead of inside a payroll run.
func validateConfig(policyType policy.PolicyType, cfg policy.Config) error {
	probe := policy.Policy{Type: policyType, Config: cfg}

	var decodeErr error
	switch policyType {
	case policy.PolicyTypeAttendanceRules:
		_, decodeErr = probe.AttendanceRules()
	case policy.PolicyTypeOvertimePolicy:
		_, decodeErr = probe.OvertimePolicy()
	case policy.PolicyTypeLeavePolicy:
		_, decodeErr = probe.LeavePolicy()
	case policy.PolicyTypePayrollConfig:
		_, decodeErr = probe.PayrollConfig()
	default:
		return policy.ErrInvalidPolicyType
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: %v", policy.ErrInvalidPolicyConfig, decodeErr)
	}

	return nil
}
