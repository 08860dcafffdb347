package policy

import (
	"encoding/json"
	"time"

	"github.com/gajihub/payroll-core-go/internal/pkg/validator"
)

type CreatePolicyRequest struct {
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config"`
}

func (r CreatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors
	if !PolicyType(r.Type).Valid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be one of attendance_rules, overtime_policy, leave_policy, payroll_config"})
	}
	if len(r.Config) == 0 {
		errs = append(errs, validator.ValidationError{Field: "config", Message: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePolicyRequest struct {
	ID     string          `json:"-"`
	Config json.RawMessage `json:"config"`
}

func (r UpdatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}
	if len(r.Config) == 0 {
		errs = append(errs, validator.ValidationError{Field: "config", Message: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PolicyResponse struct {
	ID        string          `json:"id"`
	CompanyID string          `json:"company_id"`
	Type      string          `json:"type"`
	Version   int             `json:"version"`
	Config    json.RawMessage `json:"config"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

func ToResponse(p Policy) PolicyResponse {
	return PolicyResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Type:      string(p.Type),
		Version:   p.Version,
		Config:    json.RawMessage(p.Config),
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}
