package overtime

import (
	"context"
	"errors"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/audit"
	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/gajihub/payroll-core-go/internal/domain/holiday"
	"github.com/gajihub/payroll-core-go/internal/domain/overtime"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/pkg/jwt"
	"github.com/gajihub/payroll-core-go/internal/pkg/validator"
)

type OvertimeService struct {
	requestRepo overtime.OvertimeRequestRepository
	directory   employee.Directory
	policies    policy.Store
	calendar    holiday.Calendar
	calculator  *Calculator
	auditor     audit.Recorder
}

func NewOvertimeService(
	requestRepo overtime.OvertimeRequestRepository,
	directory employee.Directory,
	policies policy.Store,
	calendar holiday.Calendar,
	calculator *Calculator,
	auditor audit.Recorder,
) *OvertimeService {
	return &OvertimeService{
		requestRepo: requestRepo,
		directory:   directory,
		policies:    policies,
		calendar:    calendar,
		calculator:  calculator,
		auditor:     auditor,
	}
}

// CreateRequest submits an overtime request as PENDING. Eligibility under the
// active policy is checked now so a request for a disabled day type is
// rejected up front, but no amount is stored yet: the amount freezes at
// approval against the policy active at that moment.
func (s *OvertimeService) CreateRequest(ctx context.Context, req overtime.CreateOvertimeRequestRequest) (overtime.OvertimeRequestResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	date, _ := validator.ParseDate(req.Date)

	loc, err := s.companyLocation(ctx, companyID)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}
	// "Today" is judged in the company's timezone, not the server's.
	if req.Date > time.Now().In(loc).Format("2006-01-02") {
		return overtime.OvertimeRequestResponse{}, overtime.ErrOvertimeDateInFuture
	}

	if _, err := s.ruleForDate(ctx, companyID, date); err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	created, err := s.requestRepo.Create(ctx, overtime.OvertimeRequest{
		EmployeeID:      req.EmployeeID,
		CompanyID:       companyID,
		Date:            date,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Status:          overtime.OvertimeRequestStatusPending,
	})
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	entry := audit.NewEntry(userID, "overtime_request.create", "overtime_request", created.ID)
	entry.After = overtime.ToResponse(created)
	s.auditor.Record(ctx, entry)

	return overtime.ToResponse(created), nil
}

// ApproveRequest computes and freezes the payable amount with the policy
// active right now, then marks the request APPROVED. Later policy changes
// never touch this amount again.
func (s *OvertimeService) ApproveRequest(ctx context.Context, id string) (overtime.OvertimeRequestResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	existing, err := s.requestRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}
	if existing.Status != overtime.OvertimeRequestStatusPending {
		return overtime.OvertimeRequestResponse{}, overtime.ErrOvertimeRequestAlreadyProcessed
	}

	rule, err := s.ruleForDate(ctx, companyID, existing.Date)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	contract, err := s.directory.GetContract(ctx, existing.EmployeeID)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	payrollCfg, err := s.payrollConfig(ctx, companyID)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	rate, err := s.calculator.HourlyEquivalentRate(contract, payrollCfg)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	amount, err := s.calculator.Calculate(existing.DurationMinutes, rate, rule)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	before := overtime.ToResponse(existing)
	now := time.Now()
	existing.Status = overtime.OvertimeRequestStatusApproved
	existing.CalculatedAmount = &amount
	existing.ApprovedBy = &userID
	existing.ApprovedAt = &now

	updated, err := s.requestRepo.Update(ctx, existing)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	entry := audit.NewEntry(userID, "overtime_request.approve", "overtime_request", updated.ID)
	entry.Before = before
	entry.After = overtime.ToResponse(updated)
	s.auditor.Record(ctx, entry)

	return overtime.ToResponse(updated), nil
}

// RejectRequest marks a PENDING request REJECTED. The (employee, date) slot
// opens up again for a new request.
func (s *OvertimeService) RejectRequest(ctx context.Context, id string, reason string) (overtime.OvertimeRequestResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	if validator.IsEmpty(reason) {
		return overtime.OvertimeRequestResponse{}, validator.ValidationErrors{
			{Field: "reason", Message: "is required"},
		}
	}

	existing, err := s.requestRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}
	if existing.Status != overtime.OvertimeRequestStatusPending {
		return overtime.OvertimeRequestResponse{}, overtime.ErrOvertimeRequestAlreadyProcessed
	}

	before := overtime.ToResponse(existing)
	existing.Status = overtime.OvertimeRequestStatusRejected
	existing.RejectionReason = &reason

	updated, err := s.requestRepo.Update(ctx, existing)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	entry := audit.NewEntry(userID, "overtime_request.reject", "overtime_request", updated.ID)
	entry.Before = before
	entry.After = overtime.ToResponse(updated)
	entry.Reason = reason
	s.auditor.Record(ctx, entry)

	return overtime.ToResponse(updated), nil
}

func (s *OvertimeService) GetRequest(ctx context.Context, id string) (overtime.OvertimeRequestResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	request, err := s.requestRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	return overtime.ToResponse(request), nil
}

func (s *OvertimeService) ListRequests(ctx context.Context, status *overtime.OvertimeRequestStatus) ([]overtime.OvertimeRequestResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.GetByCompanyID(ctx, companyID, status)
	if err != nil {
		return nil, err
	}

	responses := make([]overtime.OvertimeRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, overtime.ToResponse(r))
	}

	return responses, nil
}

func (s *OvertimeService) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]overtime.OvertimeRequestResponse, error) {
	requests, err := s.requestRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]overtime.OvertimeRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, overtime.ToResponse(r))
	}

	return responses, nil
}

// ruleForDate classifies date and returns the matching enabled policy rule.
func (s *OvertimeService) ruleForDate(ctx context.Context, companyID string, date time.Time) (policy.OvertimeRule, error) {
	p, err := s.policies.ActiveFor(ctx, companyID, policy.PolicyTypeOvertimePolicy)
	if err != nil {
		return policy.OvertimeRule{}, err
	}
	cfg, err := p.OvertimePolicy()
	if err != nil {
		return policy.OvertimeRule{}, err
	}

	isHoliday, err := s.calendar.IsHoliday(ctx, companyID, date)
	if err != nil {
		return policy.OvertimeRule{}, err
	}

	rule, err := cfg.RuleFor(s.calculator.Classify(date, isHoliday))
	if err != nil {
		return policy.OvertimeRule{}, err
	}
	if !rule.Enabled {
		return policy.OvertimeRule{}, overtime.ErrOvertimeDayDisabled
	}

	return rule, nil
}

// companyLocation resolves "today" from the ATTENDANCE_RULES timezone. A
// company without attendance rules falls back to UTC rather than failing the
// request.
func (s *OvertimeService) companyLocation(ctx context.Context, companyID string) (*time.Location, error) {
	p, err := s.policies.ActiveFor(ctx, companyID, policy.PolicyTypeAttendanceRules)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotConfigured) {
			return time.UTC, nil
		}
		return nil, err
	}
	cfg, err := p.AttendanceRules()
	if err != nil {
		return nil, err
	}
	return cfg.Location(), nil
}

func (s *OvertimeService) payrollConfig(ctx context.Context, companyID string) (policy.PayrollConfigDoc, error) {
	p, err := s.policies.ActiveFor(ctx, companyID, policy.PolicyTypePayrollConfig)
	if err != nil {
		return policy.PayrollConfigDoc{}, err
	}
	return p.PayrollConfig()
}
