package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/audit"
	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/gajihub/payroll-core-go/internal/domain/leave"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/gajihub/payroll-core-go/internal/pkg/jwt"
	"github.com/gajihub/payroll-core-go/internal/pkg/keylock"
	"github.com/gajihub/payroll-core-go/internal/pkg/validator"
	"github.com/gajihub/payroll-core-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
)

type LeaveService struct {
	db               *database.DB
	leaveTypeRepo    leave.LeaveTypeRepository
	leaveRequestRepo leave.LeaveRequestRepository
	directory        employee.Directory
	policies         policy.Store
	calculator       *BalanceCalculator
	employeeLocks    *keylock.KeyLock
	auditor          audit.Recorder
}

func NewLeaveService(
	db *database.DB,
	leaveTypeRepo leave.LeaveTypeRepository,
	leaveRequestRepo leave.LeaveRequestRepository,
	directory employee.Directory,
	policies policy.Store,
	calculator *BalanceCalculator,
	employeeLocks *keylock.KeyLock,
	auditor audit.Recorder,
) *LeaveService {
	return &LeaveService{
		db:               db,
		leaveTypeRepo:    leaveTypeRepo,
		leaveRequestRepo: leaveRequestRepo,
		directory:        directory,
		policies:         policies,
		calculator:       calculator,
		employeeLocks:    employeeLocks,
		auditor:          auditor,
	}
}

// ========== LEAVE TYPES ==========

func (s *LeaveService) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	created, err := s.leaveTypeRepo.Create(ctx, leave.LeaveType{
		CompanyID:          companyID,
		Code:               req.Code,
		Name:               req.Name,
		IsPaid:             req.IsPaid,
		IsActive:           true,
		MaxBalance:         req.MaxBalance,
		AccrualRate:        req.AccrualRate,
		CarryoverAllowed:   req.CarryoverAllowed,
		CarryoverMax:       req.CarryoverMax,
		ExpiresAfterMonths: req.ExpiresAfterMonths,
		RequiresAttachment: req.RequiresAttachment,
	})
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	entry := audit.NewEntry(userID, "leave_type.create", "leave_type", created.ID)
	entry.After = leave.ToLeaveTypeResponse(created)
	s.auditor.Record(ctx, entry)

	return leave.ToLeaveTypeResponse(created), nil
}

func (s *LeaveService) UpdateLeaveType(ctx context.Context, req leave.UpdateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	before, err := s.leaveTypeRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	updated, err := s.leaveTypeRepo.Update(ctx, companyID, req)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	entry := audit.NewEntry(userID, "leave_type.update", "leave_type", updated.ID)
	entry.Before = leave.ToLeaveTypeResponse(before)
	entry.After = leave.ToLeaveTypeResponse(updated)
	s.auditor.Record(ctx, entry)

	return leave.ToLeaveTypeResponse(updated), nil
}

// DeactivateLeaveType retires a leave type. Types are never hard-deleted so
// historical requests keep resolving their type.
func (s *LeaveService) DeactivateLeaveType(ctx context.Context, id string) error {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.leaveTypeRepo.Deactivate(ctx, id, companyID); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.NewEntry(userID, "leave_type.deactivate", "leave_type", id))

	return nil
}

func (s *LeaveService) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveTypeResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	types, err := s.leaveTypeRepo.GetByCompanyID(ctx, companyID, activeOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, t := range types {
		responses = append(responses, leave.ToLeaveTypeResponse(t))
	}

	return responses, nil
}

// ========== BALANCES ==========

// GetBalance derives the employee's balance for one leave type as of now.
func (s *LeaveService) GetBalance(ctx context.Context, employeeID, leaveTypeID string) (leave.BalanceResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	balance, err := s.balance(ctx, companyID, employeeID, leaveTypeID, time.Now())
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	return leave.ToBalanceResponse(balance), nil
}

// ListBalances derives the employee's balance for every active leave type.
func (s *LeaveService) ListBalances(ctx context.Context, employeeID string) ([]leave.BalanceResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	types, err := s.leaveTypeRepo.GetByCompanyID(ctx, companyID, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]leave.BalanceResponse, 0, len(types))
	for _, t := range types {
		balance, err := s.balance(ctx, companyID, employeeID, t.ID, now)
		if err != nil {
			return nil, err
		}
		responses = append(responses, leave.ToBalanceResponse(balance))
	}

	return responses, nil
}

func (s *LeaveService) balance(ctx context.Context, companyID, employeeID, leaveTypeID string, asOf time.Time) (leave.Balance, error) {
	leaveType, err := s.leaveTypeRepo.GetByID(ctx, leaveTypeID, companyID)
	if err != nil {
		return leave.Balance{}, err
	}

	defaults, err := s.leaveDefaults(ctx, companyID)
	if err != nil {
		return leave.Balance{}, err
	}

	emp, err := s.directory.GetByID(ctx, employeeID)
	if err != nil {
		return leave.Balance{}, err
	}

	requests, err := s.leaveRequestRepo.GetByEmployeeAndType(ctx, employeeID, leaveTypeID,
		[]leave.LeaveRequestStatus{leave.LeaveRequestStatusPending, leave.LeaveRequestStatusApproved})
	if err != nil {
		return leave.Balance{}, err
	}

	return s.calculator.Calculate(BalanceInput{
		Type:     leaveType,
		Defaults: defaults,
		HireDate: emp.HireDate,
		Requests: requests,
		AsOf:     asOf,
	}), nil
}

// leaveDefaults loads the active LEAVE_POLICY document. A missing policy
// fails the operation closed instead of assuming defaults.
func (s *LeaveService) leaveDefaults(ctx context.Context, companyID string) (policy.LeavePolicyConfig, error) {
	p, err := s.policies.ActiveFor(ctx, companyID, policy.PolicyTypeLeavePolicy)
	if err != nil {
		return policy.LeavePolicyConfig{}, err
	}
	return p.LeavePolicy()
}

// ========== REQUESTS ==========

// CreateLeaveRequest submits a request as PENDING. For paid leave types the
// requested days must fit the available balance; the balance read and the
// insert run under a per-employee lock and a serializable transaction so a
// concurrent request for the same employee cannot slip past the check.
func (s *LeaveService) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, _ := validator.ParseDate(req.StartDate)
	end, _ := validator.ParseDate(req.EndDate)
	days := leave.WorkingDays(start, end)
	if days == 0 {
		return leave.LeaveRequestResponse{}, validator.ValidationErrors{
			{Field: "start_date", Message: "range contains no leave-consuming days"},
		}
	}

	leaveType, err := s.leaveTypeRepo.GetByID(ctx, req.LeaveTypeID, companyID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if leaveType.RequiresAttachment && req.AttachmentURL == nil {
		return leave.LeaveRequestResponse{}, validator.ValidationErrors{
			{Field: "attachment_url", Message: "is required for this leave type"},
		}
	}

	s.employeeLocks.Lock(req.EmployeeID)
	defer s.employeeLocks.Unlock(req.EmployeeID)

	var created leave.LeaveRequest
	err = postgresql.WithSerializableTransaction(ctx, s.db, func(txCtx context.Context) error {
		if leaveType.IsPaid {
			balance, err := s.balance(txCtx, companyID, req.EmployeeID, req.LeaveTypeID, time.Now())
			if err != nil {
				return err
			}
			if !s.calculator.Sufficient(balance, decimalFromDays(days)) {
				return leave.ErrInsufficientBalance
			}
		}

		var err error
		created, err = s.leaveRequestRepo.Create(txCtx, leave.LeaveRequest{
			EmployeeID:    req.EmployeeID,
			LeaveTypeID:   req.LeaveTypeID,
			StartDate:     start,
			EndDate:       end,
			Days:          decimalFromDays(days),
			Reason:        req.Reason,
			AttachmentURL: req.AttachmentURL,
			Status:        leave.LeaveRequestStatusPending,
			RequestedAt:   time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	entry := audit.NewEntry(userID, "leave_request.create", "leave_request", created.ID)
	entry.After = leave.ToLeaveRequestResponse(created)
	s.auditor.Record(ctx, entry)

	return leave.ToLeaveRequestResponse(created), nil
}

// UpdateLeaveRequest edits a request the owner has not had processed yet.
// Days are recomputed from the new range with the same working-day rule, and
// for paid types a changed range re-runs the sufficiency check under the same
// per-employee lock and serializable transaction the create path uses.
func (s *LeaveService) UpdateLeaveRequest(ctx context.Context, req leave.UpdateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	existing, err := s.scopedRequest(ctx, companyID, req.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if existing.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotEditable
	}

	before := leave.ToLeaveRequestResponse(existing)

	if req.StartDate != nil {
		start, err := validator.ParseDate(*req.StartDate)
		if err != nil {
			return leave.LeaveRequestResponse{}, validator.ValidationErrors{
				{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"},
			}
		}
		existing.StartDate = start
	}
	if req.EndDate != nil {
		end, err := validator.ParseDate(*req.EndDate)
		if err != nil {
			return leave.LeaveRequestResponse{}, validator.ValidationErrors{
				{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"},
			}
		}
		existing.EndDate = end
	}
	if req.Reason != nil {
		existing.Reason = *req.Reason
	}
	if req.AttachmentURL != nil {
		existing.AttachmentURL = req.AttachmentURL
	}

	days := leave.WorkingDays(existing.StartDate, existing.EndDate)
	if days == 0 {
		return leave.LeaveRequestResponse{}, validator.ValidationErrors{
			{Field: "start_date", Message: "range contains no leave-consuming days"},
		}
	}
	oldDays := existing.Days
	existing.Days = decimalFromDays(days)
	rangeChanged := req.StartDate != nil || req.EndDate != nil

	s.employeeLocks.Lock(existing.EmployeeID)
	defer s.employeeLocks.Unlock(existing.EmployeeID)

	var updated leave.LeaveRequest
	err = postgresql.WithSerializableTransaction(ctx, s.db, func(txCtx context.Context) error {
		if rangeChanged {
			leaveType, err := s.leaveTypeRepo.GetByID(txCtx, existing.LeaveTypeID, companyID)
			if err != nil {
				return err
			}
			if leaveType.IsPaid {
				balance, err := s.balance(txCtx, companyID, existing.EmployeeID, existing.LeaveTypeID, time.Now())
				if err != nil {
					return err
				}
				// The request under edit is still PENDING, so its old days are
				// held in the balance; release them before checking the new
				// range against availability.
				balance.Pending = balance.Pending.Sub(oldDays)
				balance.Available = balance.Available.Add(oldDays)
				if !s.calculator.Sufficient(balance, existing.Days) {
					return leave.ErrInsufficientBalance
				}
			}
		}

		var err error
		updated, err = s.leaveRequestRepo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	entry := audit.NewEntry(userID, "leave_request.update", "leave_request", updated.ID)
	entry.Before = before
	entry.After = leave.ToLeaveRequestResponse(updated)
	s.auditor.Record(ctx, entry)

	return leave.ToLeaveRequestResponse(updated), nil
}

// DeleteLeaveRequest withdraws a request that is still PENDING.
func (s *LeaveService) DeleteLeaveRequest(ctx context.Context, id string) error {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	existing, err := s.scopedRequest(ctx, companyID, id)
	if err != nil {
		return err
	}
	if existing.Status != leave.LeaveRequestStatusPending {
		return leave.ErrLeaveRequestNotEditable
	}

	if err := s.leaveRequestRepo.Delete(ctx, id); err != nil {
		return err
	}

	entry := audit.NewEntry(userID, "leave_request.delete", "leave_request", id)
	entry.Before = leave.ToLeaveRequestResponse(existing)
	s.auditor.Record(ctx, entry)

	return nil
}

// ApproveLeaveRequest moves a PENDING request to APPROVED. From that moment
// its days count as used balance instead of a pending hold.
func (s *LeaveService) ApproveLeaveRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	existing, err := s.scopedRequest(ctx, companyID, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if existing.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	before := leave.ToLeaveRequestResponse(existing)
	now := time.Now()
	existing.Status = leave.LeaveRequestStatusApproved
	existing.ApprovedBy = &userID
	existing.ApprovedAt = &now

	updated, err := s.leaveRequestRepo.Update(ctx, existing)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	entry := audit.NewEntry(userID, "leave_request.approve", "leave_request", updated.ID)
	entry.Before = before
	entry.After = leave.ToLeaveRequestResponse(updated)
	s.auditor.Record(ctx, entry)

	return leave.ToLeaveRequestResponse(updated), nil
}

// RejectLeaveRequest moves a PENDING request to REJECTED, releasing its hold
// on the balance.
func (s *LeaveService) RejectLeaveRequest(ctx context.Context, id string, reason string) (leave.LeaveRequestResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if validator.IsEmpty(reason) {
		return leave.LeaveRequestResponse{}, validator.ValidationErrors{
			{Field: "reason", Message: "is required"},
		}
	}

	existing, err := s.scopedRequest(ctx, companyID, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if existing.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	before := leave.ToLeaveRequestResponse(existing)
	existing.Status = leave.LeaveRequestStatusRejected
	existing.RejectionReason = &reason

	updated, err := s.leaveRequestRepo.Update(ctx, existing)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	entry := audit.NewEntry(userID, "leave_request.reject", "leave_request", updated.ID)
	entry.Before = before
	entry.After = leave.ToLeaveRequestResponse(updated)
	entry.Reason = reason
	s.auditor.Record(ctx, entry)

	return leave.ToLeaveRequestResponse(updated), nil
}

func (s *LeaveService) GetLeaveRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.scopedRequest(ctx, companyID, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return leave.ToLeaveRequestResponse(request), nil
}

func (s *LeaveService) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequestResponse, error) {
	requests, err := s.leaveRequestRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.ToLeaveRequestResponse(r))
	}

	return responses, nil
}

func (s *LeaveService) ListRequests(ctx context.Context, status *leave.LeaveRequestStatus) ([]leave.LeaveRequestResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	requests, err := s.leaveRequestRepo.GetByCompanyID(ctx, companyID, status)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.ToLeaveRequestResponse(r))
	}

	return responses, nil
}

// scopedRequest loads a request and verifies it belongs to the caller's
// company through its leave type. Cross-company IDs surface as not found.
func (s *LeaveService) scopedRequest(ctx context.Context, companyID, id string) (leave.LeaveRequest, error) {
	request, err := s.leaveRequestRepo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if _, err := s.leaveTypeRepo.GetByID(ctx, request.LeaveTypeID, companyID); err != nil {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return request, nil
}

func decimalFromDays(days int) decimal.Decimal {
	return decimal.NewFromInt(int64(days))
}
