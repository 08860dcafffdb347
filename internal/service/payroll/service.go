package payroll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/attendance"
	"github.com/gajihub/payroll-core-go/internal/domain/audit"
	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/gajihub/payroll-core-go/internal/domain/overtime"
	"github.com/gajihub/payroll-core-go/internal/domain/payroll"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/gajihub/payroll-core-go/internal/pkg/jwt"
	"github.com/gajihub/payroll-core-go/internal/pkg/keylock"
	"github.com/gajihub/payroll-core-go/internal/repository/postgresql"
	attendancesvc "github.com/gajihub/payroll-core-go/internal/service/attendance"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// buildConcurrency bounds the per-employee fan-out while items are computed.
const buildConcurrency = 8

// PayrollService orchestrates payroll runs: it owns the run state machine and
// rebuilds items atomically, so readers never observe a half-rebuilt run as
// DRAFT. Operations on one run are serialized through runLocks; a second
// caller gets ErrRunBusy instead of interleaving.
type PayrollService struct {
	db             *database.DB
	payrollRepo    payroll.PayrollRepository
	directory      employee.Directory
	attendanceRepo attendance.AttendanceRepository
	overtimeRepo   overtime.OvertimeRequestRepository
	policies       policy.Store
	aggregator     *attendancesvc.Aggregator
	builder        *ItemBuilder
	runLocks       *keylock.KeyLock
	auditor        audit.Recorder
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	directory employee.Directory,
	attendanceRepo attendance.AttendanceRepository,
	overtimeRepo overtime.OvertimeRequestRepository,
	policies policy.Store,
	aggregator *attendancesvc.Aggregator,
	builder *ItemBuilder,
	runLocks *keylock.KeyLock,
	auditor audit.Recorder,
) *PayrollService {
	return &PayrollService{
		db:             db,
		payrollRepo:    payrollRepo,
		directory:      directory,
		attendanceRepo: attendanceRepo,
		overtimeRepo:   overtimeRepo,
		policies:       policies,
		aggregator:     aggregator,
		builder:        builder,
		runLocks:       runLocks,
		auditor:        auditor,
	}
}

// CreateRun opens a DRAFT run for the period and builds an item for every
// active employee with a contract. One run per (company, year, month).
func (s *PayrollService) CreateRun(ctx context.Context, req payroll.CreatePayrollRunRequest) (payroll.PayrollRunResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	employees, err := s.directory.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	if len(employees) == 0 {
		return payroll.PayrollRunResponse{}, payroll.ErrNoEligibleEmployees
	}

	run := payroll.PayrollRun{
		CompanyID:   companyID,
		PeriodYear:  req.PeriodYear,
		PeriodMonth: req.PeriodMonth,
		Status:      payroll.RunStatusDraft,
		Notes:       req.Notes,
	}

	items, total, err := s.buildFreshItems(ctx, run, employees)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	var created payroll.PayrollRun
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		created, err = s.payrollRepo.CreateRun(txCtx, run)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].PayrollRunID = created.ID
		}
		if _, err := s.payrollRepo.CreateItems(txCtx, items); err != nil {
			return err
		}
		created.TotalAmount = &total
		return s.payrollRepo.UpdateRunStatus(txCtx, created)
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	entry := audit.NewEntry(userID, "payroll_run.create", "payroll_run", created.ID)
	entry.After = payroll.ToRunResponse(created)
	s.auditor.Record(ctx, entry)

	return payroll.ToRunResponse(created), nil
}

// Recalculate rebuilds every item's non-pinned fields and refreshes the run
// total. The run passes through PROCESSING while items are rebuilt and
// returns to DRAFT; on failure it returns to DRAFT with its previous items
// intact, because all writes happen in one final transaction.
func (s *PayrollService) Recalculate(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	if !s.runLocks.TryLock(runID) {
		return payroll.PayrollRunResponse{}, payroll.ErrRunBusy
	}
	defer s.runLocks.Unlock(runID)

	run, err := s.enterProcessing(ctx, runID, companyID, "recalculate")
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	finalized, err := s.rebuildAndFinalize(ctx, run, payroll.RunStatusDraft, nil)
	if err != nil {
		s.revertToDraft(ctx, run)
		return payroll.PayrollRunResponse{}, err
	}

	entry := audit.NewEntry(userID, "payroll_run.recalculate", "payroll_run", finalized.ID)
	entry.After = payroll.ToRunResponse(finalized)
	s.auditor.Record(ctx, entry)

	return payroll.ToRunResponse(finalized), nil
}

// LockRun freezes a DRAFT run. A final rebuild runs first, so the locked
// totals are guaranteed to reflect the data at lock time.
func (s *PayrollService) LockRun(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	if !s.runLocks.TryLock(runID) {
		return payroll.PayrollRunResponse{}, payroll.ErrRunBusy
	}
	defer s.runLocks.Unlock(runID)

	run, err := s.enterProcessing(ctx, runID, companyID, "lock")
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	finalized, err := s.rebuildAndFinalize(ctx, run, payroll.RunStatusLocked, &userID)
	if err != nil {
		s.revertToDraft(ctx, run)
		return payroll.PayrollRunResponse{}, err
	}

	entry := audit.NewEntry(userID, "payroll_run.lock", "payroll_run", finalized.ID)
	entry.After = payroll.ToRunResponse(finalized)
	s.auditor.Record(ctx, entry)

	return payroll.ToRunResponse(finalized), nil
}

// MarkPaid records that a LOCKED run was disbursed. Payment itself happens
// outside this system.
func (s *PayrollService) MarkPaid(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	var updated payroll.PayrollRun
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		run, err := s.payrollRepo.GetRunByIDForUpdate(txCtx, runID, companyID)
		if err != nil {
			return err
		}
		if !run.Status.CanTransitionTo(payroll.RunStatusPaid) {
			return &payroll.InvalidStateTransitionError{Current: run.Status, Attempted: "mark paid"}
		}
		run.Status = payroll.RunStatusPaid
		updated = run
		return s.payrollRepo.UpdateRunStatus(txCtx, run)
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	s.auditor.Record(ctx, audit.NewEntry(userID, "payroll_run.mark_paid", "payroll_run", updated.ID))

	return payroll.ToRunResponse(updated), nil
}

// DeleteRun removes a run and its items. Only DRAFT and PROCESSING runs may
// go; a locked history is permanent.
func (s *PayrollService) DeleteRun(ctx context.Context, runID string) error {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	if !s.runLocks.TryLock(runID) {
		return payroll.ErrRunBusy
	}
	defer s.runLocks.Unlock(runID)

	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		run, err := s.payrollRepo.GetRunByIDForUpdate(txCtx, runID, companyID)
		if err != nil {
			return err
		}
		if !run.Status.Editable() {
			return &payroll.InvalidStateTransitionError{Current: run.Status, Attempted: "delete"}
		}
		return s.payrollRepo.DeleteRun(txCtx, runID, companyID)
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.NewEntry(userID, "payroll_run.delete", "payroll_run", runID))

	return nil
}

// UpdateItem applies a manual edit. Every non-nil field is pinned from now
// on: recalculations regenerate everything else but keep pinned values. The
// item's totals and the run's aggregate total are both refreshed.
func (s *PayrollService) UpdateItem(ctx context.Context, req payroll.UpdatePayrollItemRequest) (payroll.PayrollItemResponse, error) {
	companyID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollItemResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return payroll.PayrollItemResponse{}, err
	}

	item, err := s.payrollRepo.GetItemByID(ctx, req.ID)
	if err != nil {
		return payroll.PayrollItemResponse{}, err
	}

	if !s.runLocks.TryLock(item.PayrollRunID) {
		return payroll.PayrollItemResponse{}, payroll.ErrRunBusy
	}
	defer s.runLocks.Unlock(item.PayrollRunID)

	cfg, err := s.payrollConfig(ctx, companyID)
	if err != nil {
		return payroll.PayrollItemResponse{}, err
	}

	before := payroll.ToItemResponse(item)

	var updated payroll.PayrollItem
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		run, err := s.payrollRepo.GetRunByIDForUpdate(txCtx, item.PayrollRunID, companyID)
		if err != nil {
			return err
		}
		if !run.Status.Editable() {
			return &payroll.InvalidStateTransitionError{Current: run.Status, Attempted: "edit item of"}
		}

		applyManualEdit(&item, req)
		s.builder.RecomputeTotals(&item, cfg)

		if err := s.payrollRepo.UpdateItemManual(txCtx, item); err != nil {
			return err
		}

		// The aggregate is recomputed from all items, not adjusted by the
		// delta, so it cannot drift.
		items, err := s.payrollRepo.GetItemsByRunID(txCtx, run.ID)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for _, it := range items {
			total = total.Add(it.NetPay)
		}
		run.TotalAmount = &total
		if err := s.payrollRepo.UpdateRunStatus(txCtx, run); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return payroll.PayrollItemResponse{}, err
	}

	entry := audit.NewEntry(userID, "payroll_item.update", "payroll_item", updated.ID)
	entry.Before = before
	entry.After = payroll.ToItemResponse(updated)
	entry.Reason = req.Reason
	s.auditor.Record(ctx, entry)

	return payroll.ToItemResponse(updated), nil
}

func (s *PayrollService) GetRun(ctx context.Context, runID string) (payroll.PayrollRunDetailResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunDetailResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return payroll.PayrollRunDetailResponse{}, err
	}

	items, err := s.payrollRepo.GetItemsByRunID(ctx, runID)
	if err != nil {
		return payroll.PayrollRunDetailResponse{}, err
	}

	detail := payroll.PayrollRunDetailResponse{
		Run:   payroll.ToRunResponse(run),
		Items: make([]payroll.PayrollItemResponse, 0, len(items)),
	}
	for _, it := range items {
		detail.Items = append(detail.Items, payroll.ToItemResponse(it))
	}

	return detail, nil
}

func (s *PayrollService) ListRuns(ctx context.Context) ([]payroll.PayrollRunResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	runs, err := s.payrollRepo.ListRuns(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.PayrollRunResponse, 0, len(runs))
	for _, r := range runs {
		responses = append(responses, payroll.ToRunResponse(r))
	}

	return responses, nil
}

func (s *PayrollService) GetSummary(ctx context.Context, year, month int) (payroll.PayrollSummaryResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	return s.payrollRepo.GetSummary(ctx, companyID, year, month)
}

// ========== REBUILD MACHINERY ==========

// enterProcessing flips the run to PROCESSING in its own short transaction,
// taking the row lock to fence out other processes.
func (s *PayrollService) enterProcessing(ctx context.Context, runID, companyID, attempted string) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		run, err = s.payrollRepo.GetRunByIDForUpdate(txCtx, runID, companyID)
		if err != nil {
			return err
		}
		if !run.Status.CanTransitionTo(payroll.RunStatusProcessing) {
			return &payroll.InvalidStateTransitionError{Current: run.Status, Attempted: attempted}
		}
		run.Status = payroll.RunStatusProcessing
		return s.payrollRepo.UpdateRunStatus(txCtx, run)
	})
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	return run, nil
}

// rebuildAndFinalize recomputes every item and writes all of them plus the
// final run state in one transaction. Readers therefore see either the old
// items under PROCESSING or the new items under the final status, never a
// mix.
func (s *PayrollService) rebuildAndFinalize(ctx context.Context, run payroll.PayrollRun, finalStatus payroll.RunStatus, lockedBy *string) (payroll.PayrollRun, error) {
	existing, err := s.payrollRepo.GetItemsByRunID(ctx, run.ID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	rebuilt, total, err := s.rebuildItems(ctx, run, existing)
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		for _, item := range rebuilt {
			if err := s.payrollRepo.ReplaceItemComputed(txCtx, item); err != nil {
				return err
			}
		}
		run.Status = finalStatus
		run.TotalAmount = &total
		if finalStatus == payroll.RunStatusLocked {
			now := time.Now()
			run.LockedAt = &now
			run.LockedBy = lockedBy
		}
		return s.payrollRepo.UpdateRunStatus(txCtx, run)
	})
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	return run, nil
}

// revertToDraft is the failure path out of PROCESSING: the run returns to
// DRAFT with its previous items and total untouched. The revert must land
// even when the rebuild failed because the request context was canceled, so
// it detaches from the caller's cancellation.
func (s *PayrollService) revertToDraft(ctx context.Context, run payroll.PayrollRun) {
	ctx = context.WithoutCancel(ctx)
	run.Status = payroll.RunStatusDraft
	if err := s.payrollRepo.UpdateRunStatus(ctx, run); err != nil {
		s.auditor.Record(ctx, audit.Entry{
			Action:     "payroll_run.revert_failed",
			EntityType: "payroll_run",
			EntityID:   run.ID,
			Reason:     err.Error(),
		})
	}
}

// rebuildItems recomputes the run's existing items concurrently. A failure
// on any single employee fails the whole rebuild; nothing is silently
// skipped.
func (s *PayrollService) rebuildItems(ctx context.Context, run payroll.PayrollRun, existing []payroll.PayrollItem) ([]payroll.PayrollItem, decimal.Decimal, error) {
	env, err := s.loadPeriodEnv(ctx, run)
	if err != nil {
		return nil, decimal.Zero, err
	}

	var mu sync.Mutex
	rebuilt := make([]payroll.PayrollItem, 0, len(existing))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for _, item := range existing {
		item := item
		g.Go(func() error {
			in, err := s.buildInput(gctx, run, item.EmployeeID, env)
			if err != nil {
				return fmt.Errorf("employee %s: %w", item.EmployeeID, err)
			}
			fresh, err := s.builder.Rebuild(in, item)
			if err != nil {
				return fmt.Errorf("employee %s: %w", item.EmployeeID, err)
			}
			mu.Lock()
			rebuilt = append(rebuilt, fresh)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range rebuilt {
		total = total.Add(item.NetPay)
	}

	return rebuilt, total, nil
}

// buildFreshItems composes a brand-new item per employee for a new run.
func (s *PayrollService) buildFreshItems(ctx context.Context, run payroll.PayrollRun, employees []employee.Employee) ([]payroll.PayrollItem, decimal.Decimal, error) {
	env, err := s.loadPeriodEnv(ctx, run)
	if err != nil {
		return nil, decimal.Zero, err
	}

	var mu sync.Mutex
	items := make([]payroll.PayrollItem, 0, len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for _, emp := range employees {
		emp := emp
		g.Go(func() error {
			in, err := s.buildInput(gctx, run, emp.ID, env)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			item, err := s.builder.Build(in)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			mu.Lock()
			items = append(items, item)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.NetPay)
	}

	return items, total, nil
}

// periodEnv is the per-run context shared by every item build: the period
// boundaries, the payroll config, and the pre-folded attendance totals.
type periodEnv struct {
	from   time.Time
	to     time.Time
	cfg    policy.PayrollConfigDoc
	totals map[string]attendance.Totals
}

func (s *PayrollService) loadPeriodEnv(ctx context.Context, run payroll.PayrollRun) (periodEnv, error) {
	cfg, err := s.payrollConfig(ctx, run.CompanyID)
	if err != nil {
		return periodEnv{}, err
	}

	rules, err := s.attendanceRules(ctx, run.CompanyID)
	if err != nil {
		return periodEnv{}, err
	}

	loc := rules.Location()
	from := run.PeriodStart(loc)
	to := run.PeriodEnd(loc)

	records, err := s.attendanceRepo.GetByCompanyPeriod(ctx, run.CompanyID, from, to)
	if err != nil {
		return periodEnv{}, err
	}

	return periodEnv{
		from:   from,
		to:     to,
		cfg:    cfg,
		totals: s.aggregator.FoldCompany(records, rules),
	}, nil
}

func (s *PayrollService) buildInput(ctx context.Context, run payroll.PayrollRun, employeeID string, env periodEnv) (BuildInput, error) {
	emp, err := s.directory.GetByID(ctx, employeeID)
	if err != nil {
		return BuildInput{}, err
	}

	contract, err := s.directory.GetContract(ctx, employeeID)
	if err != nil {
		return BuildInput{}, err
	}

	approved, err := s.overtimeRepo.GetApprovedInPeriod(ctx, employeeID, env.from, env.to)
	if err != nil {
		return BuildInput{}, err
	}

	totals, ok := env.totals[employeeID]
	if !ok {
		totals = attendance.Totals{EmployeeID: employeeID}
	}

	return BuildInput{
		Employee:    emp,
		Contract:    contract,
		Totals:      totals,
		Overtime:    approved,
		Config:      env.cfg,
		PeriodMonth: run.PeriodMonth,
	}, nil
}

// payrollConfig loads the active PAYROLL_CONFIG. Payroll fails closed without
// one; there are no built-in default rates.
func (s *PayrollService) payrollConfig(ctx context.Context, companyID string) (policy.PayrollConfigDoc, error) {
	p, err := s.policies.ActiveFor(ctx, companyID, policy.PolicyTypePayrollConfig)
	if err != nil {
		return policy.PayrollConfigDoc{}, err
	}
	return p.PayrollConfig()
}

func (s *PayrollService) attendanceRules(ctx context.Context, companyID string) (policy.AttendanceRulesConfig, error) {
	p, err := s.policies.ActiveFor(ctx, companyID, policy.PolicyTypeAttendanceRules)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotConfigured) {
			return policy.AttendanceRulesConfig{}, nil
		}
		return policy.AttendanceRulesConfig{}, err
	}
	return p.AttendanceRules()
}

// applyManualEdit copies the request's set fields onto the item and pins
// them. A nil field is untouched, so a legitimate zero stays expressible.
func applyManualEdit(item *payroll.PayrollItem, req payroll.UpdatePayrollItemRequest) {
	if req.Allowances != nil {
		item.Allowances = *req.Allowances
		item.Pinned = item.Pinned.Pin(payroll.FieldAllowances)
	}
	if req.Bonuses != nil {
		item.Bonuses = *req.Bonuses
		item.Pinned = item.Pinned.Pin(payroll.FieldBonuses)
	}
	if req.TransportBonus != nil {
		item.TransportBonus = *req.TransportBonus
		item.Pinned = item.Pinned.Pin(payroll.FieldTransportBonus)
	}
	if req.LunchBonus != nil {
		item.LunchBonus = *req.LunchBonus
		item.Pinned = item.Pinned.Pin(payroll.FieldLunchBonus)
	}
	if req.THR != nil {
		item.THR = *req.THR
		item.Pinned = item.Pinned.Pin(payroll.FieldTHR)
	}
	if req.Deductions != nil {
		item.Deductions = *req.Deductions
		item.Pinned = item.Pinned.Pin(payroll.FieldDeductions)
	}
}
