package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/attendance"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/pkg/jwt"
)

type AttendanceService struct {
	attendanceRepo attendance.AttendanceRepository
	policies       policy.Store
	aggregator     *Aggregator
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	policies policy.Store,
	aggregator *Aggregator,
) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		policies:       policies,
		aggregator:     aggregator,
	}
}

// GetEmployeeTotals folds one employee's attendance for a calendar month.
func (s *AttendanceService) GetEmployeeTotals(ctx context.Context, employeeID string, year int, month time.Month) (attendance.Totals, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.Totals{}, err
	}

	rules, err := s.Rules(ctx, companyID)
	if err != nil {
		return attendance.Totals{}, err
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, rules.Location())
	to := from.AddDate(0, 1, -1)

	records, err := s.attendanceRepo.GetByEmployeePeriod(ctx, employeeID, from, to)
	if err != nil {
		return attendance.Totals{}, err
	}

	return s.aggregator.Fold(employeeID, records, rules), nil
}

// GetCompanyTotals folds every employee's attendance for a calendar month.
func (s *AttendanceService) GetCompanyTotals(ctx context.Context, year int, month time.Month) (map[string]attendance.Totals, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rules, err := s.Rules(ctx, companyID)
	if err != nil {
		return nil, err
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, rules.Location())
	to := from.AddDate(0, 1, -1)

	records, err := s.attendanceRepo.GetByCompanyPeriod(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	return s.aggregator.FoldCompany(records, rules), nil
}

// Rules loads the active ATTENDANCE_RULES document. A company that never
// configured one gets neutral rules (no grace, no rounding) instead of a
// failed aggregation.
func (s *AttendanceService) Rules(ctx context.Context, companyID string) (policy.AttendanceRulesConfig, error) {
	p, err := s.policies.ActiveFor(ctx, companyID, policy.PolicyTypeAttendanceRules)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotConfigured) {
			return policy.AttendanceRulesConfig{}, nil
		}
		return policy.AttendanceRulesConfig{}, err
	}
	return p.AttendanceRules()
}
