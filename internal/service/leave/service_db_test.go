package leave

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gajihub/payroll-core-go/internal/domain/audit"
	"github.com/gajihub/payroll-core-go/internal/domain/leave"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/gajihub/payroll-core-go/internal/pkg/keylock"
	"github.com/gajihub/payroll-core-go/internal/repository/postgresql"
)

var (
	testDBOnce sync.Once
	testDB     *database.DB
	testDBErr  error
)

// testDatabase connects to the database named by TEST_DATABASE_URL. Tests
// using it run real SQL and are skipped when no test database is provisioned.
func testDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(dsn)
	})
	require.NoError(t, testDBErr, "failed to connect to test database")

	return testDB
}

func truncateTables(t *testing.T, ctx context.Context, db *database.DB, tables ...string) {
	t.Helper()

	for _, table := range tables {
		_, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err)
	}
}

// authedContext builds a context carrying verified claims, the shape the
// jwtauth middleware leaves behind for handlers.
func authedContext(t *testing.T, companyID, userID string) context.Context {
	t.Helper()

	tok := jwxjwt.New()
	require.NoError(t, tok.Set("company_id", companyID))
	require.NoError(t, tok.Set("user_id", userID))
	return jwtauth.NewContext(context.Background(), tok, nil)
}

// repoStore adapts the policy repository to the read surface services take.
type repoStore struct {
	repo policy.PolicyRepository
}

func (s repoStore) ActiveFor(ctx context.Context, companyID string, policyType policy.PolicyType) (policy.Policy, error) {
	return s.repo.GetActive(ctx, companyID, policyType)
}

func seedEmployee(t *testing.T, ctx context.Context, db *database.DB, companyID string) string {
	t.Helper()

	employeeID := uuid.NewString()
	_, err := db.Exec(ctx, `
		INSERT INTO employees (id, company_id, employee_code, full_name, hire_date, status)
		VALUES ($1, $2, 'EMP-001', 'Budi Santoso', '2020-01-01', 'active')
	`, employeeID, companyID)
	require.NoError(t, err)
	return employeeID
}

func TestUpdateLeaveRequest_RangeExtension(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	truncateTables(t, ctx, db, "leave_requests", "leave_types", "policies", "employees")

	companyID := uuid.NewString()
	employeeID := seedEmployee(t, ctx, db, companyID)

	policyRepo := postgresql.NewPolicyRepository(db)
	_, err := policyRepo.CreateVersion(ctx, companyID, policy.PolicyTypeLeavePolicy, policy.Config(`{"accrual_method":"none"}`))
	require.NoError(t, err)

	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveType, err := leaveTypeRepo.Create(ctx, leave.LeaveType{
		CompanyID:  companyID,
		Code:       "AL",
		Name:       "Annual Leave",
		IsPaid:     true,
		MaxBalance: decPtr("12"),
	})
	require.NoError(t, err)

	svc := NewLeaveService(
		db,
		leaveTypeRepo,
		postgresql.NewLeaveRequestRepository(db),
		postgresql.NewEmployeeDirectory(db),
		repoStore{repo: policyRepo},
		NewBalanceCalculator(),
		keylock.New(),
		audit.NewSlogRecorder(slog.New(slog.NewJSONHandler(io.Discard, nil))),
	)

	authed := authedContext(t, companyID, "user-1")

	created, err := svc.CreateLeaveRequest(authed, leave.CreateLeaveRequestRequest{
		EmployeeID:  employeeID,
		LeaveTypeID: leaveType.ID,
		StartDate:   "2024-04-09",
		EndDate:     "2024-04-10",
		Reason:      "family matters",
	})
	require.NoError(t, err)

	t.Run("extension past the balance is rejected", func(t *testing.T) {
		// Apr 9 to Apr 24 holds 14 leave-consuming days against a pool of 12.
		end := "2024-04-24"
		_, err := svc.UpdateLeaveRequest(authed, leave.UpdateLeaveRequestRequest{
			ID:      created.ID,
			EndDate: &end,
		})
		assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	})

	t.Run("rejected extension leaves the request untouched", func(t *testing.T) {
		current, err := svc.GetLeaveRequest(authed, created.ID)
		require.NoError(t, err)
		assert.True(t, current.Days.Equal(dec("2")), "days = %s", current.Days)
	})

	t.Run("extension within the balance recomputes days", func(t *testing.T) {
		end := "2024-04-12"
		updated, err := svc.UpdateLeaveRequest(authed, leave.UpdateLeaveRequestRequest{
			ID:      created.ID,
			EndDate: &end,
		})
		require.NoError(t, err)
		assert.True(t, updated.Days.Equal(dec("4")), "days = %s", updated.Days)
	})
}
