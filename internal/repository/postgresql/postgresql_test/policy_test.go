package postgresql_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/repository/postgresql"
)

func TestPolicyRepository_VersionChain(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	truncateTables(t, ctx, db, "policies")

	repo := postgresql.NewPolicyRepository(db)
	companyID := uuid.NewString()

	v1, err := repo.CreateVersion(ctx, companyID, policy.PolicyTypePayrollConfig, policy.Config(`{"currency":"IDR"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.True(t, v1.IsActive)

	v2, err := repo.CreateVersion(ctx, companyID, policy.PolicyTypePayrollConfig, policy.Config(`{"currency":"IDR","thr_month":6}`))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	assert.True(t, v2.IsActive)

	active, err := repo.GetActive(ctx, companyID, policy.PolicyTypePayrollConfig)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, active.ID)

	prior, err := repo.GetByID(ctx, v1.ID)
	require.NoError(t, err)
	assert.False(t, prior.IsActive)

	history, err := repo.GetHistory(ctx, companyID, policy.PolicyTypePayrollConfig)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Version)
	assert.Equal(t, 1, history[1].Version)
}

func TestPolicyRepository_CreateVersionLeavesOtherTypesActive(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	truncateTables(t, ctx, db, "policies")

	repo := postgresql.NewPolicyRepository(db)
	companyID := uuid.NewString()

	attendance, err := repo.CreateVersion(ctx, companyID, policy.PolicyTypeAttendanceRules, policy.Config(`{"timezone":"Asia/Jakarta"}`))
	require.NoError(t, err)

	_, err = repo.CreateVersion(ctx, companyID, policy.PolicyTypePayrollConfig, policy.Config(`{"currency":"IDR"}`))
	require.NoError(t, err)
	_, err = repo.CreateVersion(ctx, companyID, policy.PolicyTypePayrollConfig, policy.Config(`{"currency":"USD"}`))
	require.NoError(t, err)

	// Versioning one type must not deactivate another.
	activeAttendance, err := repo.GetActive(ctx, companyID, policy.PolicyTypeAttendanceRules)
	require.NoError(t, err)
	assert.Equal(t, attendance.ID, activeAttendance.ID)
	assert.Equal(t, 1, activeAttendance.Version)
	assert.True(t, activeAttendance.IsActive)
}

func TestPolicyRepository_CompanyScope(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	truncateTables(t, ctx, db, "policies")

	repo := postgresql.NewPolicyRepository(db)
	companyA := uuid.NewString()
	companyB := uuid.NewString()

	_, err := repo.CreateVersion(ctx, companyA, policy.PolicyTypeLeavePolicy, policy.Config(`{"accrual_method":"none"}`))
	require.NoError(t, err)

	_, err = repo.GetActive(ctx, companyB, policy.PolicyTypeLeavePolicy)
	assert.ErrorIs(t, err, policy.ErrPolicyNotConfigured)

	b, err := repo.CreateVersion(ctx, companyB, policy.PolicyTypeLeavePolicy, policy.Config(`{"accrual_method":"monthly"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, b.Version)
}
