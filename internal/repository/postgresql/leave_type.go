package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gajihub/payroll-core-go/internal/domain/leave"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type leaveTypeRepository struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepository{db: db}
}

const leaveTypeColumns = `id, company_id, code, name, is_paid, is_active,
	max_balance, accrual_rate, carryover_allowed, carryover_max,
	expires_after_months, requires_attachment, created_at, updated_at`

func scanLeaveType(row pgx.Row) (leave.LeaveType, error) {
	var t leave.LeaveType
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Code, &t.Name, &t.IsPaid, &t.IsActive,
		&t.MaxBalance, &t.AccrualRate, &t.CarryoverAllowed, &t.CarryoverMax,
		&t.ExpiresAfterMonths, &t.RequiresAttachment, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *leaveTypeRepository) Create(ctx context.Context, leaveType leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_types (
			id, company_id, code, name, is_paid, is_active,
			max_balance, accrual_rate, carryover_allowed, carryover_max,
			expires_after_months, requires_attachment
		) VALUES (gen_random_uuid(), $1, $2, $3, $4, true, $5, $6, $7, $8, $9, $10)
		RETURNING ` + leaveTypeColumns + `
	`

	t, err := scanLeaveType(q.QueryRow(ctx, query,
		leaveType.CompanyID, leaveType.Code, leaveType.Name, leaveType.IsPaid,
		leaveType.MaxBalance, leaveType.AccrualRate, leaveType.CarryoverAllowed,
		leaveType.CarryoverMax, leaveType.ExpiresAfterMonths, leaveType.RequiresAttachment,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return leave.LeaveType{}, leave.ErrLeaveTypeCodeExists
		}
		return leave.LeaveType{}, fmt.Errorf("failed to create leave type: %w", err)
	}

	return t, nil
}

func (r *leaveTypeRepository) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveTypeColumns + `
		FROM leave_types
		WHERE id = $1 AND company_id = $2
	`

	t, err := scanLeaveType(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type: %w", err)
	}

	return t, nil
}

func (r *leaveTypeRepository) GetByCompanyID(ctx context.Context, companyID string, activeOnly bool) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveTypeColumns + `
		FROM leave_types
		WHERE company_id = $1
	`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY code"

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		t, err := scanLeaveType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave type: %w", err)
		}
		types = append(types, t)
	}

	return types, nil
}

func (r *leaveTypeRepository) Update(ctx context.Context, companyID string, req leave.UpdateLeaveTypeRequest) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	setParts := []string{"updated_at = NOW()"}
	args := []interface{}{req.ID, companyID}
	argIdx := 3

	addSet := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.IsPaid != nil {
		addSet("is_paid", *req.IsPaid)
	}
	if req.IsActive != nil {
		addSet("is_active", *req.IsActive)
	}
	if req.MaxBalance != nil {
		addSet("max_balance", *req.MaxBalance)
	}
	if req.AccrualRate != nil {
		addSet("accrual_rate", *req.AccrualRate)
	}
	if req.CarryoverAllowed != nil {
		addSet("carryover_allowed", *req.CarryoverAllowed)
	}
	if req.CarryoverMax != nil {
		addSet("carryover_max", *req.CarryoverMax)
	}
	if req.ExpiresAfterMonths != nil {
		addSet("expires_after_months", *req.ExpiresAfterMonths)
	}
	if req.RequiresAttachment != nil {
		addSet("requires_attachment", *req.RequiresAttachment)
	}

	query := fmt.Sprintf(`
		UPDATE leave_types
		SET %s
		WHERE id = $1 AND company_id = $2
		RETURNING %s
	`, strings.Join(setParts, ", "), leaveTypeColumns)

	t, err := scanLeaveType(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to update leave type: %w", err)
	}

	return t, nil
}

// Deactivate soft-deletes: the row stays so historical requests keep their
// type reference.
func (r *leaveTypeRepository) Deactivate(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_types
		SET is_active = false, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to deactivate leave type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveTypeNotFound
	}

	return nil
}
