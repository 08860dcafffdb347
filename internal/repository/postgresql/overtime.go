package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/overtime"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRequestRepository {
	return &overtimeRepository{db: db}
}

const overtimeColumns = `id, employee_id, company_id, date, duration_minutes, reason, notes,
	status, calculated_amount, approved_by, approved_at, rejection_reason, created_at, updated_at`

func scanOvertimeRequest(row pgx.Row) (overtime.OvertimeRequest, error) {
	var o overtime.OvertimeRequest
	err := row.Scan(
		&o.ID, &o.EmployeeID, &o.CompanyID, &o.Date, &o.DurationMinutes, &o.Reason, &o.Notes,
		&o.Status, &o.CalculatedAmount, &o.ApprovedBy, &o.ApprovedAt, &o.RejectionReason,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// Create relies on the partial unique index
// uk_overtime_employee_date ON overtime_requests (employee_id, date) WHERE status <> 'rejected'
// to enforce one non-rejected request per employee per day.
func (r *overtimeRepository) Create(ctx context.Context, request overtime.OvertimeRequest) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_requests (
			id, employee_id, company_id, date, duration_minutes, reason, notes, status
		) VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + overtimeColumns + `
	`

	o, err := scanOvertimeRequest(q.QueryRow(ctx, query,
		request.EmployeeID, request.CompanyID, request.Date, request.DurationMinutes,
		request.Reason, request.Notes, request.Status,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return overtime.OvertimeRequest{}, overtime.ErrDuplicateOvertimeRequest
		}
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to create overtime request: %w", err)
	}

	return o, nil
}

func (r *overtimeRepository) GetByID(ctx context.Context, id string, companyID string) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + overtimeColumns + `
		FROM overtime_requests
		WHERE id = $1 AND company_id = $2
	`

	o, err := scanOvertimeRequest(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.OvertimeRequest{}, overtime.ErrOvertimeRequestNotFound
		}
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to get overtime request: %w", err)
	}

	return o, nil
}

func (r *overtimeRepository) GetByEmployeeID(ctx context.Context, employeeID string) ([]overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + overtimeColumns + `
		FROM overtime_requests
		WHERE employee_id = $1
		ORDER BY date DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime requests: %w", err)
	}
	defer rows.Close()

	return collectOvertimeRequests(rows)
}

func (r *overtimeRepository) GetByCompanyID(ctx context.Context, companyID string, status *overtime.OvertimeRequestStatus) ([]overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + overtimeColumns + `
		FROM overtime_requests
		WHERE company_id = $1
	`
	args := []interface{}{companyID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, string(*status))
	}
	query += " ORDER BY date DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime requests: %w", err)
	}
	defer rows.Close()

	return collectOvertimeRequests(rows)
}

func (r *overtimeRepository) GetApprovedInPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + overtimeColumns + `
		FROM overtime_requests
		WHERE employee_id = $1 AND status = 'approved' AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved overtime requests: %w", err)
	}
	defer rows.Close()

	return collectOvertimeRequests(rows)
}

func (r *overtimeRepository) Update(ctx context.Context, request overtime.OvertimeRequest) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests
		SET status = $2, calculated_amount = $3, approved_by = $4, approved_at = $5,
			rejection_reason = $6, notes = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + overtimeColumns + `
	`

	o, err := scanOvertimeRequest(q.QueryRow(ctx, query,
		request.ID, request.Status, request.CalculatedAmount, request.ApprovedBy,
		request.ApprovedAt, request.RejectionReason, request.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.OvertimeRequest{}, overtime.ErrOvertimeRequestNotFound
		}
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to update overtime request: %w", err)
	}

	return o, nil
}

func collectOvertimeRequests(rows pgx.Rows) ([]overtime.OvertimeRequest, error) {
	var requests []overtime.OvertimeRequest
	for rows.Next() {
		o, err := scanOvertimeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		requests = append(requests, o)
	}
	return requests, nil
}
