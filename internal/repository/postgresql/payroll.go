package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/gajihub/payroll-core-go/internal/domain/payroll"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== RUNS ==========

const runColumns = `id, company_id, period_year, period_month, status, total_amount,
	locked_at, locked_by, notes, created_at, updated_at`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var r payroll.PayrollRun
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.PeriodYear, &r.PeriodMonth, &r.Status, &r.TotalAmount,
		&r.LockedAt, &r.LockedBy, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (id, company_id, period_year, period_month, status, notes)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING ` + runColumns + `
	`

	created, err := scanRun(q.QueryRow(ctx, query,
		run.CompanyID, run.PeriodYear, run.PeriodMonth, run.Status, run.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	return r.getRun(ctx, id, companyID, false)
}

func (r *payrollRepository) GetRunByIDForUpdate(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	return r.getRun(ctx, id, companyID, true)
}

func (r *payrollRepository) getRun(ctx context.Context, id string, companyID string, forUpdate bool) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE id = $1 AND company_id = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, companyID string) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE company_id = $1
		ORDER BY period_year DESC, period_month DESC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}

func (r *payrollRepository) UpdateRunStatus(ctx context.Context, run payroll.PayrollRun) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_runs
		SET status = $2, total_amount = $3, locked_at = $4, locked_by = $5, updated_at = NOW()
		WHERE id = $1
	`, run.ID, run.Status, run.TotalAmount, run.LockedAt, run.LockedBy)
	if err != nil {
		return fmt.Errorf("failed to update payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRunNotFound
	}

	return nil
}

func (r *payrollRepository) DeleteRun(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	// Items cascade via fk_payroll_items_run.
	tag, err := q.Exec(ctx, `DELETE FROM payroll_runs WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRunNotFound
	}

	return nil
}

// ========== ITEMS ==========

const itemColumns = `id, payroll_run_id, employee_id, rate_type, rate_used,
	base_pay, overtime_pay, allowances, bonuses, transport_bonus, lunch_bonus, thr, deductions,
	bpjs_kesehatan_employee, bpjs_kesehatan_employer,
	bpjs_ketenagakerjaan_employee, bpjs_ketenagakerjaan_employer,
	pph21, gross_pay, net_pay,
	attendance_days, total_work_minutes, overtime_minutes, pinned_fields,
	created_at, updated_at`

func scanItem(row pgx.Row) (payroll.PayrollItem, error) {
	var it payroll.PayrollItem
	err := row.Scan(
		&it.ID, &it.PayrollRunID, &it.EmployeeID, &it.RateType, &it.RateUsed,
		&it.BasePay, &it.OvertimePay, &it.Allowances, &it.Bonuses, &it.TransportBonus,
		&it.LunchBonus, &it.THR, &it.Deductions,
		&it.BPJSKesehatanEmployee, &it.BPJSKesehatanEmployer,
		&it.BPJSKetenagakerjaanEmployee, &it.BPJSKetenagakerjaanEmployer,
		&it.PPh21, &it.GrossPay, &it.NetPay,
		&it.AttendanceDays, &it.TotalWorkMinutes, &it.OvertimeMinutes, &it.Pinned,
		&it.CreatedAt, &it.UpdatedAt,
	)
	return it, err
}

func (r *payrollRepository) CreateItems(ctx context.Context, items []payroll.PayrollItem) ([]payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_items (
			id, payroll_run_id, employee_id, rate_type, rate_used,
			base_pay, overtime_pay, allowances, bonuses, transport_bonus, lunch_bonus, thr, deductions,
			bpjs_kesehatan_employee, bpjs_kesehatan_employer,
			bpjs_ketenagakerjaan_employee, bpjs_ketenagakerjaan_employer,
			pph21, gross_pay, net_pay,
			attendance_days, total_work_minutes, overtime_minutes, pinned_fields
		) VALUES (
			gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		RETURNING ` + itemColumns + `
	`

	created := make([]payroll.PayrollItem, 0, len(items))
	for _, it := range items {
		row := q.QueryRow(ctx, query,
			it.PayrollRunID, it.EmployeeID, it.RateType, it.RateUsed,
			it.BasePay, it.OvertimePay, it.Allowances, it.Bonuses, it.TransportBonus,
			it.LunchBonus, it.THR, it.Deductions,
			it.BPJSKesehatanEmployee, it.BPJSKesehatanEmployer,
			it.BPJSKetenagakerjaanEmployee, it.BPJSKetenagakerjaanEmployer,
			it.PPh21, it.GrossPay, it.NetPay,
			it.AttendanceDays, it.TotalWorkMinutes, it.OvertimeMinutes, it.Pinned,
		)
		saved, err := scanItem(row)
		if err != nil {
			return nil, fmt.Errorf("failed to create payroll item for employee %s: %w", it.EmployeeID, err)
		}
		created = append(created, saved)
	}

	return created, nil
}

func (r *payrollRepository) GetItemsByRunID(ctx context.Context, runID string) ([]payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pi.id, pi.payroll_run_id, pi.employee_id, pi.rate_type, pi.rate_used,
			pi.base_pay, pi.overtime_pay, pi.allowances, pi.bonuses, pi.transport_bonus,
			pi.lunch_bonus, pi.thr, pi.deductions,
			pi.bpjs_kesehatan_employee, pi.bpjs_kesehatan_employer,
			pi.bpjs_ketenagakerjaan_employee, pi.bpjs_ketenagakerjaan_employer,
			pi.pph21, pi.gross_pay, pi.net_pay,
			pi.attendance_days, pi.total_work_minutes, pi.overtime_minutes, pi.pinned_fields,
			pi.created_at, pi.updated_at,
			e.full_name, e.employee_code
		FROM payroll_items pi
		JOIN employees e ON e.id = pi.employee_id
		WHERE pi.payroll_run_id = $1
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll items: %w", err)
	}
	defer rows.Close()

	var items []payroll.PayrollItem
	for rows.Next() {
		var it payroll.PayrollItem
		if err := rows.Scan(
			&it.ID, &it.PayrollRunID, &it.EmployeeID, &it.RateType, &it.RateUsed,
			&it.BasePay, &it.OvertimePay, &it.Allowances, &it.Bonuses, &it.TransportBonus,
			&it.LunchBonus, &it.THR, &it.Deductions,
			&it.BPJSKesehatanEmployee, &it.BPJSKesehatanEmployer,
			&it.BPJSKetenagakerjaanEmployee, &it.BPJSKetenagakerjaanEmployer,
			&it.PPh21, &it.GrossPay, &it.NetPay,
			&it.AttendanceDays, &it.TotalWorkMinutes, &it.OvertimeMinutes, &it.Pinned,
			&it.CreatedAt, &it.UpdatedAt,
			&it.EmployeeName, &it.EmployeeCode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll item: %w", err)
		}
		items = append(items, it)
	}

	return items, nil
}

func (r *payrollRepository) GetItemByID(ctx context.Context, id string) (payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + itemColumns + `
		FROM payroll_items
		WHERE id = $1
	`

	it, err := scanItem(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollItem{}, payroll.ErrPayrollItemNotFound
		}
		return payroll.PayrollItem{}, fmt.Errorf("failed to get payroll item: %w", err)
	}

	return it, nil
}

// ReplaceItemComputed rewrites every field a recalculation owns, leaving the
// pinned set untouched.
func (r *payrollRepository) ReplaceItemComputed(ctx context.Context, item payroll.PayrollItem) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_items
		SET rate_type = $2, rate_used = $3,
			base_pay = $4, overtime_pay = $5, allowances = $6, bonuses = $7,
			transport_bonus = $8, lunch_bonus = $9, thr = $10, deductions = $11,
			bpjs_kesehatan_employee = $12, bpjs_kesehatan_employer = $13,
			bpjs_ketenagakerjaan_employee = $14, bpjs_ketenagakerjaan_employer = $15,
			pph21 = $16, gross_pay = $17, net_pay = $18,
			attendance_days = $19, total_work_minutes = $20, overtime_minutes = $21,
			updated_at = NOW()
		WHERE id = $1
	`,
		item.ID, item.RateType, item.RateUsed,
		item.BasePay, item.OvertimePay, item.Allowances, item.Bonuses,
		item.TransportBonus, item.LunchBonus, item.THR, item.Deductions,
		item.BPJSKesehatanEmployee, item.BPJSKesehatanEmployer,
		item.BPJSKetenagakerjaanEmployee, item.BPJSKetenagakerjaanEmployer,
		item.PPh21, item.GrossPay, item.NetPay,
		item.AttendanceDays, item.TotalWorkMinutes, item.OvertimeMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollItemNotFound
	}

	return nil
}

// UpdateItemManual writes the manually-edited amounts, the recomputed totals
// and the extended pinned set.
func (r *payrollRepository) UpdateItemManual(ctx context.Context, item payroll.PayrollItem) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_items
		SET allowances = $2, bonuses = $3, transport_bonus = $4, lunch_bonus = $5,
			thr = $6, deductions = $7,
			bpjs_kesehatan_employee = $8, bpjs_kesehatan_employer = $9,
			bpjs_ketenagakerjaan_employee = $10, bpjs_ketenagakerjaan_employer = $11,
			pph21 = $12, gross_pay = $13, net_pay = $14, pinned_fields = $15,
			updated_at = NOW()
		WHERE id = $1
	`,
		item.ID, item.Allowances, item.Bonuses, item.TransportBonus, item.LunchBonus,
		item.THR, item.Deductions,
		item.BPJSKesehatanEmployee, item.BPJSKesehatanEmployer,
		item.BPJSKetenagakerjaanEmployee, item.BPJSKetenagakerjaanEmployer,
		item.PPh21, item.GrossPay, item.NetPay, item.Pinned,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollItemNotFound
	}

	return nil
}

func (r *payrollRepository) DeleteItemsByRunID(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_items WHERE payroll_run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to delete payroll items: %w", err)
	}

	return nil
}

// ========== AGGREGATIONS ==========

func (r *payrollRepository) GetSummary(ctx context.Context, companyID string, year, month int) (payroll.PayrollSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(pi.id),
			   COALESCE(SUM(pi.gross_pay), 0),
			   COALESCE(SUM(pi.net_pay), 0),
			   COALESCE(SUM(pi.pph21), 0)
		FROM payroll_items pi
		JOIN payroll_runs pr ON pr.id = pi.payroll_run_id
		WHERE pr.company_id = $1 AND pr.period_year = $2 AND pr.period_month = $3
	`

	summary := payroll.PayrollSummaryResponse{
		PeriodYear:  year,
		PeriodMonth: month,
		TotalGross:  decimal.Zero,
		TotalNet:    decimal.Zero,
		TotalPPh21:  decimal.Zero,
	}
	err := q.QueryRow(ctx, query, companyID, year, month).Scan(
		&summary.EmployeeCount, &summary.TotalGross, &summary.TotalNet, &summary.TotalPPh21,
	)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	return summary, nil
}
