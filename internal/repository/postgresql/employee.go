package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// employeeDirectory is a read-only view over the tables owned by the external
// employee service. The core never writes them.
type employeeDirectory struct {
	db *database.DB
}

func NewEmployeeDirectory(db *database.DB) employee.Directory {
	return &employeeDirectory{db: db}
}

func (r *employeeDirectory) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_code, full_name, hire_date, status
		FROM employees
		WHERE id = $1
	`

	var e employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.CompanyID, &e.EmployeeCode, &e.FullName, &e.HireDate, &e.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

func (r *employeeDirectory) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_code, full_name, hire_date, status
		FROM employees
		WHERE company_id = $1 AND status = 'active'
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.EmployeeCode, &e.FullName, &e.HireDate, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	return employees, nil
}

func (r *employeeDirectory) GetContract(ctx context.Context, employeeID string) (employee.Contract, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, rate_type, base_salary, hourly_rate, daily_rate,
			   allowances, transport_bonus, lunch_bonus
		FROM employment_contracts
		WHERE employee_id = $1
	`

	var c employee.Contract
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&c.EmployeeID, &c.RateType, &c.BaseSalary, &c.HourlyRate, &c.DailyRate,
		&c.Allowances, &c.TransportBonus, &c.LunchBonus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Contract{}, employee.ErrContractNotFound
		}
		return employee.Contract{}, fmt.Errorf("failed to get employment contract: %w", err)
	}

	return c, nil
}
