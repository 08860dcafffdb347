package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusResigned EmploymentStatus = "resigned"
)

// Employee is the slice of the external employee directory this core reads.
// Employee CRUD lives elsewhere.
type Employee struct {
	ID           string
	CompanyID    string
	EmployeeCode string
	FullName     string
	HireDate     time.Time
	Status       EmploymentStatus
}

// RateType is the pay basis of an employment contract
type RateType string

const (
	RateTypeMonthly RateType = "monthly"
	RateTypeHourly  RateType = "hourly"
	RateTypeDaily   RateType = "daily"
)

// Contract holds the employment terms payroll computes from. Exactly one of
// BaseSalary, HourlyRate, DailyRate is meaningful, selected by RateType.
type Contract struct {
	EmployeeID     string
	RateType       RateType
	BaseSalary     *decimal.Decimal
	HourlyRate     *decimal.Decimal
	DailyRate      *decimal.Decimal
	Allowances     decimal.Decimal
	TransportBonus decimal.Decimal
	LunchBonus     decimal.Decimal
}
