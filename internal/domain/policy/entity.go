package policy

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PolicyType enum - one versioned document stream per type per company
type PolicyType string

const (
	PolicyTypeAttendanceRules PolicyType = "attendance_rules"
	PolicyTypeOvertimePolicy  PolicyType = "overtime_policy"
	PolicyTypeLeavePolicy     PolicyType = "leave_policy"
	PolicyTypePayrollConfig   PolicyType = "payroll_config"
)

func (t PolicyType) Valid() bool {
	switch t {
	case PolicyTypeAttendanceRules, PolicyTypeOvertimePolicy, PolicyTypeLeavePolicy, PolicyTypePayrollConfig:
		return true
	}
	return false
}

// Policy entity. Immutable once created: policy evolution is a new version with the
// active pointer moved, never an in-place rewrite, so historical payroll runs stay
// reproducible against the version that was active when they ran.
type Policy struct {
	ID        string
	CompanyID string
	Type      PolicyType
	Version   int
	Config    Config
	IsActive  bool
	CreatedAt time.Time
}

// Config is the raw JSONB policy document. Consumers decode it into the typed
// config struct matching the policy type.
type Config json.RawMessage

// Value implements driver.Valuer for database storage
func (c Config) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	return []byte(c), nil
}

// Scan implements sql.Scanner for database retrieval
func (c *Config) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*c = append((*c)[0:0], v...)
		return nil
	case string:
		*c = Config(v)
		return nil
	}
	return errors.New("failed to scan policy config: invalid type")
}

func (c Config) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return []byte(c), nil
}

func (c *Config) UnmarshalJSON(data []byte) error {
	*c = append((*c)[0:0], data...)
	return nil
}

// AttendanceRulesConfig - ATTENDANCE_RULES document
type AttendanceRulesConfig struct {
	Timezone                string `json:"timezone"`
	GracePeriodMinutes      int    `json:"grace_period_minutes"`
	RoundingEnabled         bool   `json:"rounding_enabled"`
	RoundingIntervalMinutes int    `json:"rounding_interval_minutes"`
	MinimumWorkMinutes      int    `json:"minimum_work_minutes"`
}

// Location resolves the configured timezone, falling back to UTC when the
// document carries none or an unknown zone name.
func (c AttendanceRulesConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OvertimeRule - per day-type overtime pay rule
type OvertimeRule struct {
	Enabled        bool             `json:"enabled"`
	Multiplier     decimal.Decimal  `json:"multiplier"`
	MaxHours       *decimal.Decimal `json:"max_hours,omitempty"`
	MinimumPayment decimal.Decimal  `json:"minimum_payment"`
}

// OvertimePolicyConfig - OVERTIME_POLICY document
type OvertimePolicyConfig struct {
	Weekday OvertimeRule `json:"weekday"`
	Weekend OvertimeRule `json:"weekend"`
	Holiday OvertimeRule `json:"holiday"`
}

// DayType classifies the calendar day an overtime request falls on
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

func (c OvertimePolicyConfig) RuleFor(dayType DayType) (OvertimeRule, error) {
	switch dayType {
	case DayTypeWeekday:
		return c.Weekday, nil
	case DayTypeWeekend:
		return c.Weekend, nil
	case DayTypeHoliday:
		return c.Holiday, nil
	}
	return OvertimeRule{}, fmt.Errorf("unknown day type %q", dayType)
}

// LeavePolicyConfig - LEAVE_POLICY document, company-wide defaults.
// Per-type overrides on a LeaveType take precedence field by field.
type LeavePolicyConfig struct {
	AccrualMethod      string           `json:"accrual_method"` // 'none', 'monthly'
	AccrualRate        decimal.Decimal  `json:"accrual_rate"`   // days per month
	CarryoverAllowed   bool             `json:"carryover_allowed"`
	CarryoverMax       *decimal.Decimal `json:"carryover_max,omitempty"`
	ExpiresAfterMonths *int             `json:"expires_after_months,omitempty"`
}

const (
	AccrualMethodNone    = "none"
	AccrualMethodMonthly = "monthly"
)

// DeductionRule - statutory deduction, either a percentage of the deduction
// base (gross pay, optionally capped) or a fixed amount per period.
type DeductionRule struct {
	Method          string           `json:"method"` // 'percentage', 'fixed'
	EmployeePercent decimal.Decimal  `json:"employee_percent"`
	EmployerPercent decimal.Decimal  `json:"employer_percent"`
	EmployeeFixed   decimal.Decimal  `json:"employee_fixed"`
	EmployerFixed   decimal.Decimal  `json:"employer_fixed"`
	BaseCap         *decimal.Decimal `json:"base_cap,omitempty"`
}

const (
	DeductionMethodPercentage = "percentage"
	DeductionMethodFixed      = "fixed"
)

// PayrollConfigDoc - PAYROLL_CONFIG document
type PayrollConfigDoc struct {
	MonthlyStandardHours  decimal.Decimal `json:"monthly_standard_hours"`
	DailyStandardHours    decimal.Decimal `json:"daily_standard_hours"`
	MonthlyWorkingDays    decimal.Decimal `json:"monthly_working_days"`
	ProrateUnpaidAbsence  bool            `json:"prorate_unpaid_absence"`
	THRMonth              *int            `json:"thr_month,omitempty"` // period month that pays THR, one month base
	BPJSKesehatan         DeductionRule   `json:"bpjs_kesehatan"`
	BPJSKetenagakerjaan   DeductionRule   `json:"bpjs_ketenagakerjaan"`
	PPh21                 DeductionRule   `json:"pph21"`
}

func (p Policy) AttendanceRules() (AttendanceRulesConfig, error) {
	var cfg AttendanceRulesConfig
	if err := p.decodeInto(PolicyTypeAttendanceRules, &cfg); err != nil {
		return AttendanceRulesConfig{}, err
	}
	return cfg, nil
}

func (p Policy) OvertimePolicy() (OvertimePolicyConfig, error) {
	var cfg OvertimePolicyConfig
	if err := p.decodeInto(PolicyTypeOvertimePolicy, &cfg); err != nil {
		return OvertimePolicyConfig{}, err
	}
	return cfg, nil
}

func (p Policy) LeavePolicy() (LeavePolicyConfig, error) {
	var cfg LeavePolicyConfig
	if err := p.decodeInto(PolicyTypeLeavePolicy, &cfg); err != nil {
		return LeavePolicyConfig{}, err
	}
	return cfg, nil
}

func (p Policy) PayrollConfig() (PayrollConfigDoc, error) {
	var cfg PayrollConfigDoc
	if err := p.decodeInto(PolicyTypePayrollConfig, &cfg); err != nil {
		return PayrollConfigDoc{}, err
	}
	return cfg, nil
}

func (p Policy) decodeInto(expected PolicyType, dst interface{}) error {
	if p.Type != expected {
		return fmt.Errorf("policy %s has type %s, want %s", p.ID, p.Type, expected)
	}
	if len(p.Config) == 0 {
		return fmt.Errorf("policy %s has empty config", p.ID)
	}
	if err := json.Unmarshal(p.Config, dst); err != nil {
		return fmt.Errorf("failed to decode %s config: %w", expected, err)
	}
	return nil
}
