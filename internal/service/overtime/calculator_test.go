package overtime

import (
	"testing"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/gajihub/payroll-core-go/internal/domain/overtime"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCalculator_Classify(t *testing.T) {
	calc := NewCalculator()

	cases := []struct {
		name      string
		date      time.Time
		isHoliday bool
		want      policy.DayType
	}{
		{"wednesday", time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC), false, policy.DayTypeWeekday},
		{"saturday", time.Date(2024, time.April, 13, 0, 0, 0, 0, time.UTC), false, policy.DayTypeWeekend},
		{"sunday", time.Date(2024, time.April, 14, 0, 0, 0, 0, time.UTC), false, policy.DayTypeWeekend},
		{"holiday on a weekday", time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC), true, policy.DayTypeHoliday},
		{"holiday wins over weekend", time.Date(2024, time.April, 13, 0, 0, 0, 0, time.UTC), true, policy.DayTypeHoliday},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, calc.Classify(tc.date, tc.isHoliday))
		})
	}
}

func TestCalculator_HourlyEquivalentRate(t *testing.T) {
	calc := NewCalculator()
	cfg := policy.PayrollConfigDoc{
		MonthlyStandardHours: dec("173"),
		DailyStandardHours:   dec("8"),
	}

	t.Run("hourly contract uses its rate directly", func(t *testing.T) {
		rate, err := calc.HourlyEquivalentRate(employee.Contract{
			RateType:   employee.RateTypeHourly,
			HourlyRate: decPtr("50000"),
		}, cfg)
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("50000")))
	})

	t.Run("monthly contract divides by standard hours", func(t *testing.T) {
		rate, err := calc.HourlyEquivalentRate(employee.Contract{
			RateType:   employee.RateTypeMonthly,
			BaseSalary: decPtr("8650000"),
		}, cfg)
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("50000")), "rate = %s", rate)
	})

	t.Run("daily contract divides by daily hours", func(t *testing.T) {
		rate, err := calc.HourlyEquivalentRate(employee.Contract{
			RateType:  employee.RateTypeDaily,
			DailyRate: decPtr("400000"),
		}, cfg)
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("50000")), "rate = %s", rate)
	})

	t.Run("missing rate fails", func(t *testing.T) {
		_, err := calc.HourlyEquivalentRate(employee.Contract{RateType: employee.RateTypeHourly}, cfg)
		assert.Error(t, err)
	})

	t.Run("zero standard hours fails", func(t *testing.T) {
		_, err := calc.HourlyEquivalentRate(employee.Contract{
			RateType:   employee.RateTypeMonthly,
			BaseSalary: decPtr("8650000"),
		}, policy.PayrollConfigDoc{})
		assert.Error(t, err)
	})
}

func TestCalculator_Calculate(t *testing.T) {
	calc := NewCalculator()

	t.Run("weekend hours cap at max hours", func(t *testing.T) {
		rule := policy.OvertimeRule{
			Enabled:    true,
			Multiplier: dec("2.0"),
			MaxHours:   decPtr("8"),
		}

		// 600 minutes is 10 hours, capped to 8: 8 x 50000 x 2.0.
		amount, err := calc.Calculate(600, dec("50000"), rule)
		require.NoError(t, err)
		assert.True(t, amount.Equal(dec("800000")), "amount = %s", amount)
	})

	t.Run("minimum payment floors small amounts", func(t *testing.T) {
		rule := policy.OvertimeRule{
			Enabled:        true,
			Multiplier:     dec("3.0"),
			MinimumPayment: dec("300000"),
		}

		// 60 minutes at 50000 x 3.0 is 150000, floored to 300000.
		amount, err := calc.Calculate(60, dec("50000"), rule)
		require.NoError(t, err)
		assert.True(t, amount.Equal(dec("300000")), "amount = %s", amount)
	})

	t.Run("amount above the floor is untouched", func(t *testing.T) {
		rule := policy.OvertimeRule{
			Enabled:        true,
			Multiplier:     dec("1.5"),
			MinimumPayment: dec("100000"),
		}

		amount, err := calc.Calculate(120, dec("50000"), rule)
		require.NoError(t, err)
		assert.True(t, amount.Equal(dec("150000")), "amount = %s", amount)
	})

	t.Run("disabled rule rejects instead of paying zero", func(t *testing.T) {
		_, err := calc.Calculate(60, dec("50000"), policy.OvertimeRule{Enabled: false})
		assert.ErrorIs(t, err, overtime.ErrOvertimeDayDisabled)
	})

	t.Run("fractional hours pay proportionally", func(t *testing.T) {
		rule := policy.OvertimeRule{Enabled: true, Multiplier: dec("1.5")}

		// 90 minutes is 1.5 hours: 1.5 x 40000 x 1.5.
		amount, err := calc.Calculate(90, dec("40000"), rule)
		require.NoError(t, err)
		assert.True(t, amount.Equal(dec("90000")), "amount = %s", amount)
	})
}
