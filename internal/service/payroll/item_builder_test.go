package payroll

import (
	"testing"

	"github.com/gajihub/payroll-core-go/internal/domain/attendance"
	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/gajihub/payroll-core-go/internal/domain/overtime"
	"github.com/gajihub/payroll-core-go/internal/domain/payroll"
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

func intPtr(i int) *int { return &i }

func monthlyInput() BuildInput {
	return BuildInput{
		Employee: employee.Employee{ID: "emp-1", CompanyID: "co-1"},
		Contract: employee.Contract{
			EmployeeID:     "emp-1",
			RateType:       employee.RateTypeMonthly,
			BaseSalary:     decPtr("10000000"),
			Allowances:     dec("500000"),
			TransportBonus: dec("300000"),
			LunchBonus:     dec("200000"),
		},
		Totals: attendance.Totals{
			EmployeeID:       "emp-1",
			WorkedDays:       22,
			TotalWorkMinutes: 10560,
		},
		Config: policy.PayrollConfigDoc{
			MonthlyStandardHours: dec("173"),
			DailyStandardHours:   dec("8"),
			MonthlyWorkingDays:   dec("22"),
			BPJSKesehatan: policy.DeductionRule{
				Method:          policy.DeductionMethodPercentage,
				EmployeePercent: dec("1"),
				EmployerPercent: dec("4"),
				BaseCap:         decPtr("12000000"),
			},
			BPJSKetenagakerjaan: policy.DeductionRule{
				Method:          policy.DeductionMethodPercentage,
				EmployeePercent: dec("2"),
				EmployerPercent: dec("3.7"),
			},
			PPh21: policy.DeductionRule{
				Method:          policy.DeductionMethodPercentage,
				EmployeePercent: dec("5"),
			},
		},
		PeriodMonth: 4,
	}
}

func TestItemBuilder_Build_Monthly(t *testing.T) {
	builder := NewItemBuilder()

	item, err := builder.Build(monthlyInput())
	require.NoError(t, err)

	assert.Equal(t, employee.RateTypeMonthly, item.RateType)
	assert.True(t, item.RateUsed.Equal(dec("10000000")))
	assert.True(t, item.BasePay.Equal(dec("10000000")), "basePay = %s", item.BasePay)

	// 10000000 + 500000 + 300000 + 200000
	wantGross := dec("11000000")
	assert.True(t, item.GrossPay.Equal(wantGross), "grossPay = %s", item.GrossPay)

	assert.True(t, item.BPJSKesehatanEmployee.Equal(dec("110000")), "bpjs kes employee = %s", item.BPJSKesehatanEmployee)
	assert.True(t, item.BPJSKesehatanEmployer.Equal(dec("440000")), "bpjs kes employer = %s", item.BPJSKesehatanEmployer)
	assert.True(t, item.BPJSKetenagakerjaanEmployee.Equal(dec("220000")))
	assert.True(t, item.PPh21.Equal(dec("550000")))

	// 11000000 - 110000 - 220000 - 550000
	assert.True(t, item.NetPay.Equal(dec("10120000")), "netPay = %s", item.NetPay)
}

func TestItemBuilder_Build_RateTypes(t *testing.T) {
	builder := NewItemBuilder()

	t.Run("hourly pays worked minutes", func(t *testing.T) {
		in := monthlyInput()
		in.Contract = employee.Contract{
			EmployeeID: "emp-1",
			RateType:   employee.RateTypeHourly,
			HourlyRate: decPtr("50000"),
		}
		in.Totals.TotalWorkMinutes = 9000 // 150 hours

		item, err := builder.Build(in)
		require.NoError(t, err)
		assert.True(t, item.BasePay.Equal(dec("7500000")), "basePay = %s", item.BasePay)
	})

	t.Run("daily pays worked days", func(t *testing.T) {
		in := monthlyInput()
		in.Contract = employee.Contract{
			EmployeeID: "emp-1",
			RateType:   employee.RateTypeDaily,
			DailyRate:  decPtr("400000"),
		}
		in.Totals.WorkedDays = 18

		item, err := builder.Build(in)
		require.NoError(t, err)
		assert.True(t, item.BasePay.Equal(dec("7200000")), "basePay = %s", item.BasePay)
	})

	t.Run("monthly prorates unpaid absence when configured", func(t *testing.T) {
		in := monthlyInput()
		in.Config.ProrateUnpaidAbsence = true
		in.Totals.AbsentDays = 2

		item, err := builder.Build(in)
		require.NoError(t, err)

		// 10000000 - 2 x (10000000 / 22)
		want := dec("10000000").Sub(dec("10000000").Div(dec("22")).Mul(dec("2"))).Round(2)
		assert.True(t, item.BasePay.Equal(want), "basePay = %s, want %s", item.BasePay, want)
	})

	t.Run("missing rate fails the build", func(t *testing.T) {
		in := monthlyInput()
		in.Contract.BaseSalary = nil

		_, err := builder.Build(in)
		assert.Error(t, err)
	})
}

func TestItemBuilder_Build_OvertimeAndTHR(t *testing.T) {
	builder := NewItemBuilder()

	t.Run("overtime sums only approved frozen amounts", func(t *testing.T) {
		in := monthlyInput()
		in.Overtime = []overtime.OvertimeRequest{
			{Status: overtime.OvertimeRequestStatusApproved, CalculatedAmount: decPtr("800000")},
			{Status: overtime.OvertimeRequestStatusApproved, CalculatedAmount: decPtr("300000")},
			{Status: overtime.OvertimeRequestStatusPending},
		}

		item, err := builder.Build(in)
		require.NoError(t, err)
		assert.True(t, item.OvertimePay.Equal(dec("1100000")), "overtimePay = %s", item.OvertimePay)
	})

	t.Run("thr pays one month base in the configured month", func(t *testing.T) {
		in := monthlyInput()
		in.Config.THRMonth = intPtr(4)

		item, err := builder.Build(in)
		require.NoError(t, err)
		assert.True(t, item.THR.Equal(dec("10000000")), "thr = %s", item.THR)
	})

	t.Run("no thr outside the configured month", func(t *testing.T) {
		in := monthlyInput()
		in.Config.THRMonth = intPtr(6)

		item, err := builder.Build(in)
		require.NoError(t, err)
		assert.True(t, item.THR.IsZero())
	})
}

func TestItemBuilder_Rebuild_Pinning(t *testing.T) {
	builder := NewItemBuilder()
	in := monthlyInput()

	first, err := builder.Build(in)
	require.NoError(t, err)

	// An owner manually sets bonuses; the field gets pinned.
	first.Bonuses = dec("500000")
	first.Pinned = first.Pinned.Pin(payroll.FieldBonuses)
	builder.RecomputeTotals(&first, in.Config)

	// Attendance changed before the recalculation.
	in.Totals.TotalWorkMinutes = 9600

	rebuilt, err := builder.Rebuild(in, first)
	require.NoError(t, err)

	assert.True(t, rebuilt.Bonuses.Equal(dec("500000")), "pinned bonuses = %s", rebuilt.Bonuses)
	assert.True(t, rebuilt.Pinned.Has(payroll.FieldBonuses))
	// Unpinned fields are regenerated from the contract.
	assert.True(t, rebuilt.Allowances.Equal(dec("500000")))
	assert.True(t, rebuilt.GrossPay.Equal(rebuilt.BasePay.
		Add(rebuilt.OvertimePay).
		Add(rebuilt.Allowances).
		Add(rebuilt.Bonuses).
		Add(rebuilt.TransportBonus).
		Add(rebuilt.LunchBonus).
		Add(rebuilt.THR)))
}

func TestItemBuilder_Rebuild_Idempotent(t *testing.T) {
	builder := NewItemBuilder()
	in := monthlyInput()

	first, err := builder.Build(in)
	require.NoError(t, err)

	second, err := builder.Rebuild(in, first)
	require.NoError(t, err)

	assert.True(t, first.BasePay.Equal(second.BasePay))
	assert.True(t, first.OvertimePay.Equal(second.OvertimePay))
	assert.True(t, first.GrossPay.Equal(second.GrossPay))
	assert.True(t, first.NetPay.Equal(second.NetPay))
	assert.True(t, first.BPJSKesehatanEmployee.Equal(second.BPJSKesehatanEmployee))
	assert.True(t, first.PPh21.Equal(second.PPh21))
}

func TestItemBuilder_GrossRoundTrip(t *testing.T) {
	builder := NewItemBuilder()

	in := monthlyInput()
	in.Config.THRMonth = intPtr(4)
	in.Overtime = []overtime.OvertimeRequest{
		{Status: overtime.OvertimeRequestStatusApproved, CalculatedAmount: decPtr("123456.78")},
	}

	item, err := builder.Build(in)
	require.NoError(t, err)

	sum := item.BasePay.
		Add(item.OvertimePay).
		Add(item.Allowances).
		Add(item.Bonuses).
		Add(item.TransportBonus).
		Add(item.LunchBonus).
		Add(item.THR)

	assert.True(t, item.GrossPay.Equal(sum), "grossPay = %s, sum = %s", item.GrossPay, sum)
	assert.True(t, item.GrossPay.Sub(sum).IsZero())
}

func TestStatutory_BaseCap(t *testing.T) {
	rule := policy.DeductionRule{
		Method:          policy.DeductionMethodPercentage,
		EmployeePercent: dec("1"),
		EmployerPercent: dec("4"),
		BaseCap:         decPtr("12000000"),
	}

	// Gross above the cap: the capped base feeds the percentages.
	emp, er := statutory(rule, dec("20000000"))
	assert.True(t, emp.Equal(dec("120000")), "employee = %s", emp)
	assert.True(t, er.Equal(dec("480000")), "employer = %s", er)

	fixed := policy.DeductionRule{
		Method:        policy.DeductionMethodFixed,
		EmployeeFixed: dec("50000"),
		EmployerFixed: dec("100000"),
	}
	emp, er = statutory(fixed, dec("20000000"))
	assert.True(t, emp.Equal(dec("50000")))
	assert.True(t, er.Equal(dec("100000")))
}
