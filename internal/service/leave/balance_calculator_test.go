package leave

import (
	"testing"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/leave"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
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

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func approved(start time.Time, days string) leave.LeaveRequest {
	return leave.LeaveRequest{
		Status:    leave.LeaveRequestStatusApproved,
		StartDate: start,
		EndDate:   start,
		Days:      dec(days),
	}
}

func pending(start time.Time, days string) leave.LeaveRequest {
	r := approved(start, days)
	r.Status = leave.LeaveRequestStatusPending
	return r
}

func TestBalanceCalculator_NoAccrual(t *testing.T) {
	calc := NewBalanceCalculator()

	cases := []struct {
		name          string
		maxBalance    *decimal.Decimal
		requests      []leave.LeaveRequest
		wantAvailable string
		wantUsed      string
		wantPending   string
	}{
		{
			name:          "full pool untouched",
			maxBalance:    decPtr("12"),
			wantAvailable: "12",
			wantUsed:      "0",
			wantPending:   "0",
		},
		{
			name:       "approved usage subtracts",
			maxBalance: decPtr("12"),
			requests: []leave.LeaveRequest{
				approved(date(2024, time.March, 5), "3"),
			},
			wantAvailable: "9",
			wantUsed:      "3",
			wantPending:   "0",
		},
		{
			name:       "pending holds subtract from displayed balance",
			maxBalance: decPtr("12"),
			requests: []leave.LeaveRequest{
				approved(date(2024, time.March, 5), "3"),
				pending(date(2024, time.August, 1), "2"),
			},
			wantAvailable: "7",
			wantUsed:      "3",
			wantPending:   "2",
		},
		{
			name:       "rejected requests are ignored",
			maxBalance: decPtr("12"),
			requests: []leave.LeaveRequest{
				{Status: leave.LeaveRequestStatusRejected, StartDate: date(2024, time.March, 5), Days: dec("3")},
			},
			wantAvailable: "12",
			wantUsed:      "0",
			wantPending:   "0",
		},
		{
			name:       "prior-year usage still counts against a flat pool",
			maxBalance: decPtr("12"),
			requests: []leave.LeaveRequest{
				approved(date(2022, time.March, 5), "5"),
			},
			wantAvailable: "7",
			wantUsed:      "5",
			wantPending:   "0",
		},
		{
			name:       "usage accumulates across years",
			maxBalance: decPtr("12"),
			requests: []leave.LeaveRequest{
				approved(date(2023, time.May, 8), "5"),
				approved(date(2024, time.February, 12), "2"),
			},
			wantAvailable: "5",
			wantUsed:      "7",
			wantPending:   "0",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			balance := calc.Calculate(BalanceInput{
				Type:     leave.LeaveType{ID: "lt-1", MaxBalance: tc.maxBalance},
				Defaults: policy.LeavePolicyConfig{AccrualMethod: policy.AccrualMethodNone},
				HireDate: date(2020, time.January, 1),
				Requests: tc.requests,
				AsOf:     date(2024, time.June, 15),
			})

			assert.False(t, balance.Unlimited)
			assert.True(t, balance.Available.Equal(dec(tc.wantAvailable)), "available = %s, want %s", balance.Available, tc.wantAvailable)
			assert.True(t, balance.Used.Equal(dec(tc.wantUsed)), "used = %s, want %s", balance.Used, tc.wantUsed)
			assert.True(t, balance.Pending.Equal(dec(tc.wantPending)), "pending = %s, want %s", balance.Pending, tc.wantPending)
		})
	}
}

func TestBalanceCalculator_Unlimited(t *testing.T) {
	calc := NewBalanceCalculator()

	balance := calc.Calculate(BalanceInput{
		Type:     leave.LeaveType{ID: "lt-sick"},
		Defaults: policy.LeavePolicyConfig{AccrualMethod: policy.AccrualMethodNone},
		HireDate: date(2020, time.January, 1),
		Requests: []leave.LeaveRequest{
			approved(date(2024, time.February, 1), "30"),
		},
		AsOf: date(2024, time.June, 15),
	})

	assert.True(t, balance.Unlimited)
	assert.True(t, calc.Sufficient(balance, dec("9999")))
}

func TestBalanceCalculator_MonthlyAccrual(t *testing.T) {
	calc := NewBalanceCalculator()

	t.Run("whole months accrue at the rate", func(t *testing.T) {
		balance := calc.Calculate(BalanceInput{
			Type: leave.LeaveType{ID: "lt-1", MaxBalance: decPtr("12")},
			Defaults: policy.LeavePolicyConfig{
				AccrualMethod: policy.AccrualMethodMonthly,
				AccrualRate:   dec("1"),
			},
			HireDate: date(2020, time.January, 1),
			AsOf:     date(2024, time.July, 1),
		})

		// Jan 1 to Jul 1 is exactly six months.
		assert.True(t, balance.Accrued.Equal(dec("6")), "accrued = %s", balance.Accrued)
		assert.True(t, balance.Available.Equal(dec("6")), "available = %s", balance.Available)
	})

	t.Run("accrual caps at max balance", func(t *testing.T) {
		balance := calc.Calculate(BalanceInput{
			Type: leave.LeaveType{ID: "lt-1", MaxBalance: decPtr("10")},
			Defaults: policy.LeavePolicyConfig{
				AccrualMethod: policy.AccrualMethodMonthly,
				AccrualRate:   dec("2"),
			},
			HireDate: date(2020, time.January, 1),
			AsOf:     date(2024, time.July, 1),
		})

		assert.True(t, balance.Accrued.Equal(dec("10")), "accrued = %s", balance.Accrued)
	})

	t.Run("eligibility starts at hire date for new joiners", func(t *testing.T) {
		balance := calc.Calculate(BalanceInput{
			Type: leave.LeaveType{ID: "lt-1", MaxBalance: decPtr("12")},
			Defaults: policy.LeavePolicyConfig{
				AccrualMethod: policy.AccrualMethodMonthly,
				AccrualRate:   dec("1"),
			},
			HireDate: date(2024, time.April, 1),
			AsOf:     date(2024, time.July, 1),
		})

		assert.True(t, balance.Accrued.Equal(dec("3")), "accrued = %s", balance.Accrued)
	})

	t.Run("per-type rate overrides company default", func(t *testing.T) {
		balance := calc.Calculate(BalanceInput{
			Type: leave.LeaveType{
				ID:          "lt-1",
				MaxBalance:  decPtr("24"),
				AccrualRate: decPtr("2"),
			},
			Defaults: policy.LeavePolicyConfig{AccrualMethod: policy.AccrualMethodNone},
			HireDate: date(2020, time.January, 1),
			AsOf:     date(2024, time.July, 1),
		})

		// The per-type rate turns accrual on even though the default is none.
		assert.True(t, balance.Accrued.Equal(dec("12")), "accrued = %s", balance.Accrued)
	})

	t.Run("prior-year usage does not touch the current accrual cycle", func(t *testing.T) {
		balance := calc.Calculate(BalanceInput{
			Type: leave.LeaveType{ID: "lt-1", MaxBalance: decPtr("12")},
			Defaults: policy.LeavePolicyConfig{
				AccrualMethod: policy.AccrualMethodMonthly,
				AccrualRate:   dec("1"),
			},
			HireDate: date(2020, time.January, 1),
			Requests: []leave.LeaveRequest{
				approved(date(2023, time.March, 5), "4"),
			},
			AsOf: date(2024, time.July, 1),
		})

		// The accrual pool resets each January 1st, so only current-cycle
		// requests draw from it.
		assert.True(t, balance.Used.IsZero(), "used = %s", balance.Used)
		assert.True(t, balance.Available.Equal(dec("6")), "available = %s", balance.Available)
	})

	t.Run("fractional months are retained", func(t *testing.T) {
		balance := calc.Calculate(BalanceInput{
			Type: leave.LeaveType{ID: "lt-1", MaxBalance: decPtr("12")},
			Defaults: policy.LeavePolicyConfig{
				AccrualMethod: policy.AccrualMethodMonthly,
				AccrualRate:   dec("1"),
			},
			HireDate: date(2024, time.January, 1),
			AsOf:     date(2024, time.January, 16),
		})

		assert.True(t, balance.Accrued.IsPositive())
		assert.True(t, balance.Accrued.LessThan(dec("1")))
	})
}

func TestBalanceCalculator_Carryover(t *testing.T) {
	calc := NewBalanceCalculator()

	base := BalanceInput{
		Type: leave.LeaveType{
			ID:               "lt-1",
			MaxBalance:       decPtr("12"),
			CarryoverAllowed: boolPtr(true),
			CarryoverMax:     decPtr("5"),
		},
		Defaults: policy.LeavePolicyConfig{AccrualMethod: policy.AccrualMethodNone},
		HireDate: date(2020, time.January, 1),
		AsOf:     date(2024, time.February, 1),
	}

	t.Run("unused prior-year days carry over", func(t *testing.T) {
		in := base
		in.Requests = []leave.LeaveRequest{
			approved(date(2023, time.June, 1), "10"),
		}

		balance := calc.Calculate(in)

		assert.True(t, balance.Carryover.Equal(dec("2")), "carryover = %s", balance.Carryover)
		assert.True(t, balance.Available.Equal(dec("14")), "available = %s", balance.Available)
	})

	t.Run("carryover caps at the maximum", func(t *testing.T) {
		balance := calc.Calculate(base)

		// Prior year fully unused: 12 days, capped to 5.
		assert.True(t, balance.Carryover.Equal(dec("5")), "carryover = %s", balance.Carryover)
		assert.True(t, balance.Available.Equal(dec("17")), "available = %s", balance.Available)
	})

	t.Run("carryover expires after the configured months", func(t *testing.T) {
		in := base
		in.Type.ExpiresAfterMonths = intPtr(3)
		in.Requests = []leave.LeaveRequest{
			approved(date(2023, time.June, 1), "10"),
		}
		in.AsOf = date(2024, time.April, 1)

		balance := calc.Calculate(in)

		assert.True(t, balance.Carryover.IsZero(), "carryover = %s", balance.Carryover)
		assert.True(t, balance.Expired.Equal(dec("2")), "expired = %s", balance.Expired)
		assert.True(t, balance.Available.Equal(dec("12")), "available = %s", balance.Available)
	})

	t.Run("no carryover when disallowed", func(t *testing.T) {
		in := base
		in.Type.CarryoverAllowed = boolPtr(false)

		balance := calc.Calculate(in)

		assert.True(t, balance.Carryover.IsZero())
		assert.True(t, balance.Available.Equal(dec("12")), "available = %s", balance.Available)
	})

	t.Run("no carryover for employees hired this cycle", func(t *testing.T) {
		in := base
		in.HireDate = date(2024, time.January, 15)

		balance := calc.Calculate(in)

		assert.True(t, balance.Carryover.IsZero())
	})
}

func TestBalanceCalculator_Sufficient(t *testing.T) {
	calc := NewBalanceCalculator()

	balance := leave.Balance{Available: dec("5")}

	assert.True(t, calc.Sufficient(balance, dec("5")))
	assert.True(t, calc.Sufficient(balance, dec("4.5")))
	assert.False(t, calc.Sufficient(balance, dec("5.5")))
	assert.True(t, calc.Sufficient(leave.Balance{Unlimited: true}, dec("400")))
}
