package leave

import (
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/leave"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/shopspring/decimal"
)

// BalanceCalculator derives leave balances from policy and request history.
// The balance is never stored: it is recomputed on every read so it cannot
// drift from the requests it is derived from. The same Calculate output feeds
// both display and the sufficiency check at submission time.
type BalanceCalculator struct{}

func NewBalanceCalculator() *BalanceCalculator {
	return &BalanceCalculator{}
}

// BalanceInput carries everything Calculate needs. Requests must hold all of
// the employee's PENDING and APPROVED requests for the leave type; rejected
// requests never touch the balance.
type BalanceInput struct {
	Type     leave.LeaveType
	Defaults policy.LeavePolicyConfig
	HireDate time.Time
	Requests []leave.LeaveRequest
	AsOf     time.Time
}

// effectiveRules is the merge of per-type overrides over the company-wide
// LEAVE_POLICY defaults. Overrides win field by field; nil falls through.
type effectiveRules struct {
	accrualMethod      string
	accrualRate        decimal.Decimal
	maxBalance         *decimal.Decimal
	carryoverAllowed   bool
	carryoverMax       *decimal.Decimal
	expiresAfterMonths *int
}

func resolveRules(t leave.LeaveType, defaults policy.LeavePolicyConfig) effectiveRules {
	rules := effectiveRules{
		accrualMethod:      defaults.AccrualMethod,
		accrualRate:        defaults.AccrualRate,
		maxBalance:         t.MaxBalance,
		carryoverAllowed:   defaults.CarryoverAllowed,
		carryoverMax:       defaults.CarryoverMax,
		expiresAfterMonths: defaults.ExpiresAfterMonths,
	}
	if t.AccrualRate != nil {
		rules.accrualRate = *t.AccrualRate
		// A per-type rate implies accrual even when the company default is none.
		if rules.accrualMethod == "" || rules.accrualMethod == policy.AccrualMethodNone {
			rules.accrualMethod = policy.AccrualMethodMonthly
		}
	}
	if t.CarryoverAllowed != nil {
		rules.carryoverAllowed = *t.CarryoverAllowed
	}
	if t.CarryoverMax != nil {
		rules.carryoverMax = t.CarryoverMax
	}
	if t.ExpiresAfterMonths != nil {
		rules.expiresAfterMonths = t.ExpiresAfterMonths
	}
	return rules
}

// Calculate derives the balance as of in.AsOf. The accrual cycle is the
// calendar year in AsOf's location; carryover resets every January 1st.
func (c *BalanceCalculator) Calculate(in BalanceInput) leave.Balance {
	rules := resolveRules(in.Type, in.Defaults)
	cycleStart := time.Date(in.AsOf.Year(), time.January, 1, 0, 0, 0, 0, in.AsOf.Location())

	balance := leave.Balance{
		LeaveTypeID: in.Type.ID,
		AsOf:        in.AsOf,
	}

	accrualEnabled := rules.accrualMethod == policy.AccrualMethodMonthly && rules.accrualRate.IsPositive()

	switch {
	case accrualEnabled:
		start := in.HireDate
		if start.Before(cycleStart) {
			start = cycleStart
		}
		accrued := monthsBetween(start, in.AsOf).Mul(rules.accrualRate)
		if rules.maxBalance != nil && accrued.GreaterThan(*rules.maxBalance) {
			accrued = *rules.maxBalance
		}
		balance.Accrued = accrued
		balance.Pool = accrued
	case rules.maxBalance != nil:
		// No accrual: the full pool is granted up front.
		balance.Pool = *rules.maxBalance
	default:
		balance.Unlimited = true
	}

	if !balance.Unlimited && rules.carryoverAllowed {
		carryover := c.carryoverFrom(in, rules, cycleStart)
		if expired(rules, cycleStart, in.AsOf) {
			balance.Expired = carryover
		} else {
			balance.Carryover = carryover
		}
	}

	// A cycle only means something when the pool regenerates: accrual refills
	// it each year and carryover reaps the remainder. A flat pool without
	// either is a lifetime grant, so every approved request counts against it
	// no matter how old.
	cycleScoped := accrualEnabled || (!balance.Unlimited && rules.carryoverAllowed)

	for _, req := range in.Requests {
		if cycleScoped && !inCycle(req.StartDate, cycleStart) {
			continue
		}
		switch req.Status {
		case leave.LeaveRequestStatusApproved:
			balance.Used = balance.Used.Add(req.Days)
		case leave.LeaveRequestStatusPending:
			balance.Pending = balance.Pending.Add(req.Days)
		}
	}

	if !balance.Unlimited {
		balance.Available = balance.Pool.Add(balance.Carryover).Sub(balance.Used).Sub(balance.Pending)
	}

	return balance
}

// Sufficient reports whether a request for days fits the balance. Uses the
// same Available number the UI displays, so a request can never look
// affordable at display time and then fail the server-side check.
func (c *BalanceCalculator) Sufficient(balance leave.Balance, days decimal.Decimal) bool {
	if balance.Unlimited {
		return true
	}
	return days.LessThanOrEqual(balance.Available)
}

// carryoverFrom computes the unused balance the prior calendar year left
// behind, capped at the carryover maximum. Only one cycle looks back; older
// remainders are gone.
func (c *BalanceCalculator) carryoverFrom(in BalanceInput, rules effectiveRules, cycleStart time.Time) decimal.Decimal {
	priorStart := cycleStart.AddDate(-1, 0, 0)
	if !in.HireDate.Before(cycleStart) {
		return decimal.Zero
	}

	var priorPool decimal.Decimal
	if rules.accrualMethod == policy.AccrualMethodMonthly && rules.accrualRate.IsPositive() {
		start := in.HireDate
		if start.Before(priorStart) {
			start = priorStart
		}
		priorPool = monthsBetween(start, cycleStart).Mul(rules.accrualRate)
		if rules.maxBalance != nil && priorPool.GreaterThan(*rules.maxBalance) {
			priorPool = *rules.maxBalance
		}
	} else if rules.maxBalance != nil {
		priorPool = *rules.maxBalance
	}

	var priorUsed decimal.Decimal
	for _, req := range in.Requests {
		if req.Status == leave.LeaveRequestStatusApproved && inCycle(req.StartDate, priorStart) {
			priorUsed = priorUsed.Add(req.Days)
		}
	}

	carryover := priorPool.Sub(priorUsed)
	if carryover.IsNegative() {
		return decimal.Zero
	}
	if rules.carryoverMax != nil && carryover.GreaterThan(*rules.carryoverMax) {
		carryover = *rules.carryoverMax
	}
	return carryover
}

// expired reports whether carried-over days have lapsed: expiry is measured
// in months from the carryover reset date.
func expired(rules effectiveRules, cycleStart, asOf time.Time) bool {
	if rules.expiresAfterMonths == nil {
		return false
	}
	return !asOf.Before(cycleStart.AddDate(0, *rules.expiresAfterMonths, 0))
}

// inCycle reports whether date falls in the calendar year starting at
// cycleStart.
func inCycle(date, cycleStart time.Time) bool {
	return !date.Before(cycleStart) && date.Before(cycleStart.AddDate(1, 0, 0))
}

// monthsBetween measures fractional months from from to to. Whole months are
// counted by calendar stepping; the remainder is the elapsed share of the
// partial month. Fractions are retained, never rounded.
func monthsBetween(from, to time.Time) decimal.Decimal {
	if !from.Before(to) {
		return decimal.Zero
	}

	months := 0
	cursor := from
	for {
		next := cursor.AddDate(0, 1, 0)
		if next.After(to) {
			break
		}
		months++
		cursor = next
	}

	window := cursor.AddDate(0, 1, 0).Sub(cursor)
	elapsed := to.Sub(cursor)
	if window <= 0 || elapsed <= 0 {
		return decimal.NewFromInt(int64(months))
	}

	fraction := decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(window)))
	return decimal.NewFromInt(int64(months)).Add(fraction)
}
