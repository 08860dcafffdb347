package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrPayrollRunNotFound  = errors.New("payroll run not found")
	ErrPayrollRunExists    = errors.New("payroll run already exists for this period")
	ErrPayrollItemNotFound = errors.New("payroll item not found")
	ErrRunBusy             = errors.New("another operation is in progress on this payroll run, retry")
	ErrFieldNotPinnable    = errors.New("field cannot be manually overridden")
	ErrNoEligibleEmployees = errors.New("no active employees with contracts for this period")
)

// InvalidStateTransitionError names the state that blocked the operation, so
// rejections stay machine-checkable and audit-loggable.
type InvalidStateTransitionError struct {
	Current   RunStatus
	Attempted string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a payroll run in status %q", e.Attempted, e.Current)
}

// IsInvalidStateTransition reports whether err is a state-machine rejection.
func IsInvalidStateTransition(err error) bool {
	var target *InvalidStateTransitionError
	return errors.As(err, &target)
}
