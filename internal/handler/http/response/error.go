package response

import (
	"errors"
	"net/http"

	"github.com/gajihub/payroll-core-go/internal/domain/attendance"
	"github.com/gajihub/payroll-core-go/internal/domain/employee"
	"github.com/gajihub/payroll-core-go/internal/domain/leave"
	"github.com/gajihub/payroll-core-go/internal/domain/overtime"
	"github.com/gajihub/payroll-core-go/internal/domain/payroll"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var transitionErr *payroll.InvalidStateTransitionError
	if errors.As(err, &transitionErr) {
		Conflict(w, transitionErr.Error())
		return
	}

	switch {
	// Not found
	case errors.Is(err, policy.ErrPolicyNotFound),
		errors.Is(err, leave.ErrLeaveTypeNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound),
		errors.Is(err, overtime.ErrOvertimeRequestNotFound),
		errors.Is(err, payroll.ErrPayrollRunNotFound),
		errors.Is(err, payroll.ErrPayrollItemNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrContractNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, err.Error())

	// Conflicts
	case errors.Is(err, leave.ErrLeaveTypeCodeExists),
		errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed),
		errors.Is(err, leave.ErrLeaveRequestNotEditable),
		errors.Is(err, overtime.ErrDuplicateOvertimeRequest),
		errors.Is(err, overtime.ErrOvertimeRequestAlreadyProcessed),
		errors.Is(err, payroll.ErrPayrollRunExists),
		errors.Is(err, payroll.ErrRunBusy),
		errors.Is(err, policy.ErrVersionConflict):
		Conflict(w, err.Error())

	// Bad requests
	case errors.Is(err, policy.ErrPolicyNotConfigured),
		errors.Is(err, policy.ErrInvalidPolicyType),
		errors.Is(err, policy.ErrInvalidPolicyConfig),
		errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, overtime.ErrOvertimeDateInFuture),
		errors.Is(err, overtime.ErrOvertimeDayDisabled),
		errors.Is(err, payroll.ErrFieldNotPinnable),
		errors.Is(err, payroll.ErrNoEligibleEmployees):
		BadRequest(w, err.Error(), nil)

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
