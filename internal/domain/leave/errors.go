package leave

import "errors"

var (
	ErrLeaveTypeNotFound            = errors.New("leave type not found")
	ErrLeaveTypeCodeExists          = errors.New("leave type code already exists")
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrInsufficientBalance          = errors.New("insufficient leave balance")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrLeaveRequestNotEditable      = errors.New("only pending leave requests can be modified")
)
