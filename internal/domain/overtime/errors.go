package overtime

import "errors"

var (
	ErrOvertimeRequestNotFound         = errors.New("overtime request not found")
	ErrDuplicateOvertimeRequest        = errors.New("a non-rejected overtime request already exists for this date")
	ErrOvertimeDateInFuture            = errors.New("overtime date must not be in the future")
	ErrOvertimeDayDisabled             = errors.New("overtime is not payable for this day type under the active policy")
	ErrOvertimeRequestAlreadyProcessed = errors.New("overtime request already processed")
)
