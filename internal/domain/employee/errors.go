package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrContractNotFound = errors.New("employment contract not found")
)
