package policy

import "errors"

var (
	ErrPolicyNotFound      = errors.New("policy not found")
	ErrPolicyNotConfigured = errors.New("no active policy of the required type")
	ErrInvalidPolicyType   = errors.New("invalid policy type")
	ErrInvalidPolicyConfig = errors.New("policy config does not match its type")
	ErrVersionConflict     = errors.New("concurrent policy version creation, retry")
)
