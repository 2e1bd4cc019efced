package osal

import "errors"

// Sentinel errors returned by osal operations. Invariant violations are
// not in this list - they panic (see Panic).
var (
	ErrInvalidState  = errors.New("osal: invalid state for requested operation")
	ErrTimeout       = errors.New("osal: timed out")
	ErrCancelled     = errors.New("osal: operation cancelled")
	ErrBadPolicy     = errors.New("osal: scheduling policy/priority combination is invalid")
	ErrWouldOverflow = errors.New("osal: counter would overflow")
)
