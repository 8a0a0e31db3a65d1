package ses

import "errors"

// Sentinel errors for SES operations.
var (
	ErrInvalidConfig = errors.New("ses: invalid configuration")

	ErrRejected      = errors.New("ses: message rejected")
	ErrThrottled     = errors.New("ses: sending rate exceeded")
	ErrSendingPaused = errors.New("ses: sending paused for account")
	ErrSendFailed    = errors.New("ses: send failed")
)
