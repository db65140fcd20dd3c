package billing

import "errors"

// Typed failures returned by session operations. All are recoverable:
// the HTTP layer maps them to a disabled action or an inline message.
var (
	ErrInvalidAdjustment = errors.New("adjustment value must be greater than zero")
	ErrInvalidAmount     = errors.New("payment amount must be greater than zero")
	ErrSelectionLocked   = errors.New("order selection is locked while an adjustment is applied")
	ErrNothingToPay      = errors.New("no orders selected or nothing left to pay")
	ErrBalanceNotZero    = errors.New("remaining balance must be zero to settle")
	ErrSessionSettled    = errors.New("settlement session is already settled")
)
