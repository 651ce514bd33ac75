package payment

import "errors"

// Module errors.
var (
	ErrNotCapturable      = errors.New("payment is not in a capturable hold state")
	ErrAmountExceedsHold  = errors.New("amount exceeds the authorized amount")
	ErrAlreadyRefunded    = errors.New("payment already refunded")
	ErrMissingPaymentID   = errors.New("order has no payment reference")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrAmbiguousOutcome marks a gateway call whose outcome is
	// unknown (timeout). Callers must not assume failure; retries
	// must reuse the same idempotency key.
	ErrAmbiguousOutcome = errors.New("gateway outcome unknown")
)
