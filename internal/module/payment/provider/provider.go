package provider

import "context"

// Intent statuses the orchestration cares about.
const (
	// IntentStatusRequiresCapture is the gateway hold state in which
	// capture and void are permitted.
	IntentStatusRequiresCapture = "requires_capture"
	IntentStatusSucceeded       = "succeeded"
	IntentStatusCanceled        = "canceled"
)

// Intent is the gateway-side view of a payment.
type Intent struct {
	ID               string
	Status           string
	Amount           int64
	AmountCapturable int64
	AmountReceived   int64
	Currency         string
	PaymentMethodID  string
}

// Capturable reports whether the intent is in the hold state that
// permits capture or void.
func (i *Intent) Capturable() bool {
	return i.Status == IntentStatusRequiresCapture
}

// Refund is the gateway-side view of a refund.
type Refund struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
}

// Gateway wraps the external payment processor. The gateway is the
// system of record for money movement; local state is a cache of it
// and defers to it on conflict.
type Gateway interface {
	// Name returns the gateway name.
	Name() string

	// GetIntent retrieves the current gateway state of a payment intent.
	GetIntent(ctx context.Context, intentID string) (*Intent, error)

	// Capture settles a held payment, fully or partially.
	Capture(ctx context.Context, intentID string, amount int64, idempotencyKey string) (*Intent, error)

	// Void cancels a held payment entirely.
	Void(ctx context.Context, intentID, reason string) (*Intent, error)

	// UpdatePaymentMethod re-points an intent at a new payment method.
	UpdatePaymentMethod(ctx context.Context, intentID, paymentMethodID string) (*Intent, error)

	// Refund returns settled funds. Calls carrying the same
	// idempotency key are processed at most once by the gateway.
	Refund(ctx context.Context, paymentID string, amount int64, reason, idempotencyKey string) (*Refund, error)
}
