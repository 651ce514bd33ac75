package provider

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

// StripeGateway implements Gateway for Stripe.
type StripeGateway struct {
	apiKey string
}

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	APIKey string
}

// NewStripeGateway creates a new Stripe gateway.
func NewStripeGateway(config *StripeConfig) *StripeGateway {
	stripe.Key = config.APIKey
	return &StripeGateway{apiKey: config.APIKey}
}

// Name returns the gateway name.
func (g *StripeGateway) Name() string {
	return "stripe"
}

// GetIntent retrieves the current gateway state of a payment intent.
func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	return mapIntent(pi), nil
}

// Capture settles a held payment, fully or partially.
func (g *StripeGateway) Capture(ctx context.Context, intentID string, amount int64, idempotencyKey string) (*Intent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	if amount > 0 {
		params.AmountToCapture = stripe.Int64(amount)
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	pi, err := paymentintent.Capture(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("capture payment intent: %w", err)
	}
	return mapIntent(pi), nil
}

// Void cancels a held payment entirely.
func (g *StripeGateway) Void(ctx context.Context, intentID, reason string) (*Intent, error) {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if reason != "" {
		params.CancellationReason = stripe.String(reason)
	}

	pi, err := paymentintent.Cancel(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("cancel payment intent: %w", err)
	}
	return mapIntent(pi), nil
}

// UpdatePaymentMethod re-points an intent at a new payment method.
func (g *StripeGateway) UpdatePaymentMethod(ctx context.Context, intentID, paymentMethodID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	params.Context = ctx

	pi, err := paymentintent.Update(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("update payment intent: %w", err)
	}
	return mapIntent(pi), nil
}

// Refund returns settled funds for a payment intent.
func (g *StripeGateway) Refund(ctx context.Context, paymentID string, amount int64, reason, idempotencyKey string) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentID),
	}
	params.Context = ctx
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}
	if reason != "" {
		// Stripe accepts a closed reason set; free-text goes to metadata.
		params.AddMetadata("reason", reason)
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	r, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}
	return &Refund{
		ID:       r.ID,
		Status:   string(r.Status),
		Amount:   r.Amount,
		Currency: string(r.Currency),
	}, nil
}

func mapIntent(pi *stripe.PaymentIntent) *Intent {
	out := &Intent{
		ID:               pi.ID,
		Status:           string(pi.Status),
		Amount:           pi.Amount,
		AmountCapturable: pi.AmountCapturable,
		AmountReceived:   pi.AmountReceived,
		Currency:         string(pi.Currency),
	}
	if pi.PaymentMethod != nil {
		out.PaymentMethodID = pi.PaymentMethod.ID
	}
	return out
}
