package payment

import "github.com/google/uuid"

// CaptureRequest is the admin capture payload.
type CaptureRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	// Amount, when set, captures partially; it must not exceed the
	// authorized amount.
	Amount      *int64 `json:"amount" binding:"omitempty,min=1"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// VoidRequest is the admin void payload.
type VoidRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	Reason          string `json:"reason" binding:"omitempty,max=2000"`
}

// UpdatePaymentMethodRequest re-points an intent at a new payment method.
type UpdatePaymentMethodRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

// CaptureResponse reports a settled capture.
type CaptureResponse struct {
	OrderID         uuid.UUID `json:"order_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	AmountCaptured  int64     `json:"amount_captured"`
	Currency        string    `json:"currency"`
	OrderStatus     string    `json:"order_status"`
}

// VoidResponse reports a voided hold.
type VoidResponse struct {
	OrderID         uuid.UUID `json:"order_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	OrderStatus     string    `json:"order_status"`
}

// UpdatePaymentMethodResponse reports a re-pointed intent.
type UpdatePaymentMethodResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentMethodID string `json:"payment_method_id"`
	Status          string `json:"status"`
}
