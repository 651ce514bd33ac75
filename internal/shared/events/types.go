package events

import "github.com/google/uuid"

// Order lifecycle event type constants.
const (
	OrderStatusChangedType       = "OrderStatusChanged"
	RefundIssuedType             = "RefundIssued"
	RefundEligibilityChangedType = "RefundEligibilityChanged"
	PaymentCapturedType          = "PaymentCaptured"
	PaymentVoidedType            = "PaymentVoided"
	PaymentMethodUpdatedType     = "PaymentMethodUpdated"
)

// OrderStatusChangedEvent is emitted on every committed order transition.
type OrderStatusChangedEvent struct {
	BaseEvent

	// OrderID is the order that transitioned.
	OrderID uuid.UUID `json:"order_id"`

	// From is the previous order status.
	From string `json:"from"`

	// To is the new order status.
	To string `json:"to"`

	// ActorID is who performed the transition.
	ActorID uuid.UUID `json:"actor_id"`

	// ActorRole is the role the actor acted under.
	ActorRole string `json:"actor_role"`

	// Notes carries the operation-specific notes, if any.
	Notes string `json:"notes,omitempty"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent.
func NewOrderStatusChangedEvent(orderID uuid.UUID, from, to string, actorID uuid.UUID, actorRole, notes string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: NewBaseEvent(OrderStatusChangedType, orderID, "Order"),
		OrderID:   orderID,
		From:      from,
		To:        to,
		ActorID:   actorID,
		ActorRole: actorRole,
		Notes:     notes,
	}
}

// RefundIssuedEvent is emitted when a refund succeeds at the gateway.
type RefundIssuedEvent struct {
	BaseEvent

	// OrderID is the refunded order.
	OrderID uuid.UUID `json:"order_id"`

	// RefundID is the gateway refund identifier.
	RefundID string `json:"refund_id"`

	// Amount is the refunded amount in smallest currency unit.
	Amount int64 `json:"amount"`

	// Currency is the ISO currency code.
	Currency string `json:"currency"`

	// Reason is the refund reason passed to the gateway.
	Reason string `json:"reason,omitempty"`

	// ActorID is who requested the refund.
	ActorID uuid.UUID `json:"actor_id"`
}

// NewRefundIssuedEvent creates a new RefundIssuedEvent.
func NewRefundIssuedEvent(orderID uuid.UUID, refundID string, amount int64, currency, reason string, actorID uuid.UUID) *RefundIssuedEvent {
	return &RefundIssuedEvent{
		BaseEvent: NewBaseEvent(RefundIssuedType, orderID, "Order"),
		OrderID:   orderID,
		RefundID:  refundID,
		Amount:    amount,
		Currency:  currency,
		Reason:    reason,
		ActorID:   actorID,
	}
}

// RefundEligibilityChangedEvent is emitted when an operator overrides
// refund eligibility or moves the refund window.
type RefundEligibilityChangedEvent struct {
	BaseEvent

	// OrderID is the affected order.
	OrderID uuid.UUID `json:"order_id"`

	// IsRefundable is the new eligibility flag.
	IsRefundable bool `json:"is_refundable"`

	// Reason is the operator-supplied justification.
	Reason string `json:"reason,omitempty"`

	// ActorID is the operator who made the change.
	ActorID uuid.UUID `json:"actor_id"`
}

// NewRefundEligibilityChangedEvent creates a new RefundEligibilityChangedEvent.
func NewRefundEligibilityChangedEvent(orderID uuid.UUID, isRefundable bool, reason string, actorID uuid.UUID) *RefundEligibilityChangedEvent {
	return &RefundEligibilityChangedEvent{
		BaseEvent:    NewBaseEvent(RefundEligibilityChangedType, orderID, "Order"),
		OrderID:      orderID,
		IsRefundable: isRefundable,
		Reason:       reason,
		ActorID:      actorID,
	}
}

// PaymentActionEvent is emitted for admin gateway actions
// (capture, void, payment method update).
type PaymentActionEvent struct {
	BaseEvent

	// OrderID is the affected order.
	OrderID uuid.UUID `json:"order_id"`

	// PaymentID is the gateway payment identifier.
	PaymentID string `json:"payment_id"`

	// Amount is the amount involved, when applicable.
	Amount int64 `json:"amount,omitempty"`

	// Detail carries action-specific detail (void reason, new payment method).
	Detail string `json:"detail,omitempty"`

	// ActorID is the operator who performed the action.
	ActorID uuid.UUID `json:"actor_id"`
}

// NewPaymentActionEvent creates a new PaymentActionEvent of the given type.
func NewPaymentActionEvent(eventType string, orderID uuid.UUID, paymentID string, amount int64, detail string, actorID uuid.UUID) *PaymentActionEvent {
	return &PaymentActionEvent{
		BaseEvent: NewBaseEvent(eventType, orderID, "Order"),
		OrderID:   orderID,
		PaymentID: paymentID,
		Amount:    amount,
		Detail:    detail,
		ActorID:   actorID,
	}
}
