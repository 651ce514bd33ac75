package order

import (
	"context"
	"fmt"

	"github.com/cribnosh/server/internal/shared/events"
)

// AuditHandler appends an order history row for every lifecycle event.
// Cancelled and completed orders are retained for audit, so the trail
// outlives the lifecycle.
type AuditHandler struct {
	repo Repository
}

// NewAuditHandler creates a new audit trail handler.
func NewAuditHandler(repo Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// Handles returns the event types recorded in the audit trail.
func (h *AuditHandler) Handles() []string {
	return []string{
		events.OrderStatusChangedType,
		events.RefundIssuedType,
		events.RefundEligibilityChangedType,
		events.PaymentCapturedType,
		events.PaymentVoidedType,
		events.PaymentMethodUpdatedType,
	}
}

// Handle appends one audit row per event. Inserts are keyed by the
// event id, so replaying an event cannot duplicate history.
func (h *AuditHandler) Handle(event events.Event) error {
	row := &Event{
		ID:         event.EventID(),
		OrderID:    event.AggregateID(),
		OccurredAt: event.OccurredAt(),
	}

	switch e := event.(type) {
	case *events.OrderStatusChangedEvent:
		row.Action = actionForTransition(e.From, e.To)
		row.PerformedBy = e.ActorID
		row.Role = e.ActorRole
		row.Description = fmt.Sprintf("status %s -> %s", e.From, e.To)
		if e.Notes != "" {
			row.Description += ": " + e.Notes
		}
	case *events.RefundIssuedEvent:
		row.Action = "refund_issued"
		row.PerformedBy = e.ActorID
		row.Description = fmt.Sprintf("refund %s for %d %s", e.RefundID, e.Amount, e.Currency)
	case *events.RefundEligibilityChangedEvent:
		row.Action = "refund_eligibility_changed"
		row.PerformedBy = e.ActorID
		row.Description = fmt.Sprintf("is_refundable=%t", e.IsRefundable)
		if e.Reason != "" {
			row.Description += ": " + e.Reason
		}
	case *events.PaymentActionEvent:
		row.Action = paymentAction(event.EventType())
		row.PerformedBy = e.ActorID
		row.Description = e.Detail
	default:
		return nil
	}

	return h.repo.CreateEvent(context.Background(), row)
}

func actionForTransition(from, to string) string {
	if from == to {
		return "updated"
	}
	return "status_" + to
}

func paymentAction(eventType string) string {
	switch eventType {
	case events.PaymentCapturedType:
		return "payment_captured"
	case events.PaymentVoidedType:
		return "payment_voided"
	case events.PaymentMethodUpdatedType:
		return "payment_method_updated"
	default:
		return "payment_action"
	}
}
