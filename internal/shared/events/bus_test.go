package events

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types    []string
	received []Event
	err      error
}

func (h *recordingHandler) Handles() []string { return h.types }

func (h *recordingHandler) Handle(event Event) error {
	h.received = append(h.received, event)
	return h.err
}

func TestBus_PublishDispatchesByType(t *testing.T) {
	bus := NewBus(zap.NewNop())

	statusHandler := &recordingHandler{types: []string{OrderStatusChangedType}}
	refundHandler := &recordingHandler{types: []string{RefundIssuedType}}
	bus.Register(statusHandler)
	bus.Register(refundHandler)

	orderID := uuid.New()
	bus.Publish(NewOrderStatusChangedEvent(orderID, "pending", "confirmed", uuid.New(), "chef", ""))

	assert.Len(t, statusHandler.received, 1)
	assert.Empty(t, refundHandler.received)
	assert.Equal(t, orderID, statusHandler.received[0].AggregateID())
}

func TestBus_HandlerErrorsAreIsolated(t *testing.T) {
	bus := NewBus(zap.NewNop())

	failing := &recordingHandler{types: []string{RefundIssuedType}, err: errors.New("write failed")}
	healthy := &recordingHandler{types: []string{RefundIssuedType}}
	bus.Register(failing)
	bus.Register(healthy)

	bus.Publish(NewRefundIssuedEvent(uuid.New(), "re_1", 1000, "gbp", "", uuid.New()))

	// A failing handler must not starve the ones after it.
	assert.Len(t, failing.received, 1)
	assert.Len(t, healthy.received, 1)
}

func TestBus_PublishWithoutHandlers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	// No handler registered for this type: publish must not panic.
	bus.Publish(NewRefundEligibilityChangedEvent(uuid.New(), false, "", uuid.New()))
}

func TestBus_HandlerReceivesMultipleTypes(t *testing.T) {
	bus := NewBus(zap.NewNop())

	h := &recordingHandler{types: []string{PaymentCapturedType, PaymentVoidedType}}
	bus.Register(h)

	bus.PublishAll([]Event{
		NewPaymentActionEvent(PaymentCapturedType, uuid.New(), "pi_1", 2500, "", uuid.New()),
		NewPaymentActionEvent(PaymentVoidedType, uuid.New(), "pi_2", 0, "fraud", uuid.New()),
	})

	assert.Len(t, h.received, 2)
	assert.Equal(t, PaymentCapturedType, h.received[0].EventType())
	assert.Equal(t, PaymentVoidedType, h.received[1].EventType())
}
