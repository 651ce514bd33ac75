package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cribnosh/server/internal/module/order"
	"github.com/cribnosh/server/internal/module/payment/provider"
	apperrors "github.com/cribnosh/server/internal/shared/errors"
	"github.com/cribnosh/server/internal/shared/events"
	"github.com/cribnosh/server/internal/shared/identity"
	"github.com/cribnosh/server/internal/utils/metrics"
	"github.com/cribnosh/server/internal/utils/requestctx"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const defaultGatewayTimeout = 15 * time.Second

// Service orchestrates payment gateway calls: cancellation refunds for
// the lifecycle service and the admin capture/void surface. Every call
// runs behind a circuit breaker with a bounded timeout.
type Service struct {
	gateway provider.Gateway
	orders  order.Repository
	bus     *events.Bus
	metrics *metrics.Metrics
	logger  *zap.Logger
	breaker *gobreaker.CircuitBreaker[any]
	timeout time.Duration
}

// NewService creates a new payment service.
func NewService(gateway provider.Gateway, orders order.Repository, bus *events.Bus, m *metrics.Metrics, logger *zap.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	settings := gobreaker.Settings{
		Name:        gateway.Name(),
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Service{
		gateway: gateway,
		orders:  orders,
		bus:     bus,
		metrics: m,
		logger:  logger,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		timeout: timeout,
	}
}

// RefundForCancellation issues a gateway refund during order
// cancellation. The idempotency key is derived from the order id, so a
// replayed cancellation cannot double-refund, and an already-recorded
// refund id short-circuits without touching the gateway.
func (s *Service) RefundForCancellation(ctx context.Context, o *order.Order, amount int64, reason string, actor identity.Actor) (*order.RefundResult, error) {
	if o.RefundID != nil && *o.RefundID != "" {
		s.logger.Info("refund already recorded, skipping gateway call",
			zap.String("order_id", o.ID.String()),
			zap.String("refund_id", *o.RefundID),
		)
		return &order.RefundResult{ID: *o.RefundID, Status: "succeeded", Amount: amount}, nil
	}
	if o.PaymentID == "" {
		return nil, fmt.Errorf("%w: order %s", ErrMissingPaymentID, o.ID)
	}
	if amount <= 0 || amount > o.AmountPaid {
		return nil, apperrors.ValidationError(
			fmt.Sprintf("refund amount must be between 1 and %d", o.AmountPaid))
	}

	idempotencyKey := "refund:order:" + o.ID.String()

	var r *provider.Refund
	err := s.call(ctx, "refund", func(cctx context.Context) error {
		var err error
		r, err = s.gateway.Refund(cctx, o.PaymentID, amount, reason, idempotencyKey)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund issued",
		zap.String("order_id", o.ID.String()),
		zap.String("refund_id", r.ID),
		zap.Int64("amount", r.Amount),
		zap.String("actor_id", actor.ID.String()),
		zap.String("actor_role", string(actor.Role)),
		zap.String("request_id", requestctx.RequestID(ctx)),
	)

	return &order.RefundResult{ID: r.ID, Status: r.Status, Amount: r.Amount}, nil
}

// Capture settles a gateway hold, fully or partially, and confirms the
// local order. Valid only while the gateway payment is capturable.
func (s *Service) Capture(ctx context.Context, actor identity.Actor, req *CaptureRequest) (*CaptureResponse, error) {
	intent, err := s.getIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if !intent.Capturable() {
		return nil, fmt.Errorf("%w: intent is %s", ErrNotCapturable, intent.Status)
	}

	amount := intent.AmountCapturable
	if req.Amount != nil {
		if *req.Amount > intent.AmountCapturable {
			return nil, fmt.Errorf("%w: %d > %d", ErrAmountExceedsHold, *req.Amount, intent.AmountCapturable)
		}
		amount = *req.Amount
	}

	var captured *provider.Intent
	err = s.call(ctx, "capture", func(cctx context.Context) error {
		var err error
		captured, err = s.gateway.Capture(cctx, req.PaymentIntentID, amount, "capture:intent:"+req.PaymentIntentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	o, err := s.orders.GetOrderByPaymentID(ctx, req.PaymentIntentID)
	if err != nil {
		// The gateway settled; a missing local order is a
		// reconciliation case, not a silent success.
		s.logger.Error("captured intent has no local order",
			zap.String("payment_intent_id", req.PaymentIntentID),
			zap.Error(err),
		)
		return nil, err
	}

	from, fromVersion := o.Status, o.Version
	o.Status = order.StatusConfirmed
	if o.ConfirmedAt == nil {
		now := time.Now()
		o.ConfirmedAt = &now
	}
	o.PaymentStatus = order.PaymentStatusPaid
	o.AmountPaid = captured.AmountReceived
	o.Currency = captured.Currency
	if err := s.orders.UpdateIf(ctx, o, from, fromVersion); err != nil {
		s.logger.Error("capture succeeded but order update failed, reconciliation required",
			zap.String("order_id", o.ID.String()),
			zap.String("payment_intent_id", req.PaymentIntentID),
			zap.Error(err),
		)
		return nil, apperrors.NewAppError(
			"PAYMENT_RECONCILIATION_PENDING",
			"capture settled but the order could not be updated; do not retry",
			500,
			err,
		)
	}

	s.logCaptureAction("capture", o, actor, req.PaymentIntentID, amount)
	if s.bus != nil {
		s.bus.Publish(events.NewPaymentActionEvent(
			events.PaymentCapturedType, o.ID, req.PaymentIntentID, amount, req.Description, actor.ID,
		))
	}

	return &CaptureResponse{
		OrderID:         o.ID,
		PaymentIntentID: req.PaymentIntentID,
		AmountCaptured:  captured.AmountReceived,
		Currency:        captured.Currency,
		OrderStatus:     string(o.Status),
	}, nil
}

// Void cancels a gateway hold entirely and cancels the local order.
// Valid only while the gateway payment is capturable.
func (s *Service) Void(ctx context.Context, actor identity.Actor, req *VoidRequest) (*VoidResponse, error) {
	intent, err := s.getIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if !intent.Capturable() {
		return nil, fmt.Errorf("%w: intent is %s", ErrNotCapturable, intent.Status)
	}

	err = s.call(ctx, "void", func(cctx context.Context) error {
		_, err := s.gateway.Void(cctx, req.PaymentIntentID, req.Reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	o, err := s.orders.GetOrderByPaymentID(ctx, req.PaymentIntentID)
	if err != nil {
		s.logger.Error("voided intent has no local order",
			zap.String("payment_intent_id", req.PaymentIntentID),
			zap.Error(err),
		)
		return nil, err
	}

	from, fromVersion := o.Status, o.Version
	now := time.Now()
	o.Status = order.StatusCancelled
	o.CancelledAt = &now
	if req.Reason != "" {
		o.CancellationReason = req.Reason
	}
	if err := s.orders.UpdateIf(ctx, o, from, fromVersion); err != nil {
		s.logger.Error("void succeeded but order update failed, reconciliation required",
			zap.String("order_id", o.ID.String()),
			zap.String("payment_intent_id", req.PaymentIntentID),
			zap.Error(err),
		)
		return nil, apperrors.NewAppError(
			"PAYMENT_RECONCILIATION_PENDING",
			"hold was voided but the order could not be updated; do not retry",
			500,
			err,
		)
	}

	s.logCaptureAction("void", o, actor, req.PaymentIntentID, 0)
	if s.bus != nil {
		s.bus.Publish(events.NewPaymentActionEvent(
			events.PaymentVoidedType, o.ID, req.PaymentIntentID, 0, req.Reason, actor.ID,
		))
	}

	return &VoidResponse{
		OrderID:         o.ID,
		PaymentIntentID: req.PaymentIntentID,
		OrderStatus:     string(o.Status),
	}, nil
}

// UpdatePaymentMethod re-points an intent at a new payment method,
// used to recover from expired cards before capture.
func (s *Service) UpdatePaymentMethod(ctx context.Context, actor identity.Actor, req *UpdatePaymentMethodRequest) (*UpdatePaymentMethodResponse, error) {
	var updated *provider.Intent
	err := s.call(ctx, "update_payment_method", func(cctx context.Context) error {
		var err error
		updated, err = s.gateway.UpdatePaymentMethod(cctx, req.PaymentIntentID, req.PaymentMethodID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment method updated",
		zap.String("payment_intent_id", req.PaymentIntentID),
		zap.String("payment_method_id", req.PaymentMethodID),
		zap.String("actor_id", actor.ID.String()),
		zap.String("actor_role", string(actor.Role)),
		zap.String("request_id", requestctx.RequestID(ctx)),
	)

	if o, err := s.orders.GetOrderByPaymentID(ctx, req.PaymentIntentID); err == nil && s.bus != nil {
		s.bus.Publish(events.NewPaymentActionEvent(
			events.PaymentMethodUpdatedType, o.ID, req.PaymentIntentID, 0, req.PaymentMethodID, actor.ID,
		))
	}

	return &UpdatePaymentMethodResponse{
		PaymentIntentID: updated.ID,
		PaymentMethodID: req.PaymentMethodID,
		Status:          updated.Status,
	}, nil
}

// --- internals ---

func (s *Service) getIntent(ctx context.Context, intentID string) (*provider.Intent, error) {
	var intent *provider.Intent
	err := s.call(ctx, "get_intent", func(cctx context.Context) error {
		var err error
		intent, err = s.gateway.GetIntent(cctx, intentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return intent, nil
}

// call runs one gateway operation behind the breaker with a bounded
// timeout. A deadline is an ambiguous outcome: the caller must not
// assume failure and any retry must reuse the same idempotency key.
func (s *Service) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.breaker.Execute(func() (any, error) {
		return nil, fn(cctx)
	})

	outcome := "ok"
	var mapped error
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "open"
		mapped = apperrors.PaymentError("payment gateway unavailable", errors.Join(ErrGatewayUnavailable, err))
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
		mapped = apperrors.PaymentError(
			"payment gateway timed out; the outcome is unknown and the operation may have succeeded",
			errors.Join(ErrAmbiguousOutcome, err),
		)
	default:
		outcome = "error"
		mapped = apperrors.PaymentError("payment gateway rejected the operation", err)
	}

	if s.metrics != nil {
		s.metrics.RecordGatewayCall(op, outcome, time.Since(start))
	}
	if mapped != nil {
		s.logger.Warn("gateway call failed",
			zap.String("operation", op),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return mapped
	}
	return nil
}

func (s *Service) logCaptureAction(action string, o *order.Order, actor identity.Actor, intentID string, amount int64) {
	s.logger.Info("admin payment action",
		zap.String("action", action),
		zap.String("order_id", o.ID.String()),
		zap.String("payment_intent_id", intentID),
		zap.Int64("amount", amount),
		zap.String("actor_id", actor.ID.String()),
		zap.String("actor_role", string(actor.Role)),
	)
}
