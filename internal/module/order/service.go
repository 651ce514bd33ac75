package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cribnosh/server/internal/shared/config"
	apperrors "github.com/cribnosh/server/internal/shared/errors"
	"github.com/cribnosh/server/internal/shared/events"
	"github.com/cribnosh/server/internal/shared/identity"
	"github.com/cribnosh/server/internal/utils/metrics"
	"github.com/cribnosh/server/internal/utils/pagination"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RefundResult describes a refund issued at the gateway.
type RefundResult struct {
	ID     string
	Status string
	Amount int64
}

// Refunder issues gateway refunds for cancellations. The payment
// module implements it; the indirection keeps the dependency one-way.
type Refunder interface {
	RefundForCancellation(ctx context.Context, o *Order, amount int64, reason string, actor identity.Actor) (*RefundResult, error)
}

// Service implements the order lifecycle operations. Each operation
// validates the actor's capability and the source state, then commits
// through a conditional write; a lost race surfaces as an invalid
// transition and is never retried automatically.
type Service struct {
	repo    Repository
	sm      *StateMachine
	refund  Refunder
	bus     *events.Bus
	metrics *metrics.Metrics
	logger  *zap.Logger
	cfg     config.OrdersConfig

	now func() time.Time
}

// NewService creates a new lifecycle service.
func NewService(repo Repository, refund Refunder, bus *events.Bus, m *metrics.Metrics, logger *zap.Logger, cfg config.OrdersConfig) *Service {
	if cfg.RefundWindow <= 0 {
		cfg.RefundWindow = 24 * time.Hour
	}
	return &Service{
		repo:    repo,
		sm:      NewStateMachine(),
		refund:  refund,
		bus:     bus,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// GetOrder returns an order visible to the actor: its customer, its
// chef, its assigned driver, or an operator.
func (s *Service) GetOrder(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, o) {
		return nil, ErrNotOwner
	}
	return o, nil
}

// Confirm moves a pending order to confirmed. Only the chef owning the
// order may confirm it.
func (s *Service) Confirm(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req *ConfirmRequest) (*TransitionResponse, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role != identity.RoleChef || actor.ID != o.ChefID {
		return nil, fmt.Errorf("%w: confirm requires the owning chef", ErrRoleNotPermitted)
	}

	from, fromVersion := o.Status, o.Version
	if err := s.validateTransition(from, StatusConfirmed); err != nil {
		return nil, err
	}

	now := s.now()
	o.Status = StatusConfirmed
	o.ConfirmedAt = &now
	if req.EstimatedPrepTimeMinutes != nil {
		o.EstimatedPrepTimeMinutes = *req.EstimatedPrepTimeMinutes
	}
	if req.Notes != "" {
		o.ChefNotes = req.Notes
	}

	if err := s.commit(ctx, o, from, fromVersion, actor, "confirm", req.Notes); err != nil {
		return nil, err
	}
	return &TransitionResponse{OrderID: o.ID, Status: o.Status}, nil
}

// Prepare moves a confirmed order to preparing. The owning chef or an
// operator may start preparation.
func (s *Service) Prepare(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req *PrepareRequest) (*TransitionResponse, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireChefOrOperator(actor, o); err != nil {
		return nil, err
	}

	from, fromVersion := o.Status, o.Version
	if err := s.validateTransition(from, StatusPreparing); err != nil {
		return nil, err
	}

	now := s.now()
	o.Status = StatusPreparing
	o.PreparingAt = &now
	if req.PrepNotes != "" {
		o.PrepNotes = req.PrepNotes
	}
	if req.UpdatedPrepTime != nil {
		o.EstimatedPrepTimeMinutes = *req.UpdatedPrepTime
	}

	if err := s.commit(ctx, o, from, fromVersion, actor, "prepare", req.PrepNotes); err != nil {
		return nil, err
	}
	return &TransitionResponse{OrderID: o.ID, Status: o.Status}, nil
}

// Ready moves a preparing order to ready.
func (s *Service) Ready(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req *ReadyRequest) (*TransitionResponse, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireChefOrOperator(actor, o); err != nil {
		return nil, err
	}

	from, fromVersion := o.Status, o.Version
	if err := s.validateTransition(from, StatusReady); err != nil {
		return nil, err
	}

	now := s.now()
	o.Status = StatusReady
	o.ReadyAt = &now
	if req.ReadyNotes != "" {
		o.ReadyNotes = req.ReadyNotes
	}

	if err := s.commit(ctx, o, from, fromVersion, actor, "ready", req.ReadyNotes); err != nil {
		return nil, err
	}
	return &TransitionResponse{OrderID: o.ID, Status: o.Status}, nil
}

// Deliver moves a ready order to delivered, opens the refund window
// and marks the order refundable. The assigned driver or an operator
// may deliver.
func (s *Service) Deliver(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req *DeliverRequest) (*DeliverResponse, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireDriverOrOperator(actor, o); err != nil {
		return nil, err
	}

	from, fromVersion := o.Status, o.Version
	if err := s.validateTransition(from, StatusDelivered); err != nil {
		return nil, err
	}

	now := s.now()
	eligibleUntil := now.Add(s.cfg.RefundWindow)
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.RefundEligibleUntil = &eligibleUntil
	o.IsRefundable = refundableFlag(true)
	if req.DeliveryNotes != "" {
		o.DeliveryNotes = req.DeliveryNotes
	}

	if err := s.commit(ctx, o, from, fromVersion, actor, "deliver", req.DeliveryNotes); err != nil {
		return nil, err
	}
	return &DeliverResponse{OrderID: o.ID, Status: o.Status, IsRefundable: true}, nil
}

// Complete moves a delivered order to completed. Operator only.
func (s *Service) Complete(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req *CompleteRequest) (*TransitionResponse, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOperator() {
		return nil, fmt.Errorf("%w: complete requires an operator", ErrRoleNotPermitted)
	}

	from, fromVersion := o.Status, o.Version
	if err := s.validateTransition(from, StatusCompleted); err != nil {
		return nil, err
	}

	now := s.now()
	o.Status = StatusCompleted
	o.CompletedAt = &now
	// Completion closes the refund posture.
	o.IsRefundable = refundableFlag(false)
	if req.CompletionNotes != "" {
		o.CompletionNotes = req.CompletionNotes
	}

	if err := s.commit(ctx, o, from, fromVersion, actor, "complete", req.CompletionNotes); err != nil {
		return nil, err
	}
	return &TransitionResponse{OrderID: o.ID, Status: o.Status}, nil
}

// Review records the customer's review. It never changes order_status.
// Reviews are accepted from delivered orders, and from completed ones
// when policy allows.
func (s *Service) Review(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req *ReviewRequest) (*ReviewResponse, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role != identity.RoleCustomer || actor.ID != o.CustomerID {
		return nil, fmt.Errorf("%w: review requires the owning customer", ErrNotOwner)
	}

	switch o.Status {
	case StatusDelivered:
		// always reviewable
	case StatusCompleted:
		if !s.cfg.AllowReviewAfterCompletion {
			return nil, fmt.Errorf("%w: reviews after completion are disabled", ErrReviewNotAllowed)
		}
	default:
		return nil, fmt.Errorf("%w: order is %s", ErrReviewNotAllowed, o.Status)
	}
	if o.ReviewedAt != nil {
		return nil, fmt.Errorf("%w: order already reviewed", ErrReviewNotAllowed)
	}

	from, fromVersion := o.Status, o.Version
	now := s.now()
	o.ReviewedAt = &now
	if req.ReviewNotes != "" {
		o.ReviewNotes = req.ReviewNotes
	}

	if err := s.commit(ctx, o, from, fromVersion, actor, "review", req.ReviewNotes); err != nil {
		return nil, err
	}
	return &ReviewResponse{OrderID: o.ID, ReviewedAt: now}, nil
}

// Cancel cancels an order from any non-terminal state. When the
// payment has settled, the gateway refund must succeed before the
// cancelled status is committed.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req *CancelRequest) (*CancelResponse, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCancelCapability(actor, o); err != nil {
		return nil, err
	}

	from, fromVersion := o.Status, o.Version
	if err := s.validateTransition(from, StatusCancelled); err != nil {
		return nil, err
	}

	var refundInfo *RefundInfo
	if o.IsPaid() {
		amount := o.AmountPaid
		if req.RefundAmount != nil {
			if *req.RefundAmount <= 0 || *req.RefundAmount > o.AmountPaid {
				return nil, apperrors.ValidationError(
					fmt.Sprintf("refund amount must be between 1 and %d", o.AmountPaid))
			}
			amount = *req.RefundAmount
		}

		result, err := s.refund.RefundForCancellation(ctx, o, amount, req.Reason, actor)
		if err != nil {
			// The order stays in its pre-cancellation status.
			s.logger.Warn("refund failed, cancellation aborted",
				zap.String("order_id", o.ID.String()),
				zap.String("actor_id", actor.ID.String()),
				zap.Error(err),
			)
			return nil, err
		}

		o.PaymentStatus = PaymentStatusRefunded
		o.RefundID = &result.ID
		refundInfo = &RefundInfo{ID: result.ID, Status: result.Status, Amount: result.Amount}

		if s.bus != nil {
			s.bus.Publish(events.NewRefundIssuedEvent(o.ID, result.ID, result.Amount, o.Currency, req.Reason, actor.ID))
		}
		if s.metrics != nil {
			s.metrics.RecordRefund(req.Reason, o.Currency, result.Amount)
		}
	}

	now := s.now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	if req.Reason != "" {
		o.CancellationReason = req.Reason
	}

	if err := s.commit(ctx, o, from, fromVersion, actor, "cancel", req.Reason); err != nil {
		if refundInfo != nil {
			// The gateway holds a refund the store does not reflect.
			// Surface the uncertainty and leave a loud trail for the
			// reconciliation pass.
			s.logger.Error("refund issued but order update failed, reconciliation required",
				zap.String("order_id", o.ID.String()),
				zap.String("refund_id", refundInfo.ID),
				zap.Error(err),
			)
			return nil, apperrors.NewAppError(
				"PAYMENT_RECONCILIATION_PENDING",
				"refund was issued but the order could not be updated; do not retry",
				500,
				err,
			)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordCancellation(string(from), refundInfo != nil)
	}
	return &CancelResponse{OrderID: o.ID, Status: o.Status, Refund: refundInfo}, nil
}

// SetRefundable is the operator override on refund eligibility.
// Terminal orders cannot have their refund posture overridden.
func (s *Service) SetRefundable(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req *SetRefundableRequest) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOperator() {
		return nil, fmt.Errorf("%w: eligibility override requires an operator", ErrRoleNotPermitted)
	}
	if o.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot override a %s order", ErrInvalidTransition, o.Status)
	}

	from, fromVersion := o.Status, o.Version
	o.IsRefundable = req.IsRefundable

	if err := s.commit(ctx, o, from, fromVersion, actor, "set_refundable", req.Reason); err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(events.NewRefundEligibilityChangedEvent(o.ID, *req.IsRefundable, req.Reason, actor.ID))
	}
	return o, nil
}

// ExtendRefundWindow moves the refund window of a delivered order and
// recomputes eligibility from the new deadline.
func (s *Service) ExtendRefundWindow(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req *RefundWindowRequest) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOperator() {
		return nil, fmt.Errorf("%w: refund window change requires an operator", ErrRoleNotPermitted)
	}
	if o.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot override a %s order", ErrInvalidTransition, o.Status)
	}
	if o.DeliveredAt == nil {
		return nil, apperrors.ValidationError("refund window applies only to delivered orders")
	}

	from, fromVersion := o.Status, o.Version
	until := req.EligibleUntil
	windowOpen := until.After(s.now())
	o.RefundEligibleUntil = &until
	o.IsRefundable = refundableFlag(windowOpen)

	if err := s.commit(ctx, o, from, fromVersion, actor, "refund_window", req.Reason); err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(events.NewRefundEligibilityChangedEvent(o.ID, windowOpen, req.Reason, actor.ID))
	}
	return o, nil
}

// CheckEligibility evaluates the refund policy for one order.
func (s *Service) CheckEligibility(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*EligibilityResult, error) {
	o, err := s.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	res := Eligibility(o, s.now())
	return &res, nil
}

// RefundEligibilityReport computes the refund posture of matching
// orders for the admin console.
func (s *Service) RefundEligibilityReport(ctx context.Context, filter *ReportFilter, p *pagination.Pagination) (*ReportResponse, error) {
	if p == nil {
		p = pagination.New()
	}
	p.Normalize()

	orders, total, err := s.repo.ListForReport(ctx, filter, p)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]ReportEntry, 0, len(orders))
	summary := ReportSummary{Total: total}
	for _, o := range orders {
		elig := Eligibility(o, now)
		entries = append(entries, ReportEntry{
			OrderID:      o.ID,
			OrderNo:      o.OrderNo,
			CustomerID:   o.CustomerID,
			Status:       o.Status,
			IsRefundable: o.IsRefundable,
			Eligibility:  elig,
			DeliveredAt:  o.DeliveredAt,
			CancelledAt:  o.CancelledAt,
			CompletedAt:  o.CompletedAt,
		})
		if elig.IsEligible {
			summary.Eligible++
		} else {
			summary.NotEligible++
		}
		if elig.CanBeOverridden {
			summary.Overridable++
		}
	}

	return &ReportResponse{
		Orders:   entries,
		Summary:  summary,
		PageInfo: p.Info(total),
	}, nil
}

// History returns the audit trail for an order.
func (s *Service) History(ctx context.Context, actor identity.Actor, orderID uuid.UUID) ([]*Event, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, o) {
		return nil, ErrNotOwner
	}
	return s.repo.ListEvents(ctx, orderID)
}

// --- internals ---

func (s *Service) validateTransition(from, to Status) error {
	if err := s.sm.Validate(from, to); err != nil {
		if s.metrics != nil {
			s.metrics.RecordTransition(string(from), string(to), "rejected")
		}
		return err
	}
	return nil
}

// commit applies the mutated order through a conditional write keyed
// on the status and version observed at read time, then publishes the
// transition. A lost race is reported as an invalid transition; the
// caller must re-fetch and decide.
func (s *Service) commit(ctx context.Context, o *Order, from Status, fromVersion int64, actor identity.Actor, action, notes string) error {
	err := s.repo.UpdateIf(ctx, o, from, fromVersion)
	if err != nil {
		if errors.Is(err, ErrStaleOrder) {
			if s.metrics != nil {
				s.metrics.RecordTransition(string(from), string(o.Status), "conflict")
			}
			return fmt.Errorf("%w: order changed concurrently, re-fetch and retry the correct operation", ErrInvalidTransition)
		}
		return err
	}

	if s.metrics != nil && from != o.Status {
		s.metrics.RecordTransition(string(from), string(o.Status), "committed")
	}

	s.logger.Info("order operation committed",
		zap.String("order_id", o.ID.String()),
		zap.String("action", action),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
		zap.String("actor_id", actor.ID.String()),
		zap.String("actor_role", string(actor.Role)),
	)

	if s.bus != nil {
		s.bus.Publish(events.NewOrderStatusChangedEvent(
			o.ID, string(from), string(o.Status), actor.ID, string(actor.Role), notes,
		))
	}
	return nil
}

func (s *Service) canView(actor identity.Actor, o *Order) bool {
	if actor.IsOperator() {
		return true
	}
	switch actor.Role {
	case identity.RoleCustomer:
		return actor.ID == o.CustomerID
	case identity.RoleChef:
		return actor.ID == o.ChefID
	case identity.RoleDriver:
		return o.DriverID != nil && actor.ID == *o.DriverID
	default:
		return false
	}
}

func (s *Service) requireChefOrOperator(actor identity.Actor, o *Order) error {
	if actor.IsOperator() {
		return nil
	}
	if actor.Role == identity.RoleChef {
		if actor.ID == o.ChefID {
			return nil
		}
		return fmt.Errorf("%w: order belongs to another chef", ErrNotOwner)
	}
	return fmt.Errorf("%w: requires the owning chef or an operator", ErrRoleNotPermitted)
}

func (s *Service) requireDriverOrOperator(actor identity.Actor, o *Order) error {
	if actor.IsOperator() {
		return nil
	}
	if actor.Role == identity.RoleDriver {
		if o.DriverID != nil && actor.ID == *o.DriverID {
			return nil
		}
		return fmt.Errorf("%w: order is assigned to another driver", ErrNotOwner)
	}
	return fmt.Errorf("%w: requires the assigned driver or an operator", ErrRoleNotPermitted)
}

func (s *Service) requireCancelCapability(actor identity.Actor, o *Order) error {
	if actor.IsOperator() {
		return nil
	}
	switch actor.Role {
	case identity.RoleCustomer:
		if actor.ID == o.CustomerID {
			return nil
		}
		return fmt.Errorf("%w: order belongs to another customer", ErrNotOwner)
	case identity.RoleChef:
		if actor.ID == o.ChefID {
			return nil
		}
		return fmt.Errorf("%w: order belongs to another chef", ErrNotOwner)
	default:
		return fmt.Errorf("%w: cancel requires the owning customer, the owning chef or an operator", ErrRoleNotPermitted)
	}
}
