package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cribnosh/server/internal/shared/config"
	apperrors "github.com/cribnosh/server/internal/shared/errors"
	"github.com/cribnosh/server/internal/shared/identity"
	"github.com/cribnosh/server/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository implements Repository for testing. UpdateIf honors the
// conditional-write contract: a write only lands when the stored status
// and version still match what the caller observed.
type MockRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order
	events []*Event

	// staleOnce makes the next UpdateIf lose the race.
	staleOnce bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{orders: make(map[uuid.UUID]*Order)}
}

func (m *MockRepository) CreateOrder(_ context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *MockRepository) GetOrder(_ context.Context, id uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockRepository) GetOrderByNo(_ context.Context, orderNo string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNo == orderNo {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (m *MockRepository) GetOrderByPaymentID(_ context.Context, paymentID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.PaymentID == paymentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (m *MockRepository) UpdateIf(_ context.Context, order *Order, expectedStatus Status, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[order.ID]
	if !ok {
		return ErrOrderNotFound
	}
	if m.staleOnce {
		m.staleOnce = false
		return ErrStaleOrder
	}
	if stored.Status != expectedStatus || stored.Version != expectedVersion {
		return ErrStaleOrder
	}
	order.Version = expectedVersion + 1
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *MockRepository) ListForReport(_ context.Context, filter *ReportFilter, p *pagination.Pagination) ([]*Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Order
	for _, o := range m.orders {
		if filter != nil {
			if filter.OrderID != nil && o.ID != *filter.OrderID {
				continue
			}
			if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
				continue
			}
			if filter.Status != nil && o.Status != *filter.Status {
				continue
			}
		}
		cp := *o
		result = append(result, &cp)
	}
	return result, int64(len(result)), nil
}

func (m *MockRepository) CreateEvent(_ context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockRepository) ListEvents(_ context.Context, orderID uuid.UUID) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Event
	for _, e := range m.events {
		if e.OrderID == orderID {
			result = append(result, e)
		}
	}
	return result, nil
}

// MockRefunder implements Refunder for testing.
type MockRefunder struct {
	mu     sync.Mutex
	result *RefundResult
	err    error
	calls  int
}

func (m *MockRefunder) RefundForCancellation(_ context.Context, o *Order, amount int64, _ string, _ identity.Actor) (*RefundResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &RefundResult{ID: "re_test", Status: "succeeded", Amount: amount}, nil
}

func (m *MockRefunder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fixture struct {
	repo    *MockRepository
	refund  *MockRefunder
	service *Service

	customer identity.Actor
	chef     identity.Actor
	driver   identity.Actor
	staff    identity.Actor
}

func newFixture(t *testing.T, cfg config.OrdersConfig) *fixture {
	t.Helper()
	repo := NewMockRepository()
	refund := &MockRefunder{}
	return &fixture{
		repo:     repo,
		refund:   refund,
		service:  NewService(repo, refund, nil, nil, zap.NewNop(), cfg),
		customer: identity.Actor{ID: uuid.New(), Role: identity.RoleCustomer},
		chef:     identity.Actor{ID: uuid.New(), Role: identity.RoleChef},
		driver:   identity.Actor{ID: uuid.New(), Role: identity.RoleDriver},
		staff:    identity.Actor{ID: uuid.New(), Role: identity.RoleStaff},
	}
}

func (f *fixture) seed(t *testing.T, status Status, mutate ...func(*Order)) *Order {
	t.Helper()
	driverID := f.driver.ID
	o := &Order{
		ID:          uuid.New(),
		OrderNo:     GenerateOrderNo(),
		CustomerID:  f.customer.ID,
		ChefID:      f.chef.ID,
		DriverID:    &driverID,
		Status:      status,
		TotalAmount: 2500,
		Currency:    "gbp",
	}
	for _, fn := range mutate {
		fn(o)
	}
	require.NoError(t, f.repo.CreateOrder(context.Background(), o))
	return o
}

func paid(amount int64, paymentID string) func(*Order) {
	return func(o *Order) {
		o.PaymentStatus = PaymentStatusPaid
		o.AmountPaid = amount
		o.PaymentID = paymentID
	}
}

func TestService_ConfirmByOwningChef(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusPending)

	prep := 30
	resp, err := f.service.Confirm(context.Background(), f.chef, o.ID, &ConfirmRequest{
		EstimatedPrepTimeMinutes: &prep,
		Notes:                    "on it",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, resp.Status)

	stored, err := f.repo.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
	assert.NotNil(t, stored.ConfirmedAt)
	assert.Equal(t, 30, stored.EstimatedPrepTimeMinutes)
	assert.Equal(t, int64(1), stored.Version)
}

func TestService_ConfirmRequiresOwningChef(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusPending)

	otherChef := identity.Actor{ID: uuid.New(), Role: identity.RoleChef}
	_, err := f.service.Confirm(context.Background(), otherChef, o.ID, &ConfirmRequest{})
	assert.ErrorIs(t, err, ErrRoleNotPermitted)

	_, err = f.service.Confirm(context.Background(), f.customer, o.ID, &ConfirmRequest{})
	assert.ErrorIs(t, err, ErrRoleNotPermitted)

	// Even operators cannot confirm on the chef's behalf.
	_, err = f.service.Confirm(context.Background(), f.staff, o.ID, &ConfirmRequest{})
	assert.ErrorIs(t, err, ErrRoleNotPermitted)
}

func TestService_ConfirmTwiceRejected(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusPending)

	_, err := f.service.Confirm(context.Background(), f.chef, o.ID, &ConfirmRequest{})
	require.NoError(t, err)

	_, err = f.service.Confirm(context.Background(), f.chef, o.ID, &ConfirmRequest{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_DeliverFromPendingRejected(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusPending)

	_, err := f.service.Deliver(context.Background(), f.driver, o.ID, &DeliverRequest{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, _ := f.repo.GetOrder(context.Background(), o.ID)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Nil(t, stored.DeliveredAt)
}

func TestService_DeliverOpensRefundWindow(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{RefundWindow: 24 * time.Hour})
	o := f.seed(t, StatusReady)

	deliveredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return deliveredAt }

	resp, err := f.service.Deliver(context.Background(), f.driver, o.ID, &DeliverRequest{})
	require.NoError(t, err)
	assert.True(t, resp.IsRefundable)

	stored, _ := f.repo.GetOrder(context.Background(), o.ID)
	require.NotNil(t, stored.DeliveredAt)
	require.NotNil(t, stored.RefundEligibleUntil)
	assert.Equal(t, deliveredAt, *stored.DeliveredAt)
	assert.Equal(t, deliveredAt.Add(24*time.Hour), *stored.RefundEligibleUntil)
	require.NotNil(t, stored.IsRefundable)
	assert.True(t, *stored.IsRefundable)
}

func TestService_DeliverRequiresAssignedDriver(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusReady)

	otherDriver := identity.Actor{ID: uuid.New(), Role: identity.RoleDriver}
	_, err := f.service.Deliver(context.Background(), otherDriver, o.ID, &DeliverRequest{})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.service.Deliver(context.Background(), f.customer, o.ID, &DeliverRequest{})
	assert.ErrorIs(t, err, ErrRoleNotPermitted)

	// Operators may deliver on the driver's behalf.
	_, err = f.service.Deliver(context.Background(), f.staff, o.ID, &DeliverRequest{})
	assert.NoError(t, err)
}

func TestService_PrepareCapabilities(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})

	o := f.seed(t, StatusConfirmed)
	_, err := f.service.Prepare(context.Background(), f.driver, o.ID, &PrepareRequest{})
	assert.ErrorIs(t, err, ErrRoleNotPermitted)

	_, err = f.service.Prepare(context.Background(), f.chef, o.ID, &PrepareRequest{})
	assert.NoError(t, err)

	o2 := f.seed(t, StatusConfirmed)
	_, err = f.service.Prepare(context.Background(), f.staff, o2.ID, &PrepareRequest{})
	assert.NoError(t, err)
}

func TestService_CompleteRequiresOperator(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusDelivered)

	_, err := f.service.Complete(context.Background(), f.customer, o.ID, &CompleteRequest{})
	assert.ErrorIs(t, err, ErrRoleNotPermitted)
	_, err = f.service.Complete(context.Background(), f.chef, o.ID, &CompleteRequest{})
	assert.ErrorIs(t, err, ErrRoleNotPermitted)

	resp, err := f.service.Complete(context.Background(), f.staff, o.ID, &CompleteRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
}

func TestService_CompleteClosesRefundEligibility(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusDelivered, func(o *Order) { o.IsRefundable = refundableFlag(true) })

	_, err := f.service.Complete(context.Background(), f.staff, o.ID, &CompleteRequest{})
	require.NoError(t, err)

	stored, _ := f.repo.GetOrder(context.Background(), o.ID)
	require.NotNil(t, stored.IsRefundable)
	assert.False(t, *stored.IsRefundable)
}

func TestService_CancelUnpaidSkipsRefund(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusPending)

	resp, err := f.service.Cancel(context.Background(), f.customer, o.ID, &CancelRequest{Reason: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, resp.Status)
	assert.Nil(t, resp.Refund)
	assert.Equal(t, 0, f.refund.callCount())

	stored, _ := f.repo.GetOrder(context.Background(), o.ID)
	assert.Equal(t, StatusCancelled, stored.Status)
	assert.NotNil(t, stored.CancelledAt)
	assert.Equal(t, "changed my mind", stored.CancellationReason)
}

func TestService_CancelPaidRefundsFirst(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusConfirmed, paid(2500, "pi_123"))

	resp, err := f.service.Cancel(context.Background(), f.customer, o.ID, &CancelRequest{Reason: "too late"})
	require.NoError(t, err)
	require.NotNil(t, resp.Refund)
	assert.Equal(t, "re_test", resp.Refund.ID)
	assert.Equal(t, int64(2500), resp.Refund.Amount)
	assert.Equal(t, 1, f.refund.callCount())

	stored, _ := f.repo.GetOrder(context.Background(), o.ID)
	assert.Equal(t, StatusCancelled, stored.Status)
	assert.Equal(t, PaymentStatusRefunded, stored.PaymentStatus)
	require.NotNil(t, stored.RefundID)
	assert.Equal(t, "re_test", *stored.RefundID)
}

func TestService_CancelPartialRefundValidation(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusConfirmed, paid(2500, "pi_123"))

	over := int64(3000)
	_, err := f.service.Cancel(context.Background(), f.customer, o.ID, &CancelRequest{RefundAmount: &over})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Equal(t, 0, f.refund.callCount())

	partial := int64(1000)
	resp, err := f.service.Cancel(context.Background(), f.customer, o.ID, &CancelRequest{RefundAmount: &partial})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), resp.Refund.Amount)
}

func TestService_CancelAbortsWhenRefundFails(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusConfirmed, paid(2500, "pi_123"))
	f.refund.err = errors.New("gateway rejected the refund")

	_, err := f.service.Cancel(context.Background(), f.customer, o.ID, &CancelRequest{})
	require.Error(t, err)

	// The order stays where it was: no cancellation without a refund.
	stored, _ := f.repo.GetOrder(context.Background(), o.ID)
	assert.Equal(t, StatusConfirmed, stored.Status)
	assert.Equal(t, PaymentStatusPaid, stored.PaymentStatus)
	assert.Nil(t, stored.RefundID)
}

func TestService_CancelReconciliationPending(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusConfirmed, paid(2500, "pi_123"))
	f.repo.staleOnce = true

	_, err := f.service.Cancel(context.Background(), f.customer, o.ID, &CancelRequest{})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAYMENT_RECONCILIATION_PENDING", appErr.Code)
	assert.Equal(t, 500, appErr.StatusCode)
	assert.Equal(t, 1, f.refund.callCount())
}

func TestService_DoubleCancelNeverDoubleRefunds(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusConfirmed, paid(2500, "pi_123"))

	_, err := f.service.Cancel(context.Background(), f.customer, o.ID, &CancelRequest{})
	require.NoError(t, err)

	_, err = f.service.Cancel(context.Background(), f.customer, o.ID, &CancelRequest{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, f.refund.callCount())
}

func TestService_ConcurrentTransitionsOnlyOneCommits(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusReady)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Deliver(context.Background(), f.driver, o.ID, &DeliverRequest{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one of the racing writers must win")

	stored, _ := f.repo.GetOrder(context.Background(), o.ID)
	assert.Equal(t, StatusDelivered, stored.Status)
	assert.Equal(t, int64(1), stored.Version)
}

func TestService_CancelCapabilities(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusPending)

	_, err := f.service.Cancel(context.Background(), f.driver, o.ID, &CancelRequest{})
	assert.ErrorIs(t, err, ErrRoleNotPermitted)

	otherCustomer := identity.Actor{ID: uuid.New(), Role: identity.RoleCustomer}
	_, err = f.service.Cancel(context.Background(), otherCustomer, o.ID, &CancelRequest{})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.service.Cancel(context.Background(), f.chef, o.ID, &CancelRequest{})
	assert.NoError(t, err)
}

func TestService_ReviewDelivered(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusDelivered)

	resp, err := f.service.Review(context.Background(), f.customer, o.ID, &ReviewRequest{ReviewNotes: "great"})
	require.NoError(t, err)
	assert.False(t, resp.ReviewedAt.IsZero())

	// Review never moves the order status.
	stored, _ := f.repo.GetOrder(context.Background(), o.ID)
	assert.Equal(t, StatusDelivered, stored.Status)
	assert.NotNil(t, stored.ReviewedAt)
	assert.Equal(t, "great", stored.ReviewNotes)
	assert.Equal(t, int64(1), stored.Version)
}

func TestService_ReviewTwiceRejected(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusDelivered)

	_, err := f.service.Review(context.Background(), f.customer, o.ID, &ReviewRequest{})
	require.NoError(t, err)

	_, err = f.service.Review(context.Background(), f.customer, o.ID, &ReviewRequest{})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
}

func TestService_ReviewAfterCompletionPolicy(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{AllowReviewAfterCompletion: true})
	o := f.seed(t, StatusCompleted)
	_, err := f.service.Review(context.Background(), f.customer, o.ID, &ReviewRequest{})
	assert.NoError(t, err)

	f2 := newFixture(t, config.OrdersConfig{AllowReviewAfterCompletion: false})
	o2 := f2.seed(t, StatusCompleted)
	_, err = f2.service.Review(context.Background(), f2.customer, o2.ID, &ReviewRequest{})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
}

func TestService_ReviewRequiresOwningCustomer(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusDelivered)

	_, err := f.service.Review(context.Background(), f.chef, o.ID, &ReviewRequest{})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.service.Review(context.Background(), f.staff, o.ID, &ReviewRequest{})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestService_SetRefundable(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusDelivered, func(o *Order) { o.IsRefundable = refundableFlag(true) })

	off := false
	_, err := f.service.SetRefundable(context.Background(), f.customer, o.ID, &SetRefundableRequest{IsRefundable: &off})
	assert.ErrorIs(t, err, ErrRoleNotPermitted)

	updated, err := f.service.SetRefundable(context.Background(), f.staff, o.ID, &SetRefundableRequest{IsRefundable: &off, Reason: "fraud hold"})
	require.NoError(t, err)
	require.NotNil(t, updated.IsRefundable)
	assert.False(t, *updated.IsRefundable)

	cancelled := f.seed(t, StatusCancelled)
	_, err = f.service.SetRefundable(context.Background(), f.staff, cancelled.ID, &SetRefundableRequest{IsRefundable: &off})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_ExtendRefundWindow(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return now }

	// Not delivered yet: the window does not apply.
	pending := f.seed(t, StatusPending)
	until := now.Add(48 * time.Hour)
	_, err := f.service.ExtendRefundWindow(context.Background(), f.staff, pending.ID, &RefundWindowRequest{EligibleUntil: until})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.StatusCode)

	deliveredAt := now.Add(-30 * time.Hour)
	expired := f.seed(t, StatusDelivered, func(o *Order) {
		o.DeliveredAt = &deliveredAt
		o.IsRefundable = refundableFlag(false)
	})

	updated, err := f.service.ExtendRefundWindow(context.Background(), f.staff, expired.ID, &RefundWindowRequest{EligibleUntil: until, Reason: "goodwill"})
	require.NoError(t, err)
	require.NotNil(t, updated.IsRefundable)
	assert.True(t, *updated.IsRefundable)
	require.NotNil(t, updated.RefundEligibleUntil)
	assert.Equal(t, until, *updated.RefundEligibleUntil)

	// Moving the window into the past revokes eligibility.
	past := now.Add(-time.Hour)
	updated, err = f.service.ExtendRefundWindow(context.Background(), f.staff, expired.ID, &RefundWindowRequest{EligibleUntil: past})
	require.NoError(t, err)
	require.NotNil(t, updated.IsRefundable)
	assert.False(t, *updated.IsRefundable)
}

func TestService_GetOrderVisibility(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	o := f.seed(t, StatusConfirmed)

	for _, actor := range []identity.Actor{f.customer, f.chef, f.driver, f.staff} {
		_, err := f.service.GetOrder(context.Background(), actor, o.ID)
		assert.NoError(t, err, "role %s", actor.Role)
	}

	stranger := identity.Actor{ID: uuid.New(), Role: identity.RoleCustomer}
	_, err := f.service.GetOrder(context.Background(), stranger, o.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.service.GetOrder(context.Background(), f.customer, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_RefundEligibilityReport(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return now }

	deliveredAt := now.Add(-2 * time.Hour)
	within := deliveredAt.Add(24 * time.Hour)
	f.seed(t, StatusDelivered, func(o *Order) {
		o.IsRefundable = refundableFlag(true)
		o.DeliveredAt = &deliveredAt
		o.RefundEligibleUntil = &within
	})

	lateDelivery := now.Add(-30 * time.Hour)
	expired := lateDelivery.Add(24 * time.Hour)
	f.seed(t, StatusDelivered, func(o *Order) {
		o.IsRefundable = refundableFlag(true)
		o.DeliveredAt = &lateDelivery
		o.RefundEligibleUntil = &expired
	})

	f.seed(t, StatusCompleted)

	report, err := f.service.RefundEligibilityReport(context.Background(), nil, pagination.New())
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Eligible)
	assert.Equal(t, 2, report.Summary.NotEligible)
	assert.Equal(t, 2, report.Summary.Overridable)
	assert.Len(t, report.Orders, 3)
}

func TestService_ReportStatusFilter(t *testing.T) {
	f := newFixture(t, config.OrdersConfig{})
	f.seed(t, StatusPending)
	f.seed(t, StatusPending)
	f.seed(t, StatusCancelled)

	status := StatusPending
	report, err := f.service.RefundEligibilityReport(context.Background(), &ReportFilter{Status: &status}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Summary.Total)
	for _, entry := range report.Orders {
		assert.Equal(t, StatusPending, entry.Status)
	}
}
