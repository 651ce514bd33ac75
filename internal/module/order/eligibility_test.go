package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEligibility_TerminalOrdersNeverRefundable(t *testing.T) {
	now := time.Now()
	delivered := now.Add(-time.Hour)
	until := now.Add(time.Hour)

	for _, status := range []Status{StatusCompleted, StatusCancelled} {
		o := &Order{
			Status:              status,
			IsRefundable:        refundableFlag(true),
			DeliveredAt:         &delivered,
			RefundEligibleUntil: &until,
		}
		res := Eligibility(o, now)
		assert.False(t, res.IsEligible)
		assert.Equal(t, ReasonTerminalStatus, res.Reason)
		assert.False(t, res.CanBeOverridden, "terminal status must not be overridable")
	}
}

func TestEligibility_OperatorRevocationWins(t *testing.T) {
	now := time.Now()
	delivered := now.Add(-time.Hour)
	until := now.Add(time.Hour)

	o := &Order{
		Status:              StatusDelivered,
		IsRefundable:        refundableFlag(false),
		DeliveredAt:         &delivered,
		RefundEligibleUntil: &until,
	}
	res := Eligibility(o, now)
	assert.False(t, res.IsEligible)
	assert.Equal(t, ReasonOperatorOverride, res.Reason)
	assert.True(t, res.CanBeOverridden)
}

func TestEligibility_WithinWindow(t *testing.T) {
	now := time.Now()
	delivered := now.Add(-23 * time.Hour)
	until := delivered.Add(24 * time.Hour)

	o := &Order{
		Status:              StatusDelivered,
		IsRefundable:        refundableFlag(true),
		DeliveredAt:         &delivered,
		RefundEligibleUntil: &until,
	}
	res := Eligibility(o, now)
	assert.True(t, res.IsEligible)
	assert.Equal(t, ReasonWithinWindow, res.Reason)
	assert.Equal(t, until.Sub(now), res.TimeRemaining)
	assert.True(t, res.CanBeOverridden)
}

func TestEligibility_WindowExpired(t *testing.T) {
	now := time.Now()
	delivered := now.Add(-30 * time.Hour)
	until := delivered.Add(24 * time.Hour)

	o := &Order{
		Status:              StatusDelivered,
		IsRefundable:        refundableFlag(true),
		DeliveredAt:         &delivered,
		RefundEligibleUntil: &until,
	}
	res := Eligibility(o, now)
	assert.False(t, res.IsEligible)
	assert.Equal(t, ReasonWindowExpired, res.Reason)
	assert.Equal(t, now.Sub(until), res.TimeExpired)
	assert.True(t, res.CanBeOverridden, "expired window can be extended")
}

func TestEligibility_WindowBoundary(t *testing.T) {
	until := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	delivered := until.Add(-24 * time.Hour)
	o := &Order{
		Status:              StatusDelivered,
		IsRefundable:        refundableFlag(true),
		DeliveredAt:         &delivered,
		RefundEligibleUntil: &until,
	}

	// The deadline instant itself is still inside the window.
	assert.True(t, Eligibility(o, until).IsEligible)
	assert.True(t, Eligibility(o, until.Add(-time.Millisecond)).IsEligible)
	assert.False(t, Eligibility(o, until.Add(time.Millisecond)).IsEligible)
}

func TestEligibility_DeliveredWithoutWindow(t *testing.T) {
	now := time.Now()
	delivered := now.Add(-time.Hour)

	o := &Order{
		Status:       StatusDelivered,
		IsRefundable: refundableFlag(true),
		DeliveredAt:  &delivered,
	}
	res := Eligibility(o, now)
	assert.False(t, res.IsEligible)
	assert.Equal(t, ReasonWindowMissing, res.Reason)
	assert.True(t, res.CanBeOverridden)
}

func TestEligibility_NotYetDelivered(t *testing.T) {
	now := time.Now()

	for _, status := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady} {
		o := &Order{Status: status, IsRefundable: refundableFlag(true)}
		res := Eligibility(o, now)
		assert.True(t, res.IsEligible, "status %s", status)
		assert.Equal(t, ReasonNotYetDelivered, res.Reason)
		assert.True(t, res.CanBeOverridden)
	}
}

func TestEligibility_UnsetFlagDoesNotRevoke(t *testing.T) {
	now := time.Now()

	// The zero-value order: the refund flag was never touched. It must
	// fall through to the pre-delivery default, not read as revoked.
	for _, status := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady} {
		res := Eligibility(&Order{Status: status}, now)
		assert.True(t, res.IsEligible, "status %s", status)
		assert.Equal(t, ReasonNotYetDelivered, res.Reason)
	}

	// Only an explicit false revokes.
	res := Eligibility(&Order{Status: StatusPending, IsRefundable: refundableFlag(false)}, now)
	assert.False(t, res.IsEligible)
	assert.Equal(t, ReasonOperatorOverride, res.Reason)
}
