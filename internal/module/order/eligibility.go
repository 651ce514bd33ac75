package order

import "time"

// Eligibility reason codes.
const (
	ReasonTerminalStatus   = "order_in_terminal_status"
	ReasonOperatorOverride = "refunds_disabled_by_operator"
	ReasonWindowExpired    = "refund_window_expired"
	ReasonWithinWindow     = "within_refund_window"
	ReasonWindowMissing    = "delivered_without_refund_window"
	ReasonNotYetDelivered  = "not_yet_delivered"
)

// EligibilityResult is the outcome of the refund eligibility policy for
// a single order at a single instant.
type EligibilityResult struct {
	IsEligible      bool          `json:"is_eligible"`
	Reason          string        `json:"reason"`
	TimeRemaining   time.Duration `json:"time_remaining,omitempty"`
	TimeExpired     time.Duration `json:"time_expired,omitempty"`
	CanBeOverridden bool          `json:"can_be_overridden"`
	OverrideReason  string        `json:"override_reason,omitempty"`
}

// Eligibility computes whether an order is refundable at `now`.
// It is pure: the only clock it consults is the argument, so the
// lifecycle service and the reporting surface share one source of truth.
//
// Rules are evaluated in order:
//  1. terminal orders are never refundable and cannot be overridden
//  2. an explicit revocation wins, but can be restored; an order that
//     never had the flag set is not revoked
//  3. delivered orders are judged against their refund window
//  4. delivered orders missing a window are malformed, not refundable
//  5. orders not yet delivered are refundable by default
func Eligibility(o *Order, now time.Time) EligibilityResult {
	if o.Status.IsTerminal() {
		return EligibilityResult{
			IsEligible:      false,
			Reason:          ReasonTerminalStatus,
			CanBeOverridden: false,
		}
	}

	if o.RefundsRevoked() {
		return EligibilityResult{
			IsEligible:      false,
			Reason:          ReasonOperatorOverride,
			CanBeOverridden: true,
			OverrideReason:  "operator may restore eligibility",
		}
	}

	if o.DeliveredAt != nil && o.RefundEligibleUntil != nil {
		if now.After(*o.RefundEligibleUntil) {
			return EligibilityResult{
				IsEligible:      false,
				Reason:          ReasonWindowExpired,
				TimeExpired:     now.Sub(*o.RefundEligibleUntil),
				CanBeOverridden: true,
				OverrideReason:  "operator may extend the window",
			}
		}
		return EligibilityResult{
			IsEligible:      true,
			Reason:          ReasonWithinWindow,
			TimeRemaining:   o.RefundEligibleUntil.Sub(now),
			CanBeOverridden: true,
			OverrideReason:  "operator may revoke eligibility",
		}
	}

	if o.DeliveredAt != nil {
		return EligibilityResult{
			IsEligible:      false,
			Reason:          ReasonWindowMissing,
			CanBeOverridden: true,
			OverrideReason:  "operator may set a refund window",
		}
	}

	return EligibilityResult{
		IsEligible:      true,
		Reason:          ReasonNotYetDelivered,
		CanBeOverridden: true,
		OverrideReason:  "operator may revoke eligibility",
	}
}
