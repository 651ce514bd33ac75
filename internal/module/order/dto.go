package order

import (
	"time"

	"github.com/cribnosh/server/internal/utils/pagination"
	"github.com/google/uuid"
)

// --- Lifecycle requests ---

// ConfirmRequest is the payload for confirming a pending order.
type ConfirmRequest struct {
	EstimatedPrepTimeMinutes *int   `json:"estimated_prep_time_minutes" binding:"omitempty,min=1,max=720"`
	Notes                    string `json:"notes" binding:"omitempty,max=2000"`
}

// PrepareRequest is the payload for starting preparation.
type PrepareRequest struct {
	PrepNotes       string `json:"prep_notes" binding:"omitempty,max=2000"`
	UpdatedPrepTime *int   `json:"updated_prep_time" binding:"omitempty,min=1,max=720"`
}

// ReadyRequest is the payload for marking an order ready.
type ReadyRequest struct {
	ReadyNotes string `json:"ready_notes" binding:"omitempty,max=2000"`
}

// DeliverRequest is the payload for marking an order delivered.
type DeliverRequest struct {
	DeliveryNotes string `json:"delivery_notes" binding:"omitempty,max=2000"`
}

// CompleteRequest is the payload for completing a delivered order.
type CompleteRequest struct {
	CompletionNotes string `json:"completion_notes" binding:"omitempty,max=2000"`
}

// ReviewRequest is the payload for reviewing an order.
type ReviewRequest struct {
	ReviewNotes string `json:"review_notes" binding:"omitempty,max=4000"`
}

// CancelRequest is the payload for cancelling an order. RefundAmount,
// when set, requests a partial refund instead of the full amount paid.
type CancelRequest struct {
	Reason       string `json:"reason" binding:"omitempty,max=2000"`
	RefundAmount *int64 `json:"refund_amount" binding:"omitempty,min=1"`
}

// --- Operator override requests ---

// SetRefundableRequest toggles refund eligibility on an order.
type SetRefundableRequest struct {
	IsRefundable *bool  `json:"is_refundable" binding:"required"`
	Reason       string `json:"reason" binding:"omitempty,max=2000"`
}

// RefundWindowRequest moves the refund window of a delivered order.
type RefundWindowRequest struct {
	EligibleUntil time.Time `json:"eligible_until" binding:"required"`
	Reason        string    `json:"reason" binding:"omitempty,max=2000"`
}

// --- Responses ---

// TransitionResponse reports a committed transition.
type TransitionResponse struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  Status    `json:"status"`
}

// DeliverResponse reports a committed delivery.
type DeliverResponse struct {
	OrderID      uuid.UUID `json:"order_id"`
	Status       Status    `json:"status"`
	IsRefundable bool      `json:"is_refundable"`
}

// ReviewResponse reports a recorded review.
type ReviewResponse struct {
	OrderID    uuid.UUID `json:"order_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// RefundInfo describes a refund issued during cancellation.
type RefundInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// CancelResponse reports a committed cancellation.
type CancelResponse struct {
	OrderID uuid.UUID   `json:"order_id"`
	Status  Status      `json:"status"`
	Refund  *RefundInfo `json:"refund,omitempty"`
}

// --- Admin reporting ---

// ReportEntry is one order's refund posture in the admin report.
type ReportEntry struct {
	OrderID      uuid.UUID         `json:"order_id"`
	OrderNo      string            `json:"order_no"`
	CustomerID   uuid.UUID         `json:"customer_id"`
	Status       Status            `json:"status"`
	IsRefundable *bool             `json:"is_refundable,omitempty"`
	Eligibility  EligibilityResult `json:"eligibility"`
	DeliveredAt  *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time        `json:"cancelled_at,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// ReportSummary aggregates the report page.
type ReportSummary struct {
	Total       int64 `json:"total"`
	Eligible    int   `json:"eligible"`
	NotEligible int   `json:"not_eligible"`
	Overridable int   `json:"overridable"`
}

// ReportResponse is the admin refund-eligibility report.
type ReportResponse struct {
	Orders   []ReportEntry       `json:"orders"`
	Summary  ReportSummary       `json:"summary"`
	PageInfo pagination.PageInfo `json:"page_info"`
}
