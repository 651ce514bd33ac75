package order

import (
	"fmt"
	"time"

	"github.com/cribnosh/server/internal/utils/random"
	"github.com/google/uuid"
)

// Order represents a single customer purchase moving through
// preparation and delivery.
type Order struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo string    `json:"order_no" gorm:"uniqueIndex;not null"`

	// Parties
	CustomerID uuid.UUID  `json:"customer_id" gorm:"type:uuid;not null;index"`
	ChefID     uuid.UUID  `json:"chef_id" gorm:"type:uuid;not null;index"`
	DriverID   *uuid.UUID `json:"driver_id,omitempty" gorm:"type:uuid"`

	// Lifecycle
	Status Status `json:"status" gorm:"column:order_status;not null;default:pending;index"`

	// Payment
	PaymentStatus       PaymentStatus `json:"payment_status" gorm:"not null;default:pending"`
	PaymentID           string        `json:"-"`
	RefundID            *string       `json:"refund_id,omitempty"`
	AmountPaid          int64         `json:"amount_paid"` // In smallest currency unit
	TotalAmount         int64         `json:"total_amount"`
	Currency            string        `json:"currency" gorm:"default:gbp"`
	IsRefundable        *bool         `json:"is_refundable,omitempty"`
	RefundEligibleUntil *time.Time    `json:"refund_eligible_until,omitempty"`

	// Operational metadata
	EstimatedPrepTimeMinutes int    `json:"estimated_prep_time_minutes,omitempty"`
	ChefNotes                string `json:"chef_notes,omitempty"`
	PrepNotes                string `json:"prep_notes,omitempty"`
	ReadyNotes               string `json:"ready_notes,omitempty"`
	DeliveryNotes            string `json:"delivery_notes,omitempty"`
	CompletionNotes          string `json:"completion_notes,omitempty"`
	ReviewNotes              string `json:"review_notes,omitempty"`
	CancellationReason       string `json:"cancellation_reason,omitempty"`

	// Transition timestamps, each set at most once
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	PreparingAt *time.Time `json:"preparing_at,omitempty"`
	ReadyAt     *time.Time `json:"ready_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// Version is the optimistic concurrency token. Every committed
	// write increments it; conditional writes compare it.
	Version int64 `json:"-" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsPaid reports whether the order's payment has settled.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// IsTerminal reports whether the order permits no further transition.
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// RefundsRevoked reports whether refund eligibility was explicitly
// switched off. The flag is tri-state: orders that never had it set
// are not revoked.
func (o *Order) RefundsRevoked() bool {
	return o.IsRefundable != nil && !*o.IsRefundable
}

func refundableFlag(v bool) *bool {
	return &v
}

// Event records a single lifecycle action for audit. Cancelled and
// completed orders are retained, and so is their history.
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	Action      string    `json:"action" gorm:"not null"`
	PerformedBy uuid.UUID `json:"performed_by" gorm:"type:uuid;not null"`
	Role        string    `json:"role" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at" gorm:"not null"`
}

// TableName returns the database table name.
func (Event) TableName() string {
	return "order_events"
}

// GenerateOrderNo generates a human-readable order reference.
// Format: ORD-YYYYMMDD-XXXXX
func GenerateOrderNo() string {
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), random.UpperAlphaNum(5))
}
