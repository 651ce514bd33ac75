package order

import "errors"

// Module errors.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrStaleOrder        = errors.New("order changed since read")
	ErrNotOwner          = errors.New("actor does not own this order")
	ErrRoleNotPermitted  = errors.New("role not permitted for this operation")
	ErrReviewNotAllowed  = errors.New("order cannot be reviewed in its current status")
)
