package order

import (
	"errors"
	"io"
	"net/http"

	apperrors "github.com/cribnosh/server/internal/shared/errors"
	"github.com/cribnosh/server/internal/shared/identity"
	"github.com/cribnosh/server/internal/utils/middleware"
	"github.com/cribnosh/server/internal/utils/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the order lifecycle.
type Handler struct {
	service *Service
}

// NewHandler creates a new order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers authenticated order routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/history", h.GetHistory)
		orders.GET("/:id/eligibility", h.GetEligibility)
		orders.POST("/:id/confirm", h.Confirm)
		orders.POST("/:id/prepare", h.Prepare)
		orders.POST("/:id/ready", h.Ready)
		orders.POST("/:id/deliver", h.Deliver)
		orders.POST("/:id/complete", h.Complete)
		orders.POST("/:id/review", h.Review)
		orders.POST("/:id/cancel", h.Cancel)
	}

	operator := r.Group("/orders", middleware.RequireOperator())
	{
		operator.POST("/:id/refundable", h.SetRefundable)
		operator.POST("/:id/refund-window", h.ExtendRefundWindow)
	}
}

// RegisterAdminRoutes registers the admin reporting surface.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/orders/refund-eligibility-status", h.RefundEligibilityReport)
}

// GetOrder returns a single order.
func (h *Handler) GetOrder(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetHistory returns the audit trail of an order.
func (h *Handler) GetHistory(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	history, err := h.service.History(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": history})
}

// GetEligibility evaluates the refund policy for an order.
func (h *Handler) GetEligibility(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	result, err := h.service.CheckEligibility(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Confirm confirms a pending order.
func (h *Handler) Confirm(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	var req ConfirmRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.Confirm(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Prepare starts preparation of a confirmed order.
func (h *Handler) Prepare(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	var req PrepareRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.Prepare(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ready marks a preparing order ready for delivery.
func (h *Handler) Ready(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	var req ReadyRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.Ready(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deliver marks a ready order delivered and opens the refund window.
func (h *Handler) Deliver(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	var req DeliverRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.Deliver(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete completes a delivered order.
func (h *Handler) Complete(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	var req CompleteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.Complete(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Review records the customer's review.
func (h *Handler) Review(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.Review(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel cancels an order, refunding the payment when it has settled.
func (h *Handler) Cancel(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetRefundable is the operator override on refund eligibility.
func (h *Handler) SetRefundable(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	var req SetRefundableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	order, err := h.service.SetRefundable(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id":      order.ID,
		"is_refundable": order.IsRefundable,
	})
}

// ExtendRefundWindow moves the refund window of a delivered order.
func (h *Handler) ExtendRefundWindow(c *gin.Context) {
	actor, orderID, ok := h.actorAndOrderID(c)
	if !ok {
		return
	}

	var req RefundWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	order, err := h.service.ExtendRefundWindow(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id":              order.ID,
		"is_refundable":         order.IsRefundable,
		"refund_eligible_until": order.RefundEligibleUntil,
	})
}

// RefundEligibilityReport serves the admin refund posture report.
func (h *Handler) RefundEligibilityReport(c *gin.Context) {
	var filter ReportFilter
	if s := c.Query("order_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(c, apperrors.ValidationError("invalid order_id"))
			return
		}
		filter.OrderID = &id
	}
	if s := c.Query("customer_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(c, apperrors.ValidationError("invalid customer_id"))
			return
		}
		filter.CustomerID = &id
	}
	if s := c.Query("status"); s != "" {
		status := Status(s)
		if !status.Valid() {
			respondError(c, apperrors.ValidationError("invalid status"))
			return
		}
		filter.Status = &status
	}

	p := pagination.New()
	if err := c.ShouldBindQuery(p); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	report, err := h.service.RefundEligibilityReport(c.Request.Context(), &filter, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// --- Helpers ---

// bindOptionalJSON binds the request body when one is present. All
// lifecycle payloads are optional, so an empty body is not an error.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) actorAndOrderID(c *gin.Context) (identity.Actor, uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, apperrors.Unauthorized(""))
		return identity.Actor{}, uuid.Nil, false
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ValidationError("invalid order ID"))
		return identity.Actor{}, uuid.Nil, false
	}
	return actor, orderID, true
}

// respondError maps service errors onto the error envelope.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	switch {
	case errors.Is(err, ErrOrderNotFound):
		appErr = apperrors.NotFound("order")
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrRoleNotPermitted):
		appErr = apperrors.Forbidden(err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrReviewNotAllowed):
		appErr = apperrors.InvalidState(err.Error())
	default:
		appErr = apperrors.Internal("internal error", err)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
