package payment

import (
	"errors"
	"net/http"

	"github.com/cribnosh/server/internal/module/order"
	apperrors "github.com/cribnosh/server/internal/shared/errors"
	"github.com/cribnosh/server/internal/shared/identity"
	"github.com/cribnosh/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
)

// Handler handles the admin payment surface.
type Handler struct {
	service *Service
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes registers operator-only payment routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/capture", h.Capture)
		payments.POST("/void", h.Void)
		payments.POST("/update-payment-method", h.UpdatePaymentMethod)
	}
}

// Capture settles a held payment, fully or partially.
func (h *Handler) Capture(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.Capture(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Void cancels a held payment entirely.
func (h *Handler) Void(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req VoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.Void(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePaymentMethod re-points an intent at a new payment method.
func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req UpdatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	resp, err := h.service.UpdatePaymentMethod(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) actor(c *gin.Context) (identity.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, apperrors.Unauthorized(""))
		return identity.Actor{}, false
	}
	return actor, true
}

// respondError maps service errors onto the error envelope.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		appErr = apperrors.NotFound("order")
	case errors.Is(err, ErrNotCapturable), errors.Is(err, ErrAlreadyRefunded):
		appErr = apperrors.InvalidState(err.Error())
	case errors.Is(err, ErrAmountExceedsHold), errors.Is(err, ErrMissingPaymentID):
		appErr = apperrors.ValidationError(err.Error())
	case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrStaleOrder):
		appErr = apperrors.InvalidState(err.Error())
	default:
		appErr = apperrors.Internal("internal error", err)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
