package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/api/middleware"
	"github.com/jafarshop/checkoutapi/internal/service"
)

// LoginRequiredResponse is returned with 401 when a guest places an order
type LoginRequiredResponse struct {
	Error          string `json:"error"`
	PendingOrderID string `json:"pending_order_id"`
	ResumeToken    string `json:"resume_token"`
	Redirect       string `json:"redirect"`
}

// HandlePreviewPayload handles POST /v1/checkout/sessions/:id/payload
func HandlePreviewPayload(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		payload, err := svc.PreviewPayload(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger, "build order payload")
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}

// HandlePlaceOrder handles POST /v1/checkout/sessions/:id/orders
func HandlePlaceOrder(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}

		key, requestHash := middleware.GetIdempotencyInfo(c)
		result, err := svc.PlaceOrder(c.Request.Context(), id, service.IdempotencyRequest{
			Key:         key,
			RequestHash: requestHash,
		})
		if err != nil {
			respondError(c, err, logger, "place order")
			return
		}

		if result.LoginRequired != nil {
			respondLoginRequired(c, result.LoginRequired)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// HandleResumePendingOrder handles POST /v1/pending-orders/:id/resume
func HandleResumePendingOrder(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "pending order")
		if !ok {
			return
		}
		var req service.ResumeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		result, err := svc.ResumePendingOrder(c.Request.Context(), id, req.ResumeToken)
		if err != nil {
			respondError(c, err, logger, "resume pending order")
			return
		}
		logger.Info("Resumed pending order",
			zap.String("pending_order_id", id.String()),
			zap.String("buyer_id", c.GetString(middleware.BuyerContextKey)),
		)
		c.JSON(http.StatusCreated, result)
	}
}

func respondLoginRequired(c *gin.Context, login *service.LoginRequired) {
	c.JSON(http.StatusUnauthorized, LoginRequiredResponse{
		Error:          "login required to place the order",
		PendingOrderID: login.PendingOrderID,
		ResumeToken:    login.ResumeToken,
		Redirect:       login.Redirect,
	})
}

