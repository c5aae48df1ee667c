package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/service"
)

// HandleApplyCoupon handles POST /v1/checkout/sessions/:id/coupons
func HandleApplyCoupon(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		var req service.ApplyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		view, err := svc.ApplyCoupon(c.Request.Context(), id, req.Code)
		if err != nil {
			respondError(c, err, logger, "apply coupon")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleRemoveCoupon handles DELETE /v1/checkout/sessions/:id/coupons/:code
func HandleRemoveCoupon(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		view, err := svc.RemoveCoupon(c.Request.Context(), id, c.Param("code"))
		if err != nil {
			respondError(c, err, logger, "remove coupon")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
