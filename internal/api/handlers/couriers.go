package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/service"
)

// HandleResolveCouriers handles POST /v1/checkout/sessions/:id/couriers.
// A failed lookup still answers 200 with the session in forced advanced mode.
func HandleResolveCouriers(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		view, err := svc.ResolveCouriers(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger, "resolve couriers")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleSelectUnifiedPartner handles PUT /v1/checkout/sessions/:id/couriers/unified
func HandleSelectUnifiedPartner(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		var req service.SelectPartnerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		view, err := svc.SelectUnifiedPartner(c.Request.Context(), id, req.PartnerID)
		if err != nil {
			respondError(c, err, logger, "select courier")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleSelectGroupPartner handles PUT /v1/checkout/sessions/:id/couriers/groups/:group_key
func HandleSelectGroupPartner(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		var req service.SelectPartnerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		view, err := svc.SelectGroupPartner(c.Request.Context(), id, c.Param("group_key"), req.PartnerID)
		if err != nil {
			respondError(c, err, logger, "select group courier")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleSetCourierMode handles PUT /v1/checkout/sessions/:id/couriers/mode
func HandleSetCourierMode(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		var req service.SetModeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		view, err := svc.SetAdvancedMode(c.Request.Context(), id, req.Advanced)
		if err != nil {
			respondError(c, err, logger, "set courier mode")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
