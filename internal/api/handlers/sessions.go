package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/internal/service"
)

// HandleCreateSession handles POST /v1/checkout/sessions
func HandleCreateSession(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		view, err := svc.CreateSession(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, logger, "create checkout session")
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

// HandleGetSession handles GET /v1/checkout/sessions/:id
func HandleGetSession(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		view, err := svc.GetSession(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger, "get checkout session")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleUpdateCart handles PUT /v1/checkout/sessions/:id/cart
func HandleUpdateCart(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		var req service.UpdateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		view, err := svc.UpdateCart(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, err, logger, "update cart")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleUpdateForm handles PUT /v1/checkout/sessions/:id/form
func HandleUpdateForm(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		var req service.UpdateFormRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		view, err := svc.UpdateForm(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, err, logger, "update checkout form")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleSelectLocation handles PUT /v1/checkout/sessions/:id/locations/:level
func HandleSelectLocation(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		level := domain.LocationLevel(c.Param("level"))
		if !level.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "level must be one of: country, region, city, district"})
			return
		}
		var req service.SelectLocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		view, err := svc.SelectLocation(c.Request.Context(), id, level, req.ID)
		if err != nil {
			respondError(c, err, logger, "select location")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleLoadPaymentMethods handles POST /v1/checkout/sessions/:id/payment-methods
func HandleLoadPaymentMethods(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "session")
		if !ok {
			return
		}
		view, err := svc.LoadPaymentMethods(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger, "load payment methods")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
