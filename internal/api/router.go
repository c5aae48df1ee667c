package api

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/api/handlers"
	"github.com/jafarshop/checkoutapi/internal/api/middleware"
	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/metrics"
	"github.com/jafarshop/checkoutapi/internal/repository"
	"github.com/jafarshop/checkoutapi/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svc *service.CheckoutService, locations checkout.LocationFetcher, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	useJSONFieldNames()

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))
	router.Use(metricsMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Checkout API",
			"endpoints": []string{
				"GET /health",
				"GET /v1/locations/:level",
				"POST /v1/checkout/sessions",
				"GET /v1/checkout/sessions/:id",
				"POST /v1/checkout/sessions/:id/orders",
				"POST /v1/pending-orders/:id/resume",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if cfg.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/v1")
	v1.Use(middleware.OptionalAuth(cfg.Auth, logger))
	{
		v1.GET("/locations/:level", handlers.HandleListLocations(locations, logger))

		sessions := v1.Group("/checkout/sessions")
		{
			sessions.POST("", handlers.HandleCreateSession(svc, logger))
			sessions.GET("/:id", handlers.HandleGetSession(svc, logger))
			sessions.PUT("/:id/cart", handlers.HandleUpdateCart(svc, logger))
			sessions.PUT("/:id/form", handlers.HandleUpdateForm(svc, logger))
			sessions.PUT("/:id/locations/:level", handlers.HandleSelectLocation(svc, logger))

			sessions.POST("/:id/couriers", handlers.HandleResolveCouriers(svc, logger))
			sessions.PUT("/:id/couriers/unified", handlers.HandleSelectUnifiedPartner(svc, logger))
			sessions.PUT("/:id/couriers/groups/:group_key", handlers.HandleSelectGroupPartner(svc, logger))
			sessions.PUT("/:id/couriers/mode", handlers.HandleSetCourierMode(svc, logger))

			sessions.POST("/:id/payment-methods", handlers.HandleLoadPaymentMethods(svc, logger))
			sessions.POST("/:id/coupons", handlers.HandleApplyCoupon(svc, logger))
			sessions.DELETE("/:id/coupons/:code", handlers.HandleRemoveCoupon(svc, logger))

			sessions.POST("/:id/payload", handlers.HandlePreviewPayload(svc, logger))
			sessions.POST("/:id/orders",
				middleware.IdempotencyMiddleware(repos.IdempotencyKey, logger),
				handlers.HandlePlaceOrder(svc, logger),
			)
		}

		v1.POST("/pending-orders/:id/resume", handlers.HandleResumePendingOrder(svc, logger))
	}

	return router
}

// useJSONFieldNames makes validation errors report json field names
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}

// metricsMiddleware counts requests by route template so session ids do not explode the label set
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
