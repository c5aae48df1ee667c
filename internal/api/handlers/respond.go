package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// respondError maps service errors to HTTP responses
func respondError(c *gin.Context, err error, logger *zap.Logger, action string) {
	var (
		validation *errors.ErrValidation
		notFound   *errors.ErrNotFound
		unauth     *errors.ErrUnauthorized
		conflict   *errors.ErrConflict
		selection  *errors.ErrInvalidSelection
		upstream   *errors.ErrUpstream
	)

	switch {
	case stderrors.As(err, &validation):
		body := gin.H{"error": validation.Error()}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": strings.ReplaceAll(notFound.Resource, "_", " ") + " not found"})
	case stderrors.As(err, &unauth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauth.Error()})
	case stderrors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case stderrors.As(err, &selection):
		c.JSON(http.StatusBadRequest, gin.H{"error": selection.Error()})
	case stderrors.As(err, &upstream):
		logger.Warn("Marketplace rejected request",
			zap.String("action", action),
			zap.Int("status", upstream.StatusCode),
			zap.String("message", upstream.Message),
		)
		body := gin.H{"error": upstream.Error()}
		if len(upstream.Issues) > 0 {
			body["issues"] = upstream.Issues
		}
		c.JSON(upstreamStatus(upstream.StatusCode), body)
	default:
		logger.Error("Failed to "+action, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// upstreamStatus passes marketplace client errors through and reports anything else as a bad gateway
func upstreamStatus(code int) int {
	if code >= 400 && code < 500 {
		return code
	}
	return http.StatusBadGateway
}

// respondBindError renders request binding failures. Validator errors become a field map.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fieldErr := range verrs {
		fields[fieldPath(fieldErr)] = fieldMessage(fieldErr)
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
}

// fieldPath drops the request type from the namespace: items[0].quantity
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func parseID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return uuid.Nil, false
	}
	return id, true
}
