package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/repository"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyReplayedHeader is set on responses served from a stored result
const IdempotencyReplayedHeader = "Idempotent-Replayed"

// IdempotencyMiddleware replays the stored result of a repeated place-order call with the
// original 201 status. A key reused with a different request is a conflict.
func IdempotencyMiddleware(keys repository.IdempotencyKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		// Read request body
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
			c.Abort()
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		requestHash := RequestHash(c.Request.Method, c.Request.URL.Path, body)

		existingKey, err := keys.GetByKey(c.Request.Context(), idempotencyKey)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.Error(err))
			c.Next()
			return
		}

		if existingKey != nil {
			if existingKey.RequestHash != requestHash {
				c.JSON(http.StatusConflict, gin.H{
					"error": "idempotency key conflict: same key used with a different request",
				})
				c.Abort()
				return
			}

			logger.Info("Replaying idempotent response", zap.String("key", idempotencyKey))
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(http.StatusCreated, "application/json; charset=utf-8", existingKey.Response)
			c.Abort()
			return
		}

		// New key - stored once the order is placed
		c.Set("idempotency_key", idempotencyKey)
		c.Set("idempotency_request_hash", requestHash)

		c.Next()
	}
}

// RequestHash fingerprints a request by method, path and body
func RequestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// GetIdempotencyInfo retrieves idempotency information from context
func GetIdempotencyInfo(c *gin.Context) (key string, requestHash string) {
	keyVal, _ := c.Get("idempotency_key")
	hashVal, _ := c.Get("idempotency_request_hash")

	key, _ = keyVal.(string)
	requestHash, _ = hashVal.(string)

	return key, requestHash
}
