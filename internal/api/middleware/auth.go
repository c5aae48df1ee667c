package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/marketplace"
)

const BuyerContextKey = "buyer_id"

// OptionalAuth accepts requests without a token (guest checkout). A bearer token, when present,
// must be well formed and, if JWT_SECRET is set, carry a valid HS256 signature. The raw token is
// attached to the request context so marketplace calls are made on the buyer's behalf.
func OptionalAuth(cfg config.AuthConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}
		token := strings.TrimSpace(parts[1])

		if cfg.JWTSecret != "" {
			claims, err := ValidateToken(token, cfg.JWTSecret)
			if err != nil {
				logger.Warn("Rejected buyer token", zap.Error(err))
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				c.Abort()
				return
			}
			if buyer := buyerID(claims); buyer != "" {
				c.Set(BuyerContextKey, buyer)
			}
		}

		c.Request = c.Request.WithContext(marketplace.WithBearerToken(c.Request.Context(), token))
		c.Next()
	}
}

// ValidateToken verifies an HS256 marketplace session token and returns its claims
func ValidateToken(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}

func buyerID(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	switch v := claims["user_id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
