package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/internal/marketplace"
	"github.com/jafarshop/checkoutapi/internal/repository/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestOptionalAuth(t *testing.T) {
	const secret = "test-secret"
	valid := signToken(t, secret, jwt.MapClaims{"sub": "buyer-7", "exp": time.Now().Add(time.Hour).Unix()})
	expired := signToken(t, secret, jwt.MapClaims{"sub": "buyer-7", "exp": time.Now().Add(-time.Hour).Unix()})
	numeric := signToken(t, secret, jwt.MapClaims{"user_id": float64(42)})
	foreign := signToken(t, "other-secret", jwt.MapClaims{"sub": "buyer-7"})

	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
		wantToken  string
		wantBuyer  string
	}{
		{name: "guest", secret: secret, wantStatus: http.StatusOK},
		{name: "valid token", secret: secret, header: "Bearer " + valid, wantStatus: http.StatusOK, wantToken: valid, wantBuyer: "buyer-7"},
		{name: "numeric user id", secret: secret, header: "Bearer " + numeric, wantStatus: http.StatusOK, wantToken: numeric, wantBuyer: "42"},
		{name: "expired token", secret: secret, header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "wrong signature", secret: secret, header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
		{name: "malformed header", secret: secret, header: "Token " + valid, wantStatus: http.StatusUnauthorized},
		{name: "no secret forwards as is", header: "Bearer opaque", wantStatus: http.StatusOK, wantToken: "opaque"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken, gotBuyer string
			router := gin.New()
			router.Use(OptionalAuth(config.AuthConfig{JWTSecret: tt.secret}, zap.NewNop()))
			router.GET("/", func(c *gin.Context) {
				gotToken = marketplace.BearerToken(c.Request.Context())
				gotBuyer = c.GetString(BuyerContextKey)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if gotToken != tt.wantToken {
				t.Errorf("forwarded token = %q, want %q", gotToken, tt.wantToken)
			}
			if gotBuyer != tt.wantBuyer {
				t.Errorf("buyer = %q, want %q", gotBuyer, tt.wantBuyer)
			}
		})
	}
}

func TestValidateTokenRejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ValidateToken(raw, "secret"); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
}

func TestIdempotencyMiddleware(t *testing.T) {
	keys := memory.NewIdempotencyKeyRepository()
	body := `{"note":"x"}`
	path := "/v1/checkout/sessions/abc/orders"
	if err := keys.Create(context.Background(), &domain.IdempotencyKey{
		Key:         "replay",
		RequestHash: RequestHash(http.MethodPost, path, []byte(body)),
		Response:    []byte(`{"order":{"order_id":7}}`),
	}); err != nil {
		t.Fatalf("seed key: %v", err)
	}

	tests := []struct {
		name        string
		key         string
		body        string
		wantStatus  int
		wantHandler bool
		wantBody    string
		wantKey     string
	}{
		{name: "no key", body: body, wantStatus: http.StatusCreated, wantHandler: true},
		{name: "new key", key: "fresh", body: body, wantStatus: http.StatusCreated, wantHandler: true, wantKey: "fresh"},
		{name: "replay keeps created status", key: "replay", body: body, wantStatus: http.StatusCreated, wantBody: `{"order":{"order_id":7}}`},
		{name: "different body", key: "replay", body: `{"note":"y"}`, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var gotKey, gotHash, gotBody string
			router := gin.New()
			router.Use(IdempotencyMiddleware(keys, zap.NewNop()))
			router.POST(path, func(c *gin.Context) {
				called = true
				gotKey, gotHash = GetIdempotencyInfo(c)
				raw, _ := c.GetRawData()
				gotBody = string(raw)
				c.Status(http.StatusCreated)
			})

			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(tt.body))
			if tt.key != "" {
				req.Header.Set(IdempotencyKeyHeader, tt.key)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if called != tt.wantHandler {
				t.Fatalf("handler called = %v, want %v", called, tt.wantHandler)
			}
			if tt.wantBody != "" {
				if w.Body.String() != tt.wantBody {
					t.Errorf("body = %s, want %s", w.Body.String(), tt.wantBody)
				}
				if w.Header().Get(IdempotencyReplayedHeader) != "true" {
					t.Error("replayed header missing")
				}
			}
			if called {
				if gotBody != tt.body {
					t.Errorf("handler body = %q, want %q", gotBody, tt.body)
				}
				if gotKey != tt.wantKey {
					t.Errorf("key = %q, want %q", gotKey, tt.wantKey)
				}
				if tt.wantKey != "" && gotHash != RequestHash(http.MethodPost, path, []byte(tt.body)) {
					t.Error("request hash not passed to handler")
				}
			}
		})
	}
}
