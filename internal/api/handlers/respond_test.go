package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/pkg/errors"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "validation", err: &errors.ErrValidation{Fields: map[string]string{"phone": "Phone is required"}}, wantStatus: http.StatusUnprocessableEntity, wantError: "phone: Phone is required"},
		{name: "not found", err: &errors.ErrNotFound{Resource: "checkout_session", ID: "x"}, wantStatus: http.StatusNotFound, wantError: "checkout session not found"},
		{name: "unauthorized", err: &errors.ErrUnauthorized{Message: "invalid resume token"}, wantStatus: http.StatusUnauthorized, wantError: "invalid resume token"},
		{name: "conflict", err: &errors.ErrConflict{Message: "this order is already being placed"}, wantStatus: http.StatusConflict, wantError: "this order is already being placed"},
		{name: "selection", err: &errors.ErrInvalidSelection{Message: "partner does not cover every group"}, wantStatus: http.StatusBadRequest, wantError: "partner does not cover every group"},
		{name: "upstream client error", err: &errors.ErrUpstream{StatusCode: 422, Message: "Coupon expired"}, wantStatus: http.StatusUnprocessableEntity, wantError: "Coupon expired"},
		{name: "upstream server error", err: &errors.ErrUpstream{StatusCode: 500}, wantStatus: http.StatusBadGateway, wantError: "marketplace returned 500"},
		{name: "wrapped", err: fmt.Errorf("load: %w", &errors.ErrNotFound{Resource: "pending_order"}), wantStatus: http.StatusNotFound, wantError: "pending order not found"},
		{name: "unknown", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantError: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err, zap.NewNop(), "test")

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}
