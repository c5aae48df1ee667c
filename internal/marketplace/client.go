package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/pkg/errors"
)

type tokenKey struct{}

// WithBearerToken attaches the buyer's session token; calls made with the context forward it
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// BearerToken returns the token attached by WithBearerToken
func BearerToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client calls the marketplace REST API (shipping provider proxy, coupons, payments, orders)
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a marketplace HTTP client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// errorBody is the marketplace error shape: {"message": "...", "details": {...}}
type errorBody struct {
	Message string                  `json:"message"`
	Error   string                  `json:"error"`
	Issues  []errors.InventoryIssue `json:"issues"`
	Details struct {
		Issues []errors.InventoryIssue `json:"issues"`
	} `json:"details"`
}

// do sends a JSON request and decodes a 2xx answer into out. Non-2xx answers become *errors.ErrUpstream.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("marketplace client not configured: base URL required")
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := BearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	observeUpstream(path, resp, start)
	if err != nil {
		c.logger.Warn("Marketplace request failed", zap.Error(err), zap.String("method", method), zap.String("path", path))
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream := &errors.ErrUpstream{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			upstream.Message = eb.Message
			if upstream.Message == "" {
				upstream.Message = eb.Error
			}
			upstream.Issues = eb.Details.Issues
			if len(upstream.Issues) == 0 {
				upstream.Issues = eb.Issues
			}
		}
		c.logger.Warn("Marketplace returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", upstream.Message),
		)
		return upstream
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
