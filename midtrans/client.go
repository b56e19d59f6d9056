package midtrans

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"nala-backend/config"
)

const (
	sandboxBaseURL    = "https://app.sandbox.midtrans.com"
	productionBaseURL = "https://app.midtrans.com"

	defaultTimeout = 10 * time.Second
)

// Sentinel errors so the HTTP layer can map failures to the error codes the
// storefront branches on.
var (
	ErrNotConfigured = errors.New("midtrans server key not configured")
	ErrAuthFailed    = errors.New("midtrans rejected the server key")
)

// Client talks to the Midtrans Snap API.
type Client struct {
	serverKey string
	baseURL   string
	http      *http.Client
}

func NewClient(cfg config.MidtransConfig) *Client {
	base := sandboxBaseURL
	if cfg.IsProduction {
		base = productionBaseURL
	}
	return &Client{
		serverKey: cfg.ServerKey,
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
	}
}

// WithBaseURL overrides the API host. Used by tests to point the client at a
// local stub.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// CreateTransaction creates a hosted checkout session and returns the Snap
// token plus the redirect URL the buyer is sent to.
func (c *Client) CreateTransaction(ctx context.Context, req *SnapRequest) (*SnapResponse, error) {
	if c.serverKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode snap request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	// Snap uses basic auth with the server key as username, empty password.
	auth := base64.StdEncoding.EncodeToString([]byte(c.serverKey + ":"))
	httpReq.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("snap request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthFailed
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("snap returned %d: %s", resp.StatusCode, string(raw))
	}

	var out SnapResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode snap response: %w", err)
	}
	return &out, nil
}
