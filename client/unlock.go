// Package client is a small Go consumer of the unlock endpoints: poll for
// the code of a freshly paid order, or verify a remembered code.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNoCode is returned when polling exhausts its attempts before the
// settlement webhook produced a code.
var ErrNoCode = errors.New("no access code issued for this order")

// Unlock queries the access-code read endpoints.
type Unlock struct {
	baseURL string
	http    *http.Client

	// Polling knobs; defaults cover the usual webhook delivery lag.
	PollInterval time.Duration
	PollAttempts int
}

func NewUnlock(baseURL string) *Unlock {
	return &Unlock{
		baseURL:      baseURL,
		http:         &http.Client{Timeout: 10 * time.Second},
		PollInterval: 3 * time.Second,
		PollAttempts: 10,
	}
}

// OrderCode is the code-by-order response.
type OrderCode struct {
	Code          string `json:"code"`
	TransactionID string `json:"transaction_id"`
}

// CodeForOrder asks once whether a code exists for the order. A 404 returns
// (nil, nil): not an error, the webhook just has not landed yet.
func (u *Unlock) CodeForOrder(ctx context.Context, orderID string) (*OrderCode, error) {
	endpoint := fmt.Sprintf("%s/api/transaction/%s/code", u.baseURL, url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("code lookup returned %d", resp.StatusCode)
	}

	var out OrderCode
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForCode polls CodeForOrder on a fixed interval until a code appears,
// the attempts run out (ErrNoCode), or ctx is done. This covers the race
// between checkout completion and the asynchronous settlement webhook.
func (u *Unlock) WaitForCode(ctx context.Context, orderID string) (*OrderCode, error) {
	for attempt := 0; attempt < u.PollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(u.PollInterval):
			}
		}
		code, err := u.CodeForOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if code != nil {
			return code, nil
		}
	}
	return nil, ErrNoCode
}

// VerifyResult is the verify-code response.
type VerifyResult struct {
	Valid  bool `json:"valid"`
	Record *struct {
		TransactionID string `json:"transaction_id"`
		OrderID       string `json:"order_id"`
		Code          string `json:"code"`
	} `json:"record"`
}

// VerifyCode checks a previously obtained code. Lookup is case- and
// whitespace-insensitive on the server side.
func (u *Unlock) VerifyCode(ctx context.Context, code string) (*VerifyResult, error) {
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		u.baseURL+"/api/grasp-guide/verify-code", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify returned %d", resp.StatusCode)
	}
	var out VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
