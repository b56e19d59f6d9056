package midtrans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nala-backend/config"
)

func snapRequest() *SnapRequest {
	return &SnapRequest{
		TransactionDetails: TransactionDetails{OrderID: "SKET-1-abc", GrossAmount: 95000},
		CustomerDetails:    &CustomerDetails{FirstName: "Sari", Email: "sari@example.com"},
	}
}

func TestCreateTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/snap/v1/transactions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, _, ok := r.BasicAuth()
		if !ok || user != "SB-server-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req SnapRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.TransactionDetails.OrderID != "SKET-1-abc" {
			t.Errorf("order id %q", req.TransactionDetails.OrderID)
		}
		json.NewEncoder(w).Encode(SnapResponse{
			Token:       "tok-42",
			RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/tok-42",
		})
	}))
	defer srv.Close()

	c := NewClient(config.MidtransConfig{ServerKey: "SB-server-key"}).WithBaseURL(srv.URL)
	resp, err := c.CreateTransaction(context.Background(), snapRequest())
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if resp.Token != "tok-42" || resp.RedirectURL == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateTransaction_NotConfigured(t *testing.T) {
	c := NewClient(config.MidtransConfig{})
	_, err := c.CreateTransaction(context.Background(), snapRequest())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured before any network call, got %v", err)
	}
}

func TestCreateTransaction_AuthFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(config.MidtransConfig{ServerKey: "bad-key"}).WithBaseURL(srv.URL)
	_, err := c.CreateTransaction(context.Background(), snapRequest())
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}
