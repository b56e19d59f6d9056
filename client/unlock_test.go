package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func unlockServer(readyAfter int32) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/transaction/BELAJAR-1-ABCDEF/code":
			if atomic.AddInt32(&calls, 1) <= readyAfter {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"message": "no code for this order yet"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"code":           "BELAJAR-1-ABCDEF",
				"transaction_id": "trx-1",
			})
		case "/api/grasp-guide/verify-code":
			json.NewEncoder(w).Encode(map[string]any{
				"valid": true,
				"record": map[string]string{
					"transaction_id": "trx-1",
					"order_id":       "BELAJAR-1-ABCDEF",
					"code":           "BELAJAR-1-ABCDEF",
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv, &calls
}

func TestWaitForCode_SucceedsAfterWebhookLands(t *testing.T) {
	srv, calls := unlockServer(2) // two 404s, then the code
	defer srv.Close()

	u := NewUnlock(srv.URL)
	u.PollInterval = 10 * time.Millisecond
	u.PollAttempts = 5

	code, err := u.WaitForCode(context.Background(), "BELAJAR-1-ABCDEF")
	if err != nil {
		t.Fatalf("WaitForCode: %v", err)
	}
	if code.Code != "BELAJAR-1-ABCDEF" || code.TransactionID != "trx-1" {
		t.Fatalf("unexpected code: %+v", code)
	}
	if got := atomic.LoadInt32(calls); got != 3 {
		t.Fatalf("expected 3 polls, got %d", got)
	}
}

func TestWaitForCode_BoundedAttempts(t *testing.T) {
	srv, calls := unlockServer(1000) // never ready
	defer srv.Close()

	u := NewUnlock(srv.URL)
	u.PollInterval = 5 * time.Millisecond
	u.PollAttempts = 4

	_, err := u.WaitForCode(context.Background(), "BELAJAR-1-ABCDEF")
	if !errors.Is(err, ErrNoCode) {
		t.Fatalf("expected ErrNoCode after exhausting attempts, got %v", err)
	}
	if got := atomic.LoadInt32(calls); got != 4 {
		t.Fatalf("expected exactly 4 polls, got %d", got)
	}
}

func TestWaitForCode_ContextCancel(t *testing.T) {
	srv, _ := unlockServer(1000)
	defer srv.Close()

	u := NewUnlock(srv.URL)
	u.PollInterval = time.Hour
	u.PollAttempts = 10

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := u.WaitForCode(ctx, "BELAJAR-1-ABCDEF")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
}

func TestVerifyCode_Client(t *testing.T) {
	srv, _ := unlockServer(0)
	defer srv.Close()

	res, err := NewUnlock(srv.URL).VerifyCode(context.Background(), "belajar-1-abcdef")
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if !res.Valid || res.Record == nil || res.Record.OrderID != "BELAJAR-1-ABCDEF" {
		t.Fatalf("unexpected result: %+v", res)
	}
}
