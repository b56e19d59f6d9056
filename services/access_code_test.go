package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"nala-backend/models"
	"nala-backend/notify"
)

// fakeStore mimics the Postgres semantics the engine depends on: upsert
// keyed by transaction_id, unique code column, normalized code lookup.
type fakeStore struct {
	mu      sync.Mutex
	recs    []*models.AccessCode
	upserts int
	nextErr error
}

func (f *fakeStore) UpsertByTransaction(_ context.Context, rec *models.AccessCode) (*models.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.nextErr != nil {
		err := f.nextErr
		f.nextErr = nil
		return nil, err
	}
	for _, r := range f.recs {
		if r.Code == rec.Code && r.TransactionID != rec.TransactionID {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	for _, r := range f.recs {
		if r.TransactionID == rec.TransactionID {
			r.Code = rec.Code
			r.OrderID = rec.OrderID
			r.UpdatedAt = time.Now()
			cp := *r
			return &cp, nil
		}
	}
	cp := *rec
	cp.ID = uint(len(f.recs) + 1)
	cp.CreatedAt = time.Now()
	f.recs = append(f.recs, &cp)
	out := cp
	return &out, nil
}

func (f *fakeStore) FindByCode(_ context.Context, code string) (*models.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := strings.ToUpper(strings.TrimSpace(code))
	for _, r := range f.recs {
		if strings.ToUpper(strings.TrimSpace(r.Code)) == want {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByOrderID(_ context.Context, orderID string) (*models.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.OrderID == orderID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByTransactionID(_ context.Context, transactionID string) (*models.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.TransactionID == transactionID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]models.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AccessCode, 0, len(f.recs))
	for _, r := range f.recs {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recs)
}

// recordingNotifier signals on a channel and optionally fails every call.
type recordingNotifier struct {
	called chan notify.AccessIssued
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event notify.AccessIssued) error {
	select {
	case n.called <- event:
	default:
	}
	return n.err
}

func newService(store CodeStore, notifiers ...notify.Notifier) *AccessCodeService {
	return NewAccessCodeService(store, NewCodeGenerator(), notifiers)
}

func TestEnsureAccessCode_IdempotentByTransactionID(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)
	ctx := context.Background()

	issue := Issue{OrderID: "SKET-1700000000000-abc123def", TransactionID: "trx-1", Source: SourceWebhook}

	rec1, created, err := svc.EnsureAccessCode(ctx, issue)
	if err != nil {
		t.Fatalf("first EnsureAccessCode: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true on first delivery")
	}

	rec2, created, err := svc.EnsureAccessCode(ctx, issue)
	if err != nil {
		t.Fatalf("second EnsureAccessCode: %v", err)
	}
	if created {
		t.Fatalf("expected created=false on redelivery")
	}
	if rec2.Code != rec1.Code {
		t.Fatalf("redelivery returned a different code: %s vs %s", rec2.Code, rec1.Code)
	}
	if store.count() != 1 {
		t.Fatalf("expected exactly 1 record, got %d", store.count())
	}
}

func TestEnsureAccessCode_IdempotentByOrderID(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)
	ctx := context.Background()

	orderID := "SKET-1700000000000-abc123def"
	if _, _, err := svc.EnsureAccessCode(ctx, Issue{OrderID: orderID, TransactionID: "trx-1"}); err != nil {
		t.Fatalf("first EnsureAccessCode: %v", err)
	}

	// Redelivery of the same logical payment under a fresh transaction id.
	_, created, err := svc.EnsureAccessCode(ctx, Issue{OrderID: orderID, TransactionID: "trx-2"})
	if err != nil {
		t.Fatalf("second EnsureAccessCode: %v", err)
	}
	if created {
		t.Fatalf("expected order-id match to short-circuit issuance")
	}
	if store.count() != 1 {
		t.Fatalf("expected exactly 1 record, got %d", store.count())
	}

	// And with no transaction id at all.
	_, created, err = svc.EnsureAccessCode(ctx, Issue{OrderID: orderID})
	if err != nil {
		t.Fatalf("third EnsureAccessCode: %v", err)
	}
	if created || store.count() != 1 {
		t.Fatalf("expected no new record, got created=%v count=%d", created, store.count())
	}
}

func TestEnsureAccessCode_ClassOrderReusesOrderID(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)

	orderID := "BELAJAR-1700000000000-AB12CD"
	rec, _, err := svc.EnsureAccessCode(context.Background(), Issue{OrderID: orderID, TransactionID: "trx-9"})
	if err != nil {
		t.Fatalf("EnsureAccessCode: %v", err)
	}
	if rec.Code != orderID {
		t.Fatalf("class code should be the order id, got %s", rec.Code)
	}
}

func TestEnsureAccessCode_DefaultFamilyMintsGGCode(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)

	rec, _, err := svc.EnsureAccessCode(context.Background(),
		Issue{OrderID: "SKET-1700000000000-xyz987abc", TransactionID: "trx-3"})
	if err != nil {
		t.Fatalf("EnsureAccessCode: %v", err)
	}
	if !strings.HasPrefix(rec.Code, "GG-") || len(rec.Code) != len("GG-")+6 {
		t.Fatalf("unexpected code shape: %q", rec.Code)
	}
}

func TestEnsureAccessCode_ManualDefaultsTransactionID(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)

	rec, _, err := svc.EnsureAccessCode(context.Background(),
		Issue{OrderID: "SKET-1700000000000-manualfix", Source: SourceManualFix})
	if err != nil {
		t.Fatalf("EnsureAccessCode: %v", err)
	}
	if !strings.HasPrefix(rec.TransactionID, "manual-") {
		t.Fatalf("expected generated manual transaction id, got %q", rec.TransactionID)
	}
	if rec.Source != SourceManualFix {
		t.Fatalf("expected source manual-fix, got %q", rec.Source)
	}
}

func TestEnsureAccessCode_StoreErrorPropagates(t *testing.T) {
	store := &fakeStore{nextErr: errors.New("connection refused")}
	svc := newService(store)

	_, _, err := svc.EnsureAccessCode(context.Background(),
		Issue{OrderID: "SKET-1700000000000-failing00", TransactionID: "trx-4"})
	if err == nil {
		t.Fatalf("expected persistence error to propagate")
	}
}

func TestEnsureAccessCode_RetriesOnCodeCollision(t *testing.T) {
	store := &fakeStore{nextErr: gorm.ErrDuplicatedKey}
	svc := newService(store)

	rec, created, err := svc.EnsureAccessCode(context.Background(),
		Issue{OrderID: "SKET-1700000000000-colliding", TransactionID: "trx-5"})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if !created || rec == nil {
		t.Fatalf("expected record after retry")
	}
	if store.upserts < 2 {
		t.Fatalf("expected at least 2 upsert attempts, got %d", store.upserts)
	}
}

func TestEnsureAccessCode_SideChannelFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{}
	failing := &recordingNotifier{called: make(chan notify.AccessIssued, 1), err: errors.New("telegram down")}
	svc := newService(store, failing)

	rec, created, err := svc.EnsureAccessCode(context.Background(),
		Issue{OrderID: "BELAJAR-1700000000000-ZZ99XX", TransactionID: "trx-6", Source: SourceWebhook})
	if err != nil {
		t.Fatalf("notifier failure must not reach the caller: %v", err)
	}
	if !created || store.count() != 1 {
		t.Fatalf("record must persist regardless of notifier failure")
	}

	select {
	case event := <-failing.called:
		if event.Code != rec.Code {
			t.Fatalf("notifier saw code %q, want %q", event.Code, rec.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("notifier was never invoked")
	}
}

func TestEnsureAccessCode_ManualPathDoesNotNotify(t *testing.T) {
	store := &fakeStore{}
	n := &recordingNotifier{called: make(chan notify.AccessIssued, 1)}
	svc := newService(store, n)

	_, _, err := svc.EnsureAccessCode(context.Background(),
		Issue{OrderID: "SKET-1700000000000-quietfix0", TransactionID: "trx-7", Source: SourceManual})
	if err != nil {
		t.Fatalf("EnsureAccessCode: %v", err)
	}

	select {
	case <-n.called:
		t.Fatalf("manual issuance should not fire side-channel notifications")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestVerifyCode_NormalizesLookup(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store)
	ctx := context.Background()

	rec, _, err := svc.EnsureAccessCode(ctx, Issue{
		OrderID:       "SKET-1700000000000-lookupme0",
		TransactionID: "trx-8",
		Code:          "gg-abc123",
		Source:        SourceManual,
	})
	if err != nil {
		t.Fatalf("EnsureAccessCode: %v", err)
	}

	found, err := svc.VerifyCode(ctx, "  GG-ABC123  ")
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if found == nil || found.TransactionID != rec.TransactionID {
		t.Fatalf("case/whitespace-insensitive lookup failed: %+v", found)
	}

	missing, err := svc.VerifyCode(ctx, "GG-NOPE99")
	if err != nil {
		t.Fatalf("VerifyCode miss: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown code should resolve to nil, got %+v", missing)
	}
}
