package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nala-backend/models"
	"nala-backend/notify"
)

// CodeStore is the persistence surface the issuance engine needs. Satisfied
// by stores.AccessCodeStore; tests plug in an in-memory fake.
type CodeStore interface {
	UpsertByTransaction(ctx context.Context, rec *models.AccessCode) (*models.AccessCode, error)
	FindByCode(ctx context.Context, code string) (*models.AccessCode, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.AccessCode, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.AccessCode, error)
	ListAll(ctx context.Context) ([]models.AccessCode, error)
}

// Issue is a request to guarantee an access code for a settled payment.
type Issue struct {
	OrderID       string
	TransactionID string
	Customer      models.Customer
	Source        string // webhook | manual | manual-fix
	GrossAmount   string
	CustomFields  [3]string

	// Code, when set, is stored verbatim instead of minting one. Used by the
	// admin path to register codes issued out of band.
	Code string
}

// Source tags recorded on issued codes.
const (
	SourceWebhook   = "webhook"
	SourceManual    = "manual"
	SourceManualFix = "manual-fix"
)

// mintAttempts bounds retries when a randomly minted code collides with an
// existing one.
const mintAttempts = 3

// AccessCodeService is the idempotent issuance engine plus the read paths
// the unlock flow uses.
type AccessCodeService struct {
	store     CodeStore
	codes     *CodeGenerator
	notifiers []notify.Notifier
}

func NewAccessCodeService(store CodeStore, codes *CodeGenerator, notifiers []notify.Notifier) *AccessCodeService {
	return &AccessCodeService{store: store, codes: codes, notifiers: notifiers}
}

// EnsureAccessCode guarantees exactly one code exists for the payment.
// Re-delivered notifications hit the order-id or transaction-id lookup and
// return the existing record without minting or re-notifying. Store errors
// propagate so the webhook layer can answer 500 and Midtrans redelivers.
func (s *AccessCodeService) EnsureAccessCode(ctx context.Context, issue Issue) (*models.AccessCode, bool, error) {
	if issue.OrderID != "" {
		rec, err := s.store.FindByOrderID(ctx, issue.OrderID)
		if err != nil {
			return nil, false, err
		}
		if rec != nil {
			log.Printf("[issuance] code already exists for order %s (code %s)", issue.OrderID, rec.Code)
			return rec, false, nil
		}
	}
	if issue.TransactionID != "" {
		rec, err := s.store.FindByTransactionID(ctx, issue.TransactionID)
		if err != nil {
			return nil, false, err
		}
		if rec != nil {
			log.Printf("[issuance] code already exists for transaction %s (code %s)", issue.TransactionID, rec.Code)
			return rec, false, nil
		}
	}

	// Manual fixes may not know the gateway's transaction id yet; the
	// upsert key still has to be unique.
	if issue.TransactionID == "" {
		issue.TransactionID = "manual-" + uuid.NewString()
	}
	if issue.Source == "" {
		issue.Source = SourceWebhook
	}

	rec, err := s.persistWithFreshCode(ctx, issue)
	if err != nil {
		return nil, false, err
	}
	log.Printf("[issuance] issued code %s for order %s (source %s)", rec.Code, rec.OrderID, rec.Source)

	if issue.Source == SourceWebhook {
		notify.Dispatch(s.notifiers, notify.AccessIssued{
			OrderID:       rec.OrderID,
			TransactionID: rec.TransactionID,
			Code:          rec.Code,
			GrossAmount:   issue.GrossAmount,
			Customer:      issue.Customer,
			CustomFields:  issue.CustomFields,
		})
	}
	return rec, true, nil
}

// persistWithFreshCode mints and upserts, retrying with a new random code if
// the code column's unique constraint trips. The strategy table decides the
// shape; strategies that derive the code from the order id cannot produce a
// different value on retry, so those bail after the first conflict.
func (s *AccessCodeService) persistWithFreshCode(ctx context.Context, issue Issue) (*models.AccessCode, error) {
	var lastErr error
	prev := ""
	for i := 0; i < mintAttempts; i++ {
		code := issue.Code
		if code == "" {
			code = s.codes.CodeFor(issue.OrderID)
		}
		rec := &models.AccessCode{
			TransactionID:     issue.TransactionID,
			OrderID:           issue.OrderID,
			Code:              code,
			CustomerFirstName: issue.Customer.FirstName,
			CustomerLastName:  issue.Customer.LastName,
			CustomerEmail:     issue.Customer.Email,
			CustomerPhone:     issue.Customer.Phone,
			Source:            issue.Source,
			SavedAt:           time.Now().UTC(),
		}
		saved, err := s.store.UpsertByTransaction(ctx, rec)
		if err == nil {
			return saved, nil
		}
		lastErr = err
		if !errors.Is(err, gorm.ErrDuplicatedKey) || code == prev {
			return nil, err
		}
		prev = code
	}
	return nil, fmt.Errorf("could not mint a unique code for %s: %w", issue.OrderID, lastErr)
}

// VerifyCode resolves a buyer-presented code, nil when unknown. Codes are
// bearer credentials: found means valid, no expiry or device binding.
func (s *AccessCodeService) VerifyCode(ctx context.Context, code string) (*models.AccessCode, error) {
	return s.store.FindByCode(ctx, code)
}

// CodeForOrder is the unlock flow's polling read.
func (s *AccessCodeService) CodeForOrder(ctx context.Context, orderID string) (*models.AccessCode, error) {
	return s.store.FindByOrderID(ctx, orderID)
}

// ListAll dumps every record for the admin surface.
func (s *AccessCodeService) ListAll(ctx context.Context) ([]models.AccessCode, error) {
	return s.store.ListAll(ctx)
}
