package stores

import (
	"context"
	"errors"
	"strings"
	"time"

	"nala-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessCodeStore is the only reader/writer of grasp_guide_access.
// No caching; volume is low enough that every call hits Postgres.
type AccessCodeStore struct {
	db *gorm.DB
}

func NewAccessCodeStore(db *gorm.DB) *AccessCodeStore {
	return &AccessCodeStore{db: db}
}

// UpsertByTransaction inserts the record, or on a transaction_id conflict
// updates the mutable fields of the existing row. A single INSERT ... ON
// CONFLICT statement, so two concurrent deliveries of the same notification
// cannot both insert. Returns the row as persisted.
func (s *AccessCodeStore) UpsertByTransaction(ctx context.Context, rec *models.AccessCode) (*models.AccessCode, error) {
	now := time.Now().UTC()
	rec.SavedAt = now

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "transaction_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"code", "order_id",
			"customer_first_name", "customer_last_name",
			"customer_email", "customer_phone",
			"saved_at", "updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return nil, err
	}

	return s.FindByTransactionID(ctx, rec.TransactionID)
}

// FindByCode looks a code up ignoring case and surrounding whitespace.
// Returns (nil, nil) when no row matches.
func (s *AccessCodeStore) FindByCode(ctx context.Context, code string) (*models.AccessCode, error) {
	var rec models.AccessCode
	err := s.db.WithContext(ctx).
		Where("UPPER(TRIM(code)) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&rec).Error
	return oneOrNone(&rec, err)
}

// FindByOrderID returns the most recent record for an order id, or nil.
func (s *AccessCodeStore) FindByOrderID(ctx context.Context, orderID string) (*models.AccessCode, error) {
	var rec models.AccessCode
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("saved_at DESC").
		First(&rec).Error
	return oneOrNone(&rec, err)
}

func (s *AccessCodeStore) FindByTransactionID(ctx context.Context, transactionID string) (*models.AccessCode, error) {
	var rec models.AccessCode
	err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&rec).Error
	return oneOrNone(&rec, err)
}

// ListAll dumps every issued code, newest first. Admin consumption only.
func (s *AccessCodeStore) ListAll(ctx context.Context) ([]models.AccessCode, error) {
	var recs []models.AccessCode
	err := s.db.WithContext(ctx).Order("saved_at DESC").Find(&recs).Error
	return recs, err
}

// oneOrNone turns gorm's not-found error into a plain nil record; a lookup
// miss is an expected outcome here, not a failure.
func oneOrNone(rec *models.AccessCode, err error) (*models.AccessCode, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}
