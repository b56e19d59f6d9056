package stores

import (
	"context"

	"nala-backend/models"

	"gorm.io/gorm"
)

// WebhookEventStore appends to the notification audit log.
type WebhookEventStore struct {
	db *gorm.DB
}

func NewWebhookEventStore(db *gorm.DB) *WebhookEventStore {
	return &WebhookEventStore{db: db}
}

func (s *WebhookEventStore) Create(ctx context.Context, event *models.WebhookEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

// ListByOrderID returns the audit trail for one order, oldest first.
func (s *WebhookEventStore) ListByOrderID(ctx context.Context, orderID string) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}
