package models

import (
	"time"

	"gorm.io/datatypes"
)

// Outcomes of classifying a Midtrans notification.
const (
	WebhookOutcomeSettled      = "settled"
	WebhookOutcomePendingFraud = "pending_review"
	WebhookOutcomeFailed       = "failed"
	WebhookOutcomePending      = "pending"
	WebhookOutcomeIgnored      = "ignored"
)

// WebhookEvent is an append-only log of every inbound Midtrans notification,
// including the ones that issue nothing (pending, challenge, unknown).
// Written best-effort before classification; a failed write never blocks
// the notification itself.
type WebhookEvent struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	OrderID           string         `json:"order_id" gorm:"size:255;index"`
	TransactionID     string         `json:"transaction_id" gorm:"size:255;index"`
	TransactionStatus string         `json:"transaction_status" gorm:"size:50"`
	FraudStatus       string         `json:"fraud_status" gorm:"size:50"`
	Outcome           string         `json:"outcome" gorm:"size:50"`
	Payload           datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	CreatedAt         time.Time      `json:"created_at"`
}
