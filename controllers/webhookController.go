package controllers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"nala-backend/midtrans"
	"nala-backend/models"
	"nala-backend/services"
)

// WebhookEventRecorder appends to the notification audit log. Best-effort:
// a failed append never blocks the notification itself.
type WebhookEventRecorder interface {
	Create(ctx context.Context, event *models.WebhookEvent) error
}

// WebhookController is the ingress for Midtrans's asynchronous payment
// notifications.
type WebhookController struct {
	codes  *services.AccessCodeService
	events WebhookEventRecorder
}

func NewWebhookController(codes *services.AccessCodeService, events WebhookEventRecorder) *WebhookController {
	return &WebhookController{codes: codes, events: events}
}

// HandleNotification classifies the notification and, on settlement, runs
// the issuance engine inside the request cycle. Midtrans retries on
// anything but 200, so persistence failures answer 500 and everything else
// answers 200 even when nothing was issued.
func (wc *WebhookController) HandleNotification(c *fiber.Ctx) error {
	var n midtrans.Notification
	if err := c.BodyParser(&n); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid notification body")
	}
	if n.OrderID == "" || n.TransactionStatus == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing order_id or transaction_status")
	}

	outcome := classify(n.TransactionStatus, n.FraudStatus)
	wc.recordEvent(c, &n, outcome)

	switch outcome {
	case models.WebhookOutcomeSettled:
		issue := services.Issue{
			OrderID:       n.OrderID,
			TransactionID: n.TransactionID,
			Source:        services.SourceWebhook,
			GrossAmount:   n.GrossAmount,
			CustomFields:  [3]string{n.CustomField1, n.CustomField2, n.CustomField3},
		}
		if cd := n.CustomerDetails; cd != nil {
			issue.Customer = models.Customer{
				FirstName: cd.FirstName,
				LastName:  cd.LastName,
				Email:     cd.Email,
				Phone:     cd.Phone,
			}
		}
		rec, created, err := wc.codes.EnsureAccessCode(c.Context(), issue)
		if err != nil {
			log.Printf("[webhook] issuance failed for %s: %v", n.OrderID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "could not persist access code")
		}
		return c.JSON(fiber.Map{"status": "ok", "code_issued": created, "code": rec.Code})

	case models.WebhookOutcomePendingFraud:
		// Capture flagged for manual review. Nothing issued; a follow-up
		// notification arrives once the review resolves.
		log.Printf("[webhook] %s capture held for fraud review", n.OrderID)
		return c.JSON(fiber.Map{"status": "ok", "code_issued": false})

	case models.WebhookOutcomeFailed:
		log.Printf("[webhook] %s terminal status %s", n.OrderID, n.TransactionStatus)
		return c.JSON(fiber.Map{"status": "ok", "code_issued": false})

	case models.WebhookOutcomePending:
		return c.JSON(fiber.Map{"status": "ok", "code_issued": false})

	default:
		log.Printf("[webhook] %s unrecognized status %q ignored", n.OrderID, n.TransactionStatus)
		return c.JSON(fiber.Map{"status": "ok", "code_issued": false})
	}
}

// classify maps Midtrans's open status enum onto our outcomes.
func classify(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case midtrans.StatusCapture:
		if fraudStatus == midtrans.FraudChallenge {
			return models.WebhookOutcomePendingFraud
		}
		if fraudStatus == midtrans.FraudAccept || fraudStatus == "" {
			return models.WebhookOutcomeSettled
		}
		return models.WebhookOutcomeIgnored
	case midtrans.StatusSettlement:
		return models.WebhookOutcomeSettled
	case midtrans.StatusCancel, midtrans.StatusDeny, midtrans.StatusExpire:
		return models.WebhookOutcomeFailed
	case midtrans.StatusPending:
		return models.WebhookOutcomePending
	default:
		return models.WebhookOutcomeIgnored
	}
}

func (wc *WebhookController) recordEvent(c *fiber.Ctx, n *midtrans.Notification, outcome string) {
	if wc.events == nil {
		return
	}
	raw := make([]byte, len(c.Body()))
	copy(raw, c.Body())
	event := &models.WebhookEvent{
		OrderID:           n.OrderID,
		TransactionID:     n.TransactionID,
		TransactionStatus: n.TransactionStatus,
		FraudStatus:       n.FraudStatus,
		Outcome:           outcome,
		Payload:           datatypes.JSON(raw),
	}
	if err := wc.events.Create(c.Context(), event); err != nil {
		log.Printf("[webhook] audit log write failed for %s: %v", n.OrderID, err)
	}
}
