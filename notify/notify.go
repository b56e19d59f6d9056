package notify

import (
	"context"
	"log"
	"time"

	"nala-backend/models"
)

// AccessIssued describes a freshly issued access code, handed to the
// side-channel notifiers after the authoritative write committed.
type AccessIssued struct {
	OrderID       string
	TransactionID string
	Code          string
	GrossAmount   string
	Customer      models.Customer

	// Midtrans custom_field1..3, carrying class-registration details.
	CustomFields [3]string
}

// Notifier delivers a best-effort alert about an issued code. Errors are
// logged by the dispatcher and never reach the issuance path.
type Notifier interface {
	Notify(ctx context.Context, event AccessIssued) error
}

const dispatchTimeout = 10 * time.Second

// Dispatch fans the event out to all notifiers on a separate goroutine.
// It returns immediately; delivery failures only hit the log.
func Dispatch(notifiers []Notifier, event AccessIssued) {
	if len(notifiers) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		for _, n := range notifiers {
			if err := n.Notify(ctx, event); err != nil {
				log.Printf("[notify] %T failed for %s: %v", n, event.OrderID, err)
			}
		}
	}()
}
