package domain

import (
	"fmt"
	"time"
)

// Checkout session event types delivered by the payment provider.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventCheckoutExpired       = "checkout.session.expired"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
)

// WebhookEvent is one verified provider event committed to the durable
// event log before any side effect runs. The provider event id is unique
// so at-least-once redelivery collapses to a single row.
type WebhookEvent struct {
	ID              int64      `json:"id"`
	ProviderEventID string     `json:"provider_event_id"`
	EventType       string     `json:"event_type"`
	Payload         []byte     `json:"-"`
	ReceivedAt      time.Time  `json:"received_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	Attempts        int        `json:"attempts"`
	LastError       string     `json:"last_error,omitempty"`
}

type CreateCheckoutRequest struct {
	PriceID string `json:"priceId"`
}

func (r *CreateCheckoutRequest) Validate() error {
	if r.PriceID == "" {
		return fmt.Errorf("priceId is required")
	}
	return nil
}

type CreateCheckoutResponse struct {
	ID string `json:"id"`
}
