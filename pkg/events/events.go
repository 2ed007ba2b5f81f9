package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	// Payment events
	WebhookEventReceived = "payments.webhook.received"
	PurchaseRecorded     = "payments.purchase.recorded"

	// Contact events
	ContactsExported = "contacts.exported"
)

// Event payloads
type WebhookEventReceivedEvent struct {
	EventID    int64  `json:"event_id"`
	ProviderID string `json:"provider_id"`
	EventType  string `json:"event_type"`
}

type PurchaseRecordedEvent struct {
	AccountID     int64     `json:"account_id"`
	Email         string    `json:"email"`
	ProductID     string    `json:"product_id"`
	TransactionID string    `json:"transaction_id"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type ContactsExportedEvent struct {
	BucketID   int64     `json:"bucket_id"`
	Added      int       `json:"added"`
	Skipped    int       `json:"skipped"`
	ExportedAt time.Time `json:"exported_at"`
}
