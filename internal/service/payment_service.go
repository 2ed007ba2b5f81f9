package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stripego "github.com/stripe/stripe-go/v76"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/mailer"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/repository"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/stripe"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/auth"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/config"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/events"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

var ErrInvalidSignature = fmt.Errorf("invalid webhook signature")

// PaymentService reconciles asynchronous provider events into account
// state. Verified events are committed to the webhook_events log and
// acknowledged before any side effect runs; processing happens through
// ProcessEvent, driven by the event bus and a periodic sweep.
type PaymentService interface {
	CreateCheckout(ctx context.Context, priceID string) (string, error)
	// IngestWebhook verifies the raw payload and records it. It returns
	// ErrInvalidSignature when the signature does not check out; any
	// other outcome, including a duplicate delivery, is an acknowledge.
	IngestWebhook(ctx context.Context, payload []byte, sigHeader string) error
	// ProcessEvent runs the side effects for one recorded event.
	ProcessEvent(ctx context.Context, event *domain.WebhookEvent) error
	// ProcessPending sweeps unprocessed events, retrying failed handlers.
	ProcessPending(ctx context.Context) error
	// Run subscribes to the event bus and starts the sweep loop.
	Run(ctx context.Context) error
}

type paymentService struct {
	gateway      stripe.Gateway
	accountRepo  repository.AccountRepository
	eventRepo    repository.WebhookEventRepository
	mailer       mailer.Service
	eventBus     events.EventBus
	config       *config.Config
	sweepEvery   time.Duration
	maxAttempts  int
	lookupBudget time.Duration
}

func NewPaymentService(
	gateway stripe.Gateway,
	accountRepo repository.AccountRepository,
	eventRepo repository.WebhookEventRepository,
	mailer mailer.Service,
	eventBus events.EventBus,
	config *config.Config,
) PaymentService {
	return &paymentService{
		gateway:      gateway,
		accountRepo:  accountRepo,
		eventRepo:    eventRepo,
		mailer:       mailer,
		eventBus:     eventBus,
		config:       config,
		sweepEvery:   time.Minute,
		maxAttempts:  10,
		lookupBudget: 10 * time.Second,
	}
}

func (s *paymentService) CreateCheckout(ctx context.Context, priceID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupBudget)
	defer cancel()

	sess, err := s.gateway.CreateCheckoutSession(ctx, priceID)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.ID, nil
}

func (s *paymentService) IngestWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.gateway.ConstructEvent(payload, sigHeader)
	if err != nil {
		return ErrInvalidSignature
	}

	recorded, fresh, err := s.eventRepo.Record(ctx, event.ID, string(event.Type), payload)
	if err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	if !fresh {
		// At-least-once redelivery of an event already on file.
		logger.InfoContext(ctx, "Duplicate webhook event acknowledged", "provider_event_id", event.ID)
		return nil
	}

	// The provider is acknowledged from here on; processing is async.
	if err := s.eventBus.Publish(ctx, events.WebhookEventReceived, events.WebhookEventReceivedEvent{
		EventID:    recorded.ID,
		ProviderID: recorded.ProviderEventID,
		EventType:  recorded.EventType,
	}); err != nil {
		// The sweep loop picks the event up later.
		logger.WarnContext(ctx, "Failed to publish webhook event, sweep will retry", "error", err, "event_id", recorded.ID)
	}

	return nil
}

func (s *paymentService) ProcessEvent(ctx context.Context, event *domain.WebhookEvent) error {
	var err error
	switch event.EventType {
	case domain.EventCheckoutCompleted, domain.EventAsyncPaymentSucceeded:
		err = s.applyCompletedCheckout(ctx, event)
	case domain.EventCheckoutExpired, domain.EventAsyncPaymentFailed:
		// Terminal no-op, kept for observability.
		logger.InfoContext(ctx, "Checkout did not complete", "event_type", event.EventType, "provider_event_id", event.ProviderEventID)
	default:
		// Unrecognized types are acknowledged, not retried.
		logger.InfoContext(ctx, "Ignoring unhandled webhook event type", "event_type", event.EventType)
	}

	if err != nil {
		logger.ErrorContext(ctx, "Webhook event handler failed", "error", err, "event_id", event.ID, "event_type", event.EventType)
		if markErr := s.eventRepo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			logger.ErrorContext(ctx, "Failed to mark webhook event failed", "error", markErr, "event_id", event.ID)
		}
		return err
	}

	return s.eventRepo.MarkProcessed(ctx, event.ID)
}

func (s *paymentService) applyCompletedCheckout(ctx context.Context, event *domain.WebhookEvent) error {
	var sess stripego.CheckoutSession
	if err := json.Unmarshal(payloadObject(event.Payload), &sess); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	if sess.ID == "" {
		return fmt.Errorf("webhook event %s has no session id", event.ProviderEventID)
	}

	// Second round-trip: the webhook body may omit line items, so the
	// provider's own record decides what was bought. The purchase is
	// appended only after this lookup succeeds.
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupBudget)
	defer cancel()

	full, err := s.gateway.SessionWithLineItems(lookupCtx, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch session line items: %w", err)
	}

	email := payerEmail(full)
	if email == "" {
		return fmt.Errorf("checkout session %s has no payer email", full.ID)
	}

	productID := purchasedProduct(full)
	if productID == "" {
		return fmt.Errorf("checkout session %s has no line items", full.ID)
	}

	account, err := s.accountRepo.ResolveByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to resolve account: %w", err)
	}

	added, err := s.accountRepo.AddPurchase(ctx, account.ID, productID, full.ID)
	if err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}

	if added {
		if err := s.eventBus.Publish(ctx, events.PurchaseRecorded, events.PurchaseRecordedEvent{
			AccountID:     account.ID,
			Email:         account.Email,
			ProductID:     productID,
			TransactionID: full.ID,
			RecordedAt:    time.Now(),
		}); err != nil {
			logger.WarnContext(ctx, "Failed to publish purchase event", "error", err)
		}
	} else {
		// The purchase may have been recorded by an earlier attempt whose
		// magic link mail then failed. Only a notified purchase makes the
		// redelivery a full no-op; otherwise the mail still owes.
		notified, err := s.accountRepo.PurchaseNotified(ctx, account.ID, full.ID)
		if err != nil {
			return fmt.Errorf("failed to check purchase notification: %w", err)
		}
		if notified {
			logger.InfoContext(ctx, "Purchase already recorded for transaction", "account_id", account.ID, "transaction_id", full.ID)
			return nil
		}
		logger.InfoContext(ctx, "Resending magic link for recorded purchase", "account_id", account.ID, "transaction_id", full.ID)
	}

	token, err := auth.NewMagicLinkToken(account.ID, account.Email, s.config.Auth.JWTSecret, s.config.Auth.MagicLinkTTL)
	if err != nil {
		return fmt.Errorf("failed to issue magic link token: %w", err)
	}

	magicLink := fmt.Sprintf("%s/auth?token=%s", s.config.App.ClientURL, token)
	if err := s.mailer.SendMagicLink(account.Email, magicLink); err != nil {
		return fmt.Errorf("failed to send magic link email: %w", err)
	}

	if err := s.accountRepo.MarkPurchaseNotified(ctx, account.ID, full.ID); err != nil {
		// Worst case the buyer gets a second email on the next delivery.
		logger.WarnContext(ctx, "Failed to stamp purchase as notified", "error", err, "transaction_id", full.ID)
	}

	logger.InfoContext(ctx, "Purchase reconciled",
		"account_id", account.ID,
		"product_id", productID,
		"transaction_id", full.ID,
	)
	return nil
}

func (s *paymentService) ProcessPending(ctx context.Context) error {
	pending, err := s.eventRepo.ListUnprocessed(ctx, 50, s.maxAttempts)
	if err != nil {
		return fmt.Errorf("failed to list unprocessed events: %w", err)
	}

	for i := range pending {
		// Handler failures were already logged and marked; the next
		// sweep retries until attempts run out.
		_ = s.ProcessEvent(ctx, &pending[i])
	}

	return nil
}

func (s *paymentService) Run(ctx context.Context) error {
	err := s.eventBus.QueueSubscribe(events.WebhookEventReceived, "payments", func(msg *events.Message) {
		var received events.WebhookEventReceivedEvent
		if err := json.Unmarshal(msg.Data, &received); err != nil {
			logger.Error("Failed to unmarshal webhook bus message", "error", err)
			return
		}
		if err := s.ProcessPending(ctx); err != nil {
			logger.Error("Failed to process pending webhook events", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to webhook events: %w", err)
	}

	go func() {
		ticker := time.NewTicker(s.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.ProcessPending(ctx); err != nil {
					logger.Error("Webhook sweep failed", "error", err)
				}
			}
		}
	}()

	return nil
}

// payloadObject extracts the event's data.object document from the raw
// webhook payload.
func payloadObject(payload []byte) []byte {
	var envelope struct {
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || len(envelope.Data.Object) == 0 {
		return payload
	}
	return envelope.Data.Object
}

func payerEmail(sess *stripego.CheckoutSession) string {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	return sess.CustomerEmail
}

func purchasedProduct(sess *stripego.CheckoutSession) string {
	if sess.LineItems == nil || len(sess.LineItems.Data) == 0 {
		return ""
	}
	item := sess.LineItems.Data[0]
	if item.Price == nil {
		return ""
	}
	if item.Price.Product != nil && item.Price.Product.ID != "" {
		return item.Price.Product.ID
	}
	return item.Price.ID
}
