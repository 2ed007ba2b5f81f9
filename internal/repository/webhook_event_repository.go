package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
)

// WebhookEventRepository is the durable commit log for verified provider
// events. Events are recorded before the provider is acknowledged and
// processed afterwards, so a handler failure never costs the event.
type WebhookEventRepository interface {
	// Record inserts the verified event. The provider event id carries a
	// unique constraint: a redelivered event returns recorded=false and
	// must not be dispatched again.
	Record(ctx context.Context, providerEventID, eventType string, payload []byte) (event *domain.WebhookEvent, recorded bool, err error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, handlerErr string) error
	// ListUnprocessed returns events awaiting dispatch, oldest first,
	// capped at limit. Events that have exhausted maxAttempts are left
	// for manual inspection.
	ListUnprocessed(ctx context.Context, limit, maxAttempts int) ([]domain.WebhookEvent, error)
}

type webhookEventRepository struct {
	pool *pgxpool.Pool
}

func NewWebhookEventRepository(pool *pgxpool.Pool) WebhookEventRepository {
	return &webhookEventRepository{pool: pool}
}

const webhookEventCols = `id, provider_event_id, event_type, payload, received_at, processed_at, attempts, last_error`

func (r *webhookEventRepository) Record(ctx context.Context, providerEventID, eventType string, payload []byte) (*domain.WebhookEvent, bool, error) {
	const q = `
		INSERT INTO webhook_events (provider_event_id, event_type, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider_event_id) DO NOTHING
		RETURNING ` + webhookEventCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var e domain.WebhookEvent
	err := r.pool.QueryRow(ctx, q, providerEventID, eventType, payload).Scan(
		&e.ID, &e.ProviderEventID, &e.EventType, &e.Payload,
		&e.ReceivedAt, &e.ProcessedAt, &e.Attempts, &e.LastError,
	)
	if err == pgx.ErrNoRows {
		// No row returned means the event id was already on file.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &e, true, nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, id int64) error {
	const q = `
		UPDATE webhook_events
		SET processed_at = now(), attempts = attempts + 1, last_error = ''
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id)
	return err
}

func (r *webhookEventRepository) MarkFailed(ctx context.Context, id int64, handlerErr string) error {
	const q = `
		UPDATE webhook_events
		SET attempts = attempts + 1, last_error = $2
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, handlerErr)
	return err
}

func (r *webhookEventRepository) ListUnprocessed(ctx context.Context, limit, maxAttempts int) ([]domain.WebhookEvent, error) {
	const q = `
		SELECT ` + webhookEventCols + `
		FROM webhook_events
		WHERE processed_at IS NULL AND attempts < $2
		ORDER BY id
		LIMIT $1`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, maxAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.WebhookEvent
	for rows.Next() {
		var e domain.WebhookEvent
		if err := rows.Scan(
			&e.ID, &e.ProviderEventID, &e.EventType, &e.Payload,
			&e.ReceivedAt, &e.ProcessedAt, &e.Attempts, &e.LastError,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
