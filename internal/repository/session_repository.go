package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository is the credential vault for opaque WhatsApp session
// blobs, keyed by (account, session name).
type SessionRepository interface {
	// Save upserts the blob; a later save for the same key supersedes
	// the prior value.
	Save(ctx context.Context, accountID int64, sessionName string, blob json.RawMessage) error
	Exists(ctx context.Context, accountID int64, sessionName string) (bool, error)
	Delete(ctx context.Context, accountID int64, sessionName string) error
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Save(ctx context.Context, accountID int64, sessionName string, blob json.RawMessage) error {
	const q = `
		INSERT INTO wa_sessions (account_id, session_name, blob)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, session_name) DO UPDATE SET
			blob = EXCLUDED.blob,
			updated_at = now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, accountID, sessionName, blob)
	return err
}

func (r *sessionRepository) Exists(ctx context.Context, accountID int64, sessionName string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM wa_sessions WHERE account_id = $1 AND session_name = $2)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, accountID, sessionName).Scan(&exists)
	return exists, err
}

func (r *sessionRepository) Delete(ctx context.Context, accountID int64, sessionName string) error {
	const q = `DELETE FROM wa_sessions WHERE account_id = $1 AND session_name = $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, accountID, sessionName)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
