package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
)

type ContactRepository interface {
	// ExportBatch upserts every candidate into the bucket inside one
	// transaction: a concurrent reader sees either none or all of the
	// batch. Candidates already present (same whatsapp_id in the bucket)
	// get their name, phone and group metadata overwritten in place and
	// count as skipped.
	ExportBatch(ctx context.Context, bucketID int64, candidates []domain.ContactCandidate) (added, skipped int, err error)
	ListByBucket(ctx context.Context, bucketID int64) ([]domain.Contact, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

const contactCols = `id, bucket_id, whatsapp_id, name, phone_number, group_id, group_name, created_at, updated_at`

func (r *contactRepository) ExportBatch(ctx context.Context, bucketID int64, candidates []domain.ContactCandidate) (int, int, error) {
	if len(candidates) == 0 {
		return 0, 0, nil
	}

	// xmax = 0 only holds for freshly inserted rows, which is how an
	// insert is told apart from a conflict-update.
	const q = `
		INSERT INTO contacts (bucket_id, whatsapp_id, name, phone_number, group_id, group_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (bucket_id, whatsapp_id) DO UPDATE SET
			name = EXCLUDED.name,
			phone_number = EXCLUDED.phone_number,
			group_id = EXCLUDED.group_id,
			group_name = EXCLUDED.group_name,
			updated_at = now()
		RETURNING (xmax = 0) AS inserted`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	var added, skipped int
	for _, c := range candidates {
		var inserted bool
		err := tx.QueryRow(ctx, q, bucketID, c.WhatsappID, c.Name, c.PhoneNumber, c.GroupID, c.GroupName).Scan(&inserted)
		if err != nil {
			return 0, 0, err
		}
		if inserted {
			added++
		} else {
			skipped++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}

	return added, skipped, nil
}

func (r *contactRepository) ListByBucket(ctx context.Context, bucketID int64) ([]domain.Contact, error) {
	const q = `SELECT ` + contactCols + ` FROM contacts WHERE bucket_id = $1 ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, bucketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(
			&c.ID, &c.BucketID, &c.WhatsappID, &c.Name, &c.PhoneNumber,
			&c.GroupID, &c.GroupName, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}
