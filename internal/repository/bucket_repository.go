package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
)

type BucketRepository interface {
	Create(ctx context.Context, name string, ownerID *int64) (*domain.Bucket, error)
	GetByID(ctx context.Context, id int64) (*domain.Bucket, error)
	List(ctx context.Context) ([]domain.Bucket, error)
}

type bucketRepository struct {
	pool *pgxpool.Pool
}

func NewBucketRepository(pool *pgxpool.Pool) BucketRepository {
	return &bucketRepository{pool: pool}
}

func (r *bucketRepository) Create(ctx context.Context, name string, ownerID *int64) (*domain.Bucket, error) {
	const q = `
		INSERT INTO buckets (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id, created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Bucket
	err := r.pool.QueryRow(ctx, q, name, ownerID).Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bucketRepository) GetByID(ctx context.Context, id int64) (*domain.Bucket, error) {
	const q = `SELECT id, name, owner_id, created_at FROM buckets WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Bucket
	err := r.pool.QueryRow(ctx, q, id).Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bucketRepository) List(ctx context.Context) ([]domain.Bucket, error) {
	const q = `
		SELECT b.id, b.name, b.owner_id, b.created_at, count(c.id)
		FROM buckets b
		LEFT JOIN contacts c ON c.bucket_id = b.id
		GROUP BY b.id
		ORDER BY b.created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []domain.Bucket
	for rows.Next() {
		var b domain.Bucket
		if err := rows.Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt, &b.ContactCount); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}
