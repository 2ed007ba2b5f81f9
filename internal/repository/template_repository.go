package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
)

type TemplateRepository interface {
	Create(ctx context.Context, req *domain.MessageTemplateRequest) (*domain.MessageTemplate, error)
	GetByID(ctx context.Context, id int64) (*domain.MessageTemplate, error)
	List(ctx context.Context) ([]domain.MessageTemplate, error)
	Update(ctx context.Context, id int64, req *domain.MessageTemplateRequest) (*domain.MessageTemplate, error)
	Delete(ctx context.Context, id int64) error
}

type templateRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepository{pool: pool}
}

const templateCols = `id, title, message, created_at, updated_at`

func (r *templateRepository) Create(ctx context.Context, req *domain.MessageTemplateRequest) (*domain.MessageTemplate, error) {
	const q = `
		INSERT INTO message_templates (title, message)
		VALUES ($1, $2)
		RETURNING ` + templateCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.MessageTemplate
	err := r.pool.QueryRow(ctx, q, req.Title, req.Message).Scan(
		&t.ID, &t.Title, &t.Message, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *templateRepository) GetByID(ctx context.Context, id int64) (*domain.MessageTemplate, error) {
	const q = `SELECT ` + templateCols + ` FROM message_templates WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.MessageTemplate
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Title, &t.Message, &t.CreatedAt, &t.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *templateRepository) List(ctx context.Context) ([]domain.MessageTemplate, error) {
	const q = `SELECT ` + templateCols + ` FROM message_templates ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []domain.MessageTemplate
	for rows.Next() {
		var t domain.MessageTemplate
		if err := rows.Scan(&t.ID, &t.Title, &t.Message, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}

func (r *templateRepository) Update(ctx context.Context, id int64, req *domain.MessageTemplateRequest) (*domain.MessageTemplate, error) {
	const q = `
		UPDATE message_templates
		SET title = $2, message = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + templateCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.MessageTemplate
	err := r.pool.QueryRow(ctx, q, id, req.Title, req.Message).Scan(
		&t.ID, &t.Title, &t.Message, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *templateRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM message_templates WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
