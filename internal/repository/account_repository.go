package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
)

type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	// ResolveByEmail returns the account for the email, creating it if
	// absent. The upsert is a single statement against the unique email
	// column, so two concurrent resolves for one email can never produce
	// two accounts.
	ResolveByEmail(ctx context.Context, email string) (*domain.Account, error)
	// AddPurchase appends a product to the account's entitlement ledger.
	// The insert is a set-add keyed by (account_id, transaction_id);
	// a redelivered transaction reports added=false and changes nothing.
	AddPurchase(ctx context.Context, accountID int64, productID, transactionID string) (added bool, err error)
	// PurchaseNotified reports whether the buyer was already mailed a
	// magic link for this transaction. The stamp is kept on the purchase
	// row so a redelivered event can tell "recorded and notified" apart
	// from "recorded but the mail still owes".
	PurchaseNotified(ctx context.Context, accountID int64, transactionID string) (bool, error)
	MarkPurchaseNotified(ctx context.Context, accountID int64, transactionID string) error
	ListPurchases(ctx context.Context, accountID int64) ([]domain.Purchase, error)
	ListProducts(ctx context.Context, accountID int64) ([]string, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountCols = `id, email, created_at, updated_at`

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Account
	err := r.pool.QueryRow(ctx, q, email).Scan(&a.ID, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Account
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) ResolveByEmail(ctx context.Context, email string) (*domain.Account, error) {
	// DO UPDATE instead of DO NOTHING so the row is returned on the
	// conflict path as well.
	const q = `
		INSERT INTO accounts (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING ` + accountCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Account
	err := r.pool.QueryRow(ctx, q, email).Scan(&a.ID, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) AddPurchase(ctx context.Context, accountID int64, productID, transactionID string) (bool, error) {
	const q = `
		INSERT INTO purchases (account_id, product_id, transaction_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, transaction_id) DO NOTHING`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, accountID, productID, transactionID)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *accountRepository) PurchaseNotified(ctx context.Context, accountID int64, transactionID string) (bool, error) {
	const q = `
		SELECT notified_at IS NOT NULL
		FROM purchases
		WHERE account_id = $1 AND transaction_id = $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var notified bool
	err := r.pool.QueryRow(ctx, q, accountID, transactionID).Scan(&notified)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return notified, nil
}

func (r *accountRepository) MarkPurchaseNotified(ctx context.Context, accountID int64, transactionID string) error {
	const q = `
		UPDATE purchases
		SET notified_at = now()
		WHERE account_id = $1 AND transaction_id = $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, accountID, transactionID)
	return err
}

func (r *accountRepository) ListPurchases(ctx context.Context, accountID int64) ([]domain.Purchase, error) {
	const q = `
		SELECT id, account_id, product_id, transaction_id, notified_at, created_at
		FROM purchases
		WHERE account_id = $1
		ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.AccountID, &p.ProductID, &p.TransactionID, &p.NotifiedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}

	return purchases, rows.Err()
}

func (r *accountRepository) ListProducts(ctx context.Context, accountID int64) ([]string, error) {
	const q = `SELECT product_id FROM purchases WHERE account_id = $1 ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}
