package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/platform/db"
)

// TxRepository exposes the operations available inside one atomic checkout.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, id int64) (catalog.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int64) (int64, error)
	NextSequence(ctx context.Context, name string) (int64, error)
	InsertTransaction(ctx context.Context, tx Transaction) (int64, time.Time, error)
	InsertLineItems(ctx context.Context, txID int64, items []LineItem) error
}

// RepositoryPort abstracts repository usage for the engine.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Repository persists checkout data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
// Serialization failures and deadlocks are classified as ErrConflict so the
// engine can retry the whole unit.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
	if err != nil && db.IsRetryable(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func (r *txRepo) GetProductForUpdate(ctx context.Context, id int64) (catalog.Product, error) {
	var p catalog.Product
	err := r.tx.QueryRow(ctx,
		`SELECT id, name, cost_price, sale_price, stock, reorder_threshold, created_at, updated_at FROM products WHERE id = $1 FOR UPDATE`,
		id).Scan(&p.ID, &p.Name, &p.CostPrice, &p.SalePrice, &p.Stock, &p.ReorderThreshold, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, err
}

func (r *txRepo) DecrementStock(ctx context.Context, id int64, quantity int64) (int64, error) {
	var newStock int64
	err := r.tx.QueryRow(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 RETURNING stock`,
		id, quantity).Scan(&newStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, catalog.ErrProductNotFound
	}
	return newStock, err
}

func (r *txRepo) NextSequence(ctx context.Context, name string) (int64, error) {
	var next int64
	err := r.tx.QueryRow(ctx,
		`INSERT INTO counters (name, last_code) VALUES ($1, 1)
		 ON CONFLICT (name) DO UPDATE SET last_code = counters.last_code + 1
		 RETURNING last_code`,
		name).Scan(&next)
	return next, err
}

func (r *txRepo) InsertTransaction(ctx context.Context, t Transaction) (int64, time.Time, error) {
	var (
		id         int64
		occurredAt time.Time
	)
	err := r.tx.QueryRow(ctx,
		`INSERT INTO transactions (kind, code, total_amount, profit, cash_tendered, change_due, actor_id, occurred_at)
		 VALUES ('SALE', $1, $2, $3, $4, $5, $6, NOW())
		 RETURNING id, occurred_at`,
		t.Code, t.TotalAmount, t.Profit, t.CashTendered, t.ChangeDue, t.ActorID).Scan(&id, &occurredAt)
	return id, occurredAt, err
}

func (r *txRepo) InsertLineItems(ctx context.Context, txID int64, items []LineItem) error {
	for _, item := range items {
		_, err := r.tx.Exec(ctx,
			`INSERT INTO transaction_items (transaction_id, product_id, name, quantity, sale_price, cost_price)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			txID, item.ProductID, item.Name, item.Quantity, item.SalePrice, item.CostPrice)
		if err != nil {
			return err
		}
	}
	return nil
}
