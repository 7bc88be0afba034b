package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	List(ctx context.Context, filter Filter) ([]Entry, error)
	Get(ctx context.Context, id int64) (Entry, error)
	InsertManual(ctx context.Context, input ManualInput) (Entry, error)
	Summary(ctx context.Context, from, to time.Time) (Summary, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, kind, COALESCE(code, ''), total_amount, profit, COALESCE(description, ''), actor_id, occurred_at`

func (r *repository) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM transactions WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if !filter.From.IsZero() {
		argCount++
		query += ` AND occurred_at >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		query += ` AND occurred_at < $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}
	if filter.Kind != "" {
		argCount++
		query += ` AND kind = $` + strconv.Itoa(argCount)
		args = append(args, string(filter.Kind))
	}

	query += ` ORDER BY occurred_at DESC`

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Code, &e.Amount, &e.Profit, &e.Description, &e.ActorID, &e.OccurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Entry, error) {
	var e Entry
	err := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM transactions WHERE id = $1`, id).
		Scan(&e.ID, &e.Kind, &e.Code, &e.Amount, &e.Profit, &e.Description, &e.ActorID, &e.OccurredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	if err != nil {
		return Entry{}, err
	}

	if e.Kind == KindSale {
		rows, err := r.db.Query(ctx,
			`SELECT product_id, name, quantity, sale_price, cost_price FROM transaction_items WHERE transaction_id = $1 ORDER BY id`, id)
		if err != nil {
			return Entry{}, err
		}
		defer rows.Close()
		for rows.Next() {
			var item LineItem
			if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.SalePrice, &item.CostPrice); err != nil {
				return Entry{}, err
			}
			e.Items = append(e.Items, item)
		}
		if err := rows.Err(); err != nil {
			return Entry{}, err
		}
	}
	return e, nil
}

func (r *repository) InsertManual(ctx context.Context, input ManualInput) (Entry, error) {
	entry := Entry{
		Kind:        input.Kind,
		Amount:      input.Amount,
		Description: input.Description,
		ActorID:     input.ActorID,
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO transactions (kind, total_amount, description, actor_id, occurred_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, occurred_at`,
		string(input.Kind), input.Amount, input.Description, input.ActorID).Scan(&entry.ID, &entry.OccurredAt)
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (r *repository) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	query := `SELECT
		COALESCE(SUM(total_amount) FILTER (WHERE kind IN ('SALE', 'INCOME')), 0),
		COALESCE(SUM(total_amount) FILTER (WHERE kind = 'EXPENSE'), 0)
		FROM transactions WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if !from.IsZero() {
		argCount++
		query += ` AND occurred_at >= $` + strconv.Itoa(argCount)
		args = append(args, from)
	}
	if !to.IsZero() {
		argCount++
		query += ` AND occurred_at < $` + strconv.Itoa(argCount)
		args = append(args, to)
	}

	var s Summary
	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.Income, &s.Expense); err != nil {
		return Summary{}, err
	}
	s.Net = s.Income - s.Expense
	return s, nil
}
