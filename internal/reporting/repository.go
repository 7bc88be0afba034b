package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DayTotals aggregates committed sales for one day.
type DayTotals struct {
	Revenue          int64 `json:"revenue"`
	Profit           int64 `json:"profit"`
	TransactionCount int64 `json:"transaction_count"`
}

// RevenuePoint is one day of the omzet chart.
type RevenuePoint struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Profit  int64  `json:"profit"`
}

type Repository interface {
	DayTotals(ctx context.Context, day time.Time) (DayTotals, error)
	ProductCount(ctx context.Context) (int64, error)
	LowStockCount(ctx context.Context) (int64, error)
	RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenuePoint, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) DayTotals(ctx context.Context, day time.Time) (DayTotals, error) {
	start := day.Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	var t DayTotals
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(profit), 0), COUNT(*)
		 FROM transactions
		 WHERE kind = 'SALE' AND occurred_at >= $1 AND occurred_at < $2`,
		start, end).Scan(&t.Revenue, &t.Profit, &t.TransactionCount)
	return t, err
}

func (r *repository) ProductCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func (r *repository) LowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE stock <= reorder_threshold`).Scan(&count)
	return count, err
}

func (r *repository) RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenuePoint, error) {
	rows, err := r.db.Query(ctx,
		`SELECT TO_CHAR(occurred_at::date, 'YYYY-MM-DD'), COALESCE(SUM(total_amount), 0), COALESCE(SUM(profit), 0)
		 FROM transactions
		 WHERE kind = 'SALE' AND occurred_at >= $1 AND occurred_at < $2
		 GROUP BY occurred_at::date
		 ORDER BY occurred_at::date`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []RevenuePoint
	for rows.Next() {
		var p RevenuePoint
		if err := rows.Scan(&p.Date, &p.Revenue, &p.Profit); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
