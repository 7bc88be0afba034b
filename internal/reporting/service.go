package reporting

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// DashboardSummary is the storefront overview shown on the dashboard.
// Displayed values may lag committed sales by one cache generation; the
// checkout engine never reads from here.
type DashboardSummary struct {
	Date             string `json:"date"`
	Revenue          int64  `json:"revenue"`
	Profit           int64  `json:"profit"`
	TransactionCount int64  `json:"transaction_count"`
	ProductCount     int64  `json:"product_count"`
	LowStockCount    int64  `json:"low_stock_count"`
}

// Service assembles cached reporting views over the ledger and catalog.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService builds Service. cache may wrap a nil client.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Dashboard returns today's summary, served from cache when warm.
func (s *Service) Dashboard(ctx context.Context) (DashboardSummary, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)

	key, err := s.cache.BuildKey(ctx, "reporting", "dashboard", today.Format("2006-01-02"))
	if err != nil {
		return DashboardSummary{}, err
	}

	var summary DashboardSummary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
		return s.loadDashboard(ctx, today)
	})
	return summary, err
}

func (s *Service) loadDashboard(ctx context.Context, day time.Time) (DashboardSummary, error) {
	summary := DashboardSummary{Date: day.Format("2006-01-02")}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.repo.DayTotals(ctx, day)
		if err != nil {
			return err
		}
		summary.Revenue = totals.Revenue
		summary.Profit = totals.Profit
		summary.TransactionCount = totals.TransactionCount
		return nil
	})
	g.Go(func() error {
		count, err := s.repo.ProductCount(ctx)
		if err != nil {
			return err
		}
		summary.ProductCount = count
		return nil
	})
	g.Go(func() error {
		count, err := s.repo.LowStockCount(ctx)
		if err != nil {
			return err
		}
		summary.LowStockCount = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}
	return summary, nil
}

// RevenueSeries returns the per-day revenue/profit series for the last n days.
func (s *Service) RevenueSeries(ctx context.Context, days int) ([]RevenuePoint, error) {
	if days <= 0 {
		days = 7
	}
	if days > 90 {
		days = 90
	}

	end := s.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	key, err := s.cache.BuildKey(ctx, "reporting", "revenue-series", strconv.Itoa(days), start.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	var points []RevenuePoint
	err = s.cache.FetchJSON(ctx, key, &points, func(ctx context.Context) (interface{}, error) {
		return s.repo.RevenueByDay(ctx, start, end)
	})
	return points, err
}

// Warmup precomputes the dashboard and default revenue series into the
// cache, used by the scheduled warmup job before the shop opens.
func (s *Service) Warmup(ctx context.Context) error {
	if _, err := s.Dashboard(ctx); err != nil {
		return err
	}
	_, err := s.RevenueSeries(ctx, 7)
	return err
}
