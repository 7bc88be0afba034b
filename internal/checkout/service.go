package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/warungpos/warungpos/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheBumper invalidates cached reporting data after a committed sale.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service is the checkout transaction engine: the single atomic operation
// turning a cart snapshot plus tendered cash into a committed sale.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	cache       CacheBumper
	maxAttempts int
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// MaxAttempts bounds retries of the atomic unit on write conflicts.
	MaxAttempts int
}

// NewService builds Service. audit and cache may be nil.
func NewService(repo RepositoryPort, audit AuditPort, cache CacheBumper, cfg ServiceConfig) *Service {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 3
	}
	return &Service{repo: repo, audit: audit, cache: cache, maxAttempts: attempts}
}

// Submit validates the cart, then executes the read-validate-write sequence
// as one atomic unit: lock product rows, verify live stock, recompute totals
// from live prices, allocate the sequence code, decrement stock and append
// the transaction record. Either everything commits or nothing does; a
// conflict retries the whole unit up to the configured budget.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (Receipt, error) {
	if len(input.Lines) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	if input.CashTendered < 0 {
		return Receipt{}, ErrInsufficientPayment
	}

	lines, err := mergeLines(input.Lines)
	if err != nil {
		return Receipt{}, err
	}

	// Early check against the client-side snapshot. Authoritative totals are
	// recomputed from live prices inside the transaction.
	var clientTotal int64
	for _, line := range lines {
		clientTotal += line.Quantity * line.SalePrice
	}
	if input.CashTendered < clientTotal {
		return Receipt{}, ErrInsufficientPayment
	}

	var receipt Receipt
	for attempt := 1; ; attempt++ {
		receipt, err = s.submitOnce(ctx, lines, input)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrConflict) || attempt >= s.maxAttempts {
			return Receipt{}, err
		}
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "checkout:sale",
			Entity:   "transaction",
			EntityID: receipt.Code,
			Meta: map[string]any{
				"total_amount":  receipt.TotalAmount,
				"profit":        receipt.Profit,
				"cash_tendered": receipt.CashTendered,
				"change_due":    receipt.ChangeDue,
				"line_count":    len(receipt.Items),
			},
		})
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return receipt, nil
}

func (s *Service) submitOnce(ctx context.Context, lines []CartLine, input SubmitInput) (Receipt, error) {
	var receipt Receipt

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var (
			totalAmount int64
			profit      int64
			items       = make([]LineItem, 0, len(lines))
		)

		// Locked in ascending product id order so two overlapping checkouts
		// cannot deadlock each other.
		for _, line := range lines {
			product, err := tx.GetProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < line.Quantity {
				return &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
			}
			totalAmount += line.Quantity * product.SalePrice
			profit += line.Quantity * (product.SalePrice - product.CostPrice)
			items = append(items, LineItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  line.Quantity,
				SalePrice: product.SalePrice,
				CostPrice: product.CostPrice,
			})
		}

		next, err := tx.NextSequence(ctx, SequenceName)
		if err != nil {
			return err
		}

		// Live prices may differ from the client snapshot; re-check before
		// writing anything.
		if input.CashTendered < totalAmount {
			return ErrInsufficientPayment
		}

		record := Transaction{
			Code:         FormatCode(next),
			Items:        items,
			TotalAmount:  totalAmount,
			Profit:       profit,
			CashTendered: input.CashTendered,
			ChangeDue:    input.CashTendered - totalAmount,
			ActorID:      input.ActorID,
		}

		stockAfter := make([]StockLevel, 0, len(lines))
		for _, line := range lines {
			newStock, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			stockAfter = append(stockAfter, StockLevel{ProductID: line.ProductID, Stock: newStock})
		}

		id, occurredAt, err := tx.InsertTransaction(ctx, record)
		if err != nil {
			return err
		}
		if err := tx.InsertLineItems(ctx, id, items); err != nil {
			return err
		}

		record.ID = id
		record.Timestamp = occurredAt
		receipt = Receipt{Transaction: record, StockAfter: stockAfter}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// mergeLines validates quantities and folds duplicate product references into
// one line, returning lines sorted by product id.
func mergeLines(lines []CartLine) ([]CartLine, error) {
	merged := make(map[int64]CartLine, len(lines))
	for _, line := range lines {
		if line.ProductID <= 0 {
			return nil, fmt.Errorf("%w: product id %d", ErrInvalidQuantity, line.ProductID)
		}
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		existing, ok := merged[line.ProductID]
		if ok {
			existing.Quantity += line.Quantity
			merged[line.ProductID] = existing
			continue
		}
		merged[line.ProductID] = line
	}

	out := make([]CartLine, 0, len(merged))
	for _, line := range merged {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}
