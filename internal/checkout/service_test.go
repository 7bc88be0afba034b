package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/catalog"
)

// memoryRepo implements RepositoryPort with commit/rollback semantics so the
// atomicity properties can be asserted against it.
type memoryRepo struct {
	mu           sync.Mutex
	products     map[int64]catalog.Product
	lastCode     int64
	transactions []Transaction
	items        map[int64][]LineItem
	nextID       int64

	// conflictsLeft makes the next N commits fail with ErrConflict.
	conflictsLeft int
}

func newMemoryRepo(products ...catalog.Product) *memoryRepo {
	repo := &memoryRepo{
		products: make(map[int64]catalog.Product),
		items:    make(map[int64][]LineItem),
	}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

type memoryTx struct {
	repo     *memoryRepo
	products map[int64]catalog.Product
	lastCode int64
	inserted []Transaction
	items    map[int64][]LineItem
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return fmt.Errorf("%w: simulated serialization failure", ErrConflict)
	}

	tx := &memoryTx{
		repo:     r,
		products: make(map[int64]catalog.Product, len(r.products)),
		lastCode: r.lastCode,
		items:    make(map[int64][]LineItem),
	}
	for id, p := range r.products {
		tx.products[id] = p
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.products = tx.products
	r.lastCode = tx.lastCode
	r.transactions = append(r.transactions, tx.inserted...)
	for id, items := range tx.items {
		r.items[id] = items
	}
	return nil
}

func (tx *memoryTx) GetProductForUpdate(ctx context.Context, id int64) (catalog.Product, error) {
	p, ok := tx.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (tx *memoryTx) DecrementStock(ctx context.Context, id int64, quantity int64) (int64, error) {
	p, ok := tx.products[id]
	if !ok {
		return 0, catalog.ErrProductNotFound
	}
	p.Stock -= quantity
	tx.products[id] = p
	return p.Stock, nil
}

func (tx *memoryTx) NextSequence(ctx context.Context, name string) (int64, error) {
	tx.lastCode++
	return tx.lastCode, nil
}

func (tx *memoryTx) InsertTransaction(ctx context.Context, t Transaction) (int64, time.Time, error) {
	tx.repo.nextID++
	t.ID = tx.repo.nextID
	t.Timestamp = time.Now().UTC()
	tx.inserted = append(tx.inserted, t)
	return t.ID, t.Timestamp, nil
}

func (tx *memoryTx) InsertLineItems(ctx context.Context, txID int64, items []LineItem) error {
	tx.items[txID] = items
	return nil
}

const testActor = "0a4f4a53-9a6e-4a5a-8f89-0d3b9a1c2e11"

func TestSubmitSuccess(t *testing.T) {
	repo := newMemoryRepo(catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 5})
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	receipt, err := svc.Submit(ctx, SubmitInput{
		Lines:        []CartLine{{ProductID: 1, Name: "A", SalePrice: 4000, Quantity: 3}},
		CashTendered: 15000,
		ActorID:      testActor,
	})
	require.NoError(t, err)
	require.Equal(t, "00001", receipt.Code)
	require.EqualValues(t, 12000, receipt.TotalAmount)
	require.EqualValues(t, 6000, receipt.Profit)
	require.EqualValues(t, 15000, receipt.CashTendered)
	require.EqualValues(t, 3000, receipt.ChangeDue)
	require.False(t, receipt.Timestamp.IsZero())
	require.Equal(t, []StockLevel{{ProductID: 1, Stock: 2}}, receipt.StockAfter)
	require.EqualValues(t, 2, repo.products[1].Stock)
	require.Len(t, repo.transactions, 1)
	require.Len(t, repo.items[receipt.ID], 1)
}

func TestSubmitInsufficientPayment(t *testing.T) {
	repo := newMemoryRepo(catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 5})
	svc := NewService(repo, nil, nil, ServiceConfig{})

	_, err := svc.Submit(context.Background(), SubmitInput{
		Lines:        []CartLine{{ProductID: 1, SalePrice: 4000, Quantity: 3}},
		CashTendered: 10000,
		ActorID:      testActor,
	})
	require.ErrorIs(t, err, ErrInsufficientPayment)
	require.EqualValues(t, 5, repo.products[1].Stock)
	require.Empty(t, repo.transactions)
	require.Zero(t, repo.lastCode)
}

func TestSubmitInsufficientStock(t *testing.T) {
	repo := newMemoryRepo(catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 2})
	svc := NewService(repo, nil, nil, ServiceConfig{})

	_, err := svc.Submit(context.Background(), SubmitInput{
		Lines:        []CartLine{{ProductID: 1, SalePrice: 4000, Quantity: 3}},
		CashTendered: 20000,
		ActorID:      testActor,
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "A", stockErr.ProductName)
	require.EqualValues(t, 2, stockErr.Available)

	// abort leaves both stores untouched and consumes no sequence code
	require.EqualValues(t, 2, repo.products[1].Stock)
	require.Empty(t, repo.transactions)
	require.Zero(t, repo.lastCode)
}

func TestSubmitEmptyCart(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil, ServiceConfig{})
	_, err := svc.Submit(context.Background(), SubmitInput{CashTendered: 1000, ActorID: testActor})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitRejectsInvalidQuantity(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil, ServiceConfig{})
	_, err := svc.Submit(context.Background(), SubmitInput{
		Lines:        []CartLine{{ProductID: 1, Quantity: 0}},
		CashTendered: 1000,
		ActorID:      testActor,
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSubmitLivePriceRecheck(t *testing.T) {
	// Client snapshot says 3000 but the live price is 4000: the early check
	// passes and the in-transaction re-check must abort.
	repo := newMemoryRepo(catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 5})
	svc := NewService(repo, nil, nil, ServiceConfig{})

	_, err := svc.Submit(context.Background(), SubmitInput{
		Lines:        []CartLine{{ProductID: 1, SalePrice: 3000, Quantity: 3}},
		CashTendered: 10000,
		ActorID:      testActor,
	})
	require.ErrorIs(t, err, ErrInsufficientPayment)
	require.EqualValues(t, 5, repo.products[1].Stock)
	require.Empty(t, repo.transactions)
	require.Zero(t, repo.lastCode)
}

func TestSubmitMergesDuplicateLines(t *testing.T) {
	repo := newMemoryRepo(catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 5})
	svc := NewService(repo, nil, nil, ServiceConfig{})

	receipt, err := svc.Submit(context.Background(), SubmitInput{
		Lines: []CartLine{
			{ProductID: 1, SalePrice: 4000, Quantity: 2},
			{ProductID: 1, SalePrice: 4000, Quantity: 1},
		},
		CashTendered: 12000,
		ActorID:      testActor,
	})
	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	require.EqualValues(t, 3, receipt.Items[0].Quantity)
	require.EqualValues(t, 2, repo.products[1].Stock)
}

func TestSequenceCodesNoGaps(t *testing.T) {
	repo := newMemoryRepo(catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 100})
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	codes := make(map[string]bool)
	for i := 0; i < 5; i++ {
		receipt, err := svc.Submit(ctx, SubmitInput{
			Lines:        []CartLine{{ProductID: 1, SalePrice: 4000, Quantity: 1}},
			CashTendered: 4000,
			ActorID:      testActor,
		})
		require.NoError(t, err)
		codes[receipt.Code] = true
	}

	// an aborted attempt between successes must not consume a code
	_, err := svc.Submit(ctx, SubmitInput{
		Lines:        []CartLine{{ProductID: 1, SalePrice: 4000, Quantity: 1000}},
		CashTendered: 4000000,
		ActorID:      testActor,
	})
	require.Error(t, err)

	receipt, err := svc.Submit(ctx, SubmitInput{
		Lines:        []CartLine{{ProductID: 1, SalePrice: 4000, Quantity: 1}},
		CashTendered: 4000,
		ActorID:      testActor,
	})
	require.NoError(t, err)
	codes[receipt.Code] = true

	require.Len(t, codes, 6)
	for i := 1; i <= 6; i++ {
		require.True(t, codes[fmt.Sprintf("%05d", i)], "missing code %05d", i)
	}
}

func TestSubmitConflictRetry(t *testing.T) {
	repo := newMemoryRepo(catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 5})
	repo.conflictsLeft = 2
	svc := NewService(repo, nil, nil, ServiceConfig{MaxAttempts: 3})

	receipt, err := svc.Submit(context.Background(), SubmitInput{
		Lines:        []CartLine{{ProductID: 1, SalePrice: 4000, Quantity: 1}},
		CashTendered: 4000,
		ActorID:      testActor,
	})
	require.NoError(t, err)
	require.Equal(t, "00001", receipt.Code)
}

func TestSubmitConflictBudgetExhausted(t *testing.T) {
	repo := newMemoryRepo(catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 5})
	repo.conflictsLeft = 3
	svc := NewService(repo, nil, nil, ServiceConfig{MaxAttempts: 3})

	_, err := svc.Submit(context.Background(), SubmitInput{
		Lines:        []CartLine{{ProductID: 1, SalePrice: 4000, Quantity: 1}},
		CashTendered: 4000,
		ActorID:      testActor,
	})
	require.ErrorIs(t, err, ErrConflict)
	require.EqualValues(t, 5, repo.products[1].Stock)
	require.Empty(t, repo.transactions)
}

func TestSubmitConcurrentLastUnit(t *testing.T) {
	repo := newMemoryRepo(catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 1})
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, SubmitInput{
				Lines:        []CartLine{{ProductID: 1, SalePrice: 4000, Quantity: 1}},
				CashTendered: 4000,
				ActorID:      testActor,
			})
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		failed++
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, failed)
	require.Zero(t, repo.products[1].Stock)
	require.Len(t, repo.transactions, 1)
}

func TestSubmitConcurrentDisjointProducts(t *testing.T) {
	repo := newMemoryRepo(
		catalog.Product{ID: 1, Name: "A", CostPrice: 2000, SalePrice: 4000, Stock: 10},
		catalog.Product{ID: 2, Name: "B", CostPrice: 1000, SalePrice: 3000, Stock: 10},
	)
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, productID := range []int64{1, 2} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := svc.Submit(ctx, SubmitInput{
				Lines:        []CartLine{{ProductID: id, SalePrice: 4000, Quantity: 4}},
				CashTendered: 16000,
				ActorID:      testActor,
			})
			require.NoError(t, err)
		}(productID)
	}
	wg.Wait()

	require.EqualValues(t, 6, repo.products[1].Stock)
	require.EqualValues(t, 6, repo.products[2].Stock)
	require.Len(t, repo.transactions, 2)
}

func TestFormatCode(t *testing.T) {
	require.Equal(t, "00001", FormatCode(1))
	require.Equal(t, "00042", FormatCode(42))
	require.Equal(t, "12345", FormatCode(12345))
	require.Equal(t, "123456", FormatCode(123456))
}
