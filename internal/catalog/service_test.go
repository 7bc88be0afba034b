package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products []Product
	nextID   int64
}

func newMemoryRepo(products ...Product) *memoryRepo {
	repo := &memoryRepo{nextID: 1}
	for _, p := range products {
		p.ID = repo.nextID
		repo.nextID++
		repo.products = append(repo.products, p)
	}
	return repo
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		if filters.LowStock && !p.LowStock() {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

func (m *memoryRepo) Create(_ context.Context, product Product) (Product, error) {
	product.ID = m.nextID
	m.nextID++
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt
	m.products = append(m.products, product)
	return product, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, product Product) error {
	for i, p := range m.products {
		if p.ID == id {
			product.ID = id
			product.CreatedAt = p.CreatedAt
			product.UpdatedAt = time.Now().UTC()
			m.products[i] = product
			return nil
		}
	}
	return ErrProductNotFound
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return ErrProductNotFound
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Name: "   ", SalePrice: 1000})
	require.ErrorIs(t, err, ErrInvalidProduct)

	_, err = svc.Create(ctx, Product{Name: "Indomie Goreng", CostPrice: -1})
	require.ErrorIs(t, err, ErrInvalidProduct)

	created, err := svc.Create(ctx, Product{Name: "Indomie Goreng", CostPrice: 2500, SalePrice: 3500, Stock: 40, ReorderThreshold: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, created.ID)
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := NewService(newMemoryRepo())

	err := svc.Update(context.Background(), 42, Product{Name: "Aqua 600ml", SalePrice: 4000})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestDelete(t *testing.T) {
	repo := newMemoryRepo(Product{Name: "Aqua 600ml", SalePrice: 4000, Stock: 5})
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 1))
	require.ErrorIs(t, svc.Delete(ctx, 1), ErrProductNotFound)
}

func TestListLowStock(t *testing.T) {
	repo := newMemoryRepo(
		Product{Name: "Beras Premium 5kg", SalePrice: 70000, Stock: 3, ReorderThreshold: 5},
		Product{Name: "Minyak Goreng 1L", SalePrice: 18000, Stock: 20, ReorderThreshold: 6},
		Product{Name: "Telur Ayam 1kg", SalePrice: 28000, Stock: 4, ReorderThreshold: 4},
	)
	svc := NewService(repo)

	low, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 2)
	require.Equal(t, "Beras Premium 5kg", low[0].Name)
	require.Equal(t, "Telur Ayam 1kg", low[1].Name)
}
