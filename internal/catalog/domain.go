package catalog

import (
	"errors"
	"time"
)

// Product is a sellable item in the shop catalog. Monetary amounts are in
// minor currency units (whole Rupiah); Stock is only ever decremented by the
// checkout engine and set by catalog edits.
type Product struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	CostPrice        int64     `json:"cost_price"`
	SalePrice        int64     `json:"sale_price"`
	Stock            int64     `json:"stock"`
	ReorderThreshold int64     `json:"reorder_threshold"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// LowStock reports whether the product is at or below its reorder threshold.
func (p Product) LowStock() bool {
	return p.Stock <= p.ReorderThreshold
}

// ListFilters narrows product listings.
type ListFilters struct {
	Search   string
	LowStock bool
	Limit    int
	Page     int
	SortBy   string
	SortDir  string
}

// ErrProductNotFound indicates a missing product row.
var ErrProductNotFound = errors.New("catalog: product not found")

// ErrInvalidProduct indicates a product failing model validation.
var ErrInvalidProduct = errors.New("catalog: invalid product")
