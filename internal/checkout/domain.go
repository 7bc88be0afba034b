package checkout

import (
	"errors"
	"fmt"
	"time"
)

// SequenceName is the counter row used for sale receipt codes.
const SequenceName = "sales"

// CartLine is one cart entry handed to the engine. Name and SalePrice are
// add-time snapshots for display and the early payment check; the engine
// always recomputes totals from live catalog data before committing.
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	SalePrice int64  `json:"sale_price"`
	Quantity  int64  `json:"quantity"`
}

// LineItem is the immutable per-product snapshot stored with a sale.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	SalePrice int64  `json:"sale_price"`
	CostPrice int64  `json:"cost_price"`
}

// Transaction is the permanent audit record written once per successful
// checkout. It is never updated or deleted.
type Transaction struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	Timestamp    time.Time  `json:"timestamp"`
	Items        []LineItem `json:"items"`
	TotalAmount  int64      `json:"total_amount"`
	Profit       int64      `json:"profit"`
	CashTendered int64      `json:"cash_tendered"`
	ChangeDue    int64      `json:"change_due"`
	ActorID      string     `json:"actor_id"`
}

// StockLevel reports a product's stock after the sale committed, so callers
// can refresh their in-memory view without a re-fetch.
type StockLevel struct {
	ProductID int64 `json:"product_id"`
	Stock     int64 `json:"stock"`
}

// Receipt bundles the committed transaction with resulting stock levels.
type Receipt struct {
	Transaction
	StockAfter []StockLevel `json:"stock_after"`
}

// SubmitInput is the engine's sole entry point payload.
type SubmitInput struct {
	Lines        []CartLine
	CashTendered int64
	ActorID      string
}

// FormatCode renders a sequence value as the 5-digit zero padded receipt code.
func FormatCode(n int64) string {
	return fmt.Sprintf("%05d", n)
}

var (
	// ErrEmptyCart rejects a checkout with no lines.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrInsufficientPayment rejects cash tendered below the total due.
	ErrInsufficientPayment = errors.New("checkout: cash tendered is below total")
	// ErrOutOfStock rejects adding a product whose stock is exhausted.
	ErrOutOfStock = errors.New("checkout: product out of stock")
	// ErrLineNotFound indicates a cart mutation referencing an absent line.
	ErrLineNotFound = errors.New("checkout: cart line not found")
	// ErrInvalidQuantity rejects non-positive line quantities.
	ErrInvalidQuantity = errors.New("checkout: quantity must be positive")
	// ErrConflict is a transient transaction conflict surfaced after the
	// bounded retry budget is exhausted.
	ErrConflict = errors.New("checkout: write conflict")
)

// InsufficientStockError names the offending product so the operator can
// reduce the quantity or remove the line.
type InsufficientStockError struct {
	ProductName string
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("checkout: insufficient stock for %s (available %d)", e.ProductName, e.Available)
}
