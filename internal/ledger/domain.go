package ledger

import (
	"errors"
	"time"
)

// Kind distinguishes ledger entry origins. Sales are written only by the
// checkout engine; income and expense entries are recorded manually.
type Kind string

const (
	KindSale    Kind = "SALE"
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

// Valid reports whether k is a known ledger kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSale, KindIncome, KindExpense:
		return true
	}
	return false
}

// LineItem is the per-product snapshot attached to a sale entry.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	SalePrice int64  `json:"sale_price"`
	CostPrice int64  `json:"cost_price"`
}

// Entry is one row of the append-only ledger.
type Entry struct {
	ID          int64      `json:"id"`
	Kind        Kind       `json:"kind"`
	Code        string     `json:"code,omitempty"`
	Amount      int64      `json:"amount"`
	Profit      int64      `json:"profit,omitempty"`
	Description string     `json:"description,omitempty"`
	ActorID     string     `json:"actor_id"`
	OccurredAt  time.Time  `json:"occurred_at"`
	Items       []LineItem `json:"items,omitempty"`
}

// Filter narrows ledger listings.
type Filter struct {
	From  time.Time
	To    time.Time
	Kind  Kind
	Limit int
}

// Summary aggregates the ledger over a period.
type Summary struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

// ManualInput describes a manual income or expense entry.
type ManualInput struct {
	Kind        Kind
	Amount      int64
	Description string
	ActorID     string
}

var (
	// ErrEntryNotFound indicates a missing ledger row.
	ErrEntryNotFound = errors.New("ledger: entry not found")
	// ErrInvalidKind rejects unknown entry kinds, and SALE on manual input.
	ErrInvalidKind = errors.New("ledger: invalid entry kind")
	// ErrInvalidAmount rejects non-positive manual amounts.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")
	// ErrDescriptionRequired rejects manual entries without a description.
	ErrDescriptionRequired = errors.New("ledger: description is required")
)
