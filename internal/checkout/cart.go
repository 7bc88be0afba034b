package checkout

import (
	"github.com/warungpos/warungpos/internal/catalog"
)

// Cart holds the sale in progress for one operator. It lives entirely in
// memory, is never persisted, and is not safe for concurrent use; each
// operator session owns exactly one Cart.
//
// Stock ceilings enforced here use the product snapshot taken at add time.
// They keep the UI honest but are advisory only: the engine re-validates
// against live stock inside the commit transaction.
type Cart struct {
	lines []cartLine
}

type cartLine struct {
	product  catalog.Product
	quantity int64
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// AddItem puts one unit of the product in the cart, incrementing the line if
// it already exists. Adding beyond the last-known stock fails with
// ErrOutOfStock and leaves the cart unchanged.
func (c *Cart) AddItem(p catalog.Product) error {
	for i := range c.lines {
		if c.lines[i].product.ID == p.ID {
			if c.lines[i].quantity+1 > p.Stock {
				return ErrOutOfStock
			}
			c.lines[i].product = p
			c.lines[i].quantity++
			return nil
		}
	}
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	c.lines = append(c.lines, cartLine{product: p, quantity: 1})
	return nil
}

// ChangeQuantity applies a delta to a line. A resulting quantity <= 0 removes
// the line; exceeding the last-known stock returns InsufficientStockError and
// leaves the quantity unchanged.
func (c *Cart) ChangeQuantity(productID int64, delta int64) error {
	for i := range c.lines {
		if c.lines[i].product.ID != productID {
			continue
		}
		next := c.lines[i].quantity + delta
		if next <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
		if next > c.lines[i].product.Stock {
			return &InsufficientStockError{
				ProductName: c.lines[i].product.Name,
				Available:   c.lines[i].product.Stock,
			}
		}
		c.lines[i].quantity = next
		return nil
	}
	return ErrLineNotFound
}

// SetQuantity is the direct-entry form of ChangeQuantity, used when the
// operator types an exact amount.
func (c *Cart) SetQuantity(productID int64, quantity int64) error {
	for i := range c.lines {
		if c.lines[i].product.ID != productID {
			continue
		}
		return c.ChangeQuantity(productID, quantity-c.lines[i].quantity)
	}
	return ErrLineNotFound
}

// Total sums quantity * sale price over all lines. Recomputed on every call.
func (c *Cart) Total() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.quantity * line.product.SalePrice
	}
	return total
}

// Lines returns a snapshot of the cart for submission to the engine.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, CartLine{
			ProductID: line.product.ID,
			Name:      line.product.Name,
			SalePrice: line.product.SalePrice,
			Quantity:  line.quantity,
		})
	}
	return out
}

// Len reports the number of lines in the cart.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Clear empties the cart, called after a successful checkout or when the
// operator abandons the sale.
func (c *Cart) Clear() {
	c.lines = nil
}
