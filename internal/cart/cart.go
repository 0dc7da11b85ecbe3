// Package cart holds the working sale before payment. It is pure client state.
package cart

import (
	"github.com/MrJamesThe3rd/caixa/internal/catalog"
)

// Line is one product in the cart. Quantity is always positive.
type Line struct {
	Product  catalog.Product
	Quantity int
}

// Subtotal is unit price times quantity, in cents.
func (l Line) Subtotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Cart keeps at most one line per product id, in insertion order.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add merges qty into the product's line, or appends a new one.
// A non-positive qty is treated as 1.
func (c *Cart) Add(p catalog.Product, qty int) {
	if qty <= 0 {
		qty = 1
	}

	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity += qty
		return
	}

	c.lines = append(c.lines, Line{Product: p, Quantity: qty})
}

// UpdateQuantity applies delta to the product's line and removes the line
// when the result drops to zero or below. Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID int64, delta int) {
	i := c.index(productID)
	if i < 0 {
		return
	}

	c.lines[i].Quantity += delta
	if c.lines[i].Quantity <= 0 {
		c.removeAt(i)
	}
}

func (c *Cart) Remove(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.removeAt(i)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}

	return total
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)

	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}

	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}
