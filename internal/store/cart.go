// Package store holds the per-session cart and wishlist collections.
//
// Stores are single-owner: they perform no locking and expect the caller
// (the session bundle) to serialise access. Every operation is total; asking
// about or mutating an absent product is a no-op, never an error.
package store

import (
	"github.com/shopspring/decimal"

	"github.com/DonatHalimi/OmniShop/internal/domain"
)

// PriceLookup resolves a product price from a catalog snapshot.
// *domain.Catalog implements it.
type PriceLookup interface {
	Price(productID int) (decimal.Decimal, bool)
}

// Cart is an ordered collection of cart lines, one per product, kept in
// first-add order.
type Cart struct {
	notifier
	lines []domain.CartLine
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID int) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// QuantityOf returns the quantity held for productID, 0 if absent.
func (c *Cart) QuantityOf(productID int) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// AddOne appends a line with quantity 1, or increments the existing line in
// place so its position is preserved.
func (c *Cart) AddOne(productID int) {
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity++
		c.notify(Change{Store: CartStore, Op: OpIncremented, ProductID: productID, Quantity: c.lines[i].Quantity})
		return
	}
	c.lines = append(c.lines, domain.CartLine{ProductID: productID, Quantity: 1})
	c.notify(Change{Store: CartStore, Op: OpAdded, ProductID: productID, Quantity: 1})
}

// RemoveOne decrements the line for productID. A line at quantity 1 is
// removed. Absent products are ignored.
func (c *Cart) RemoveOne(productID int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	if c.lines[i].Quantity == 1 {
		c.removeAt(i)
		c.notify(Change{Store: CartStore, Op: OpRemoved, ProductID: productID})
		return
	}
	c.lines[i].Quantity--
	c.notify(Change{Store: CartStore, Op: OpDecremented, ProductID: productID, Quantity: c.lines[i].Quantity})
}

// Delete removes the line for productID regardless of its quantity.
func (c *Cart) Delete(productID int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.removeAt(i)
	c.notify(Change{Store: CartStore, Op: OpRemoved, ProductID: productID})
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// TotalCost sums quantity times price over all lines. Products the lookup
// does not know contribute nothing.
func (c *Cart) TotalCost(prices PriceLookup) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(Subtotal(l, prices))
	}
	return total
}

// Subtotal is the cost of one line, zero when the price is unknown.
func Subtotal(l domain.CartLine, prices PriceLookup) decimal.Decimal {
	if prices == nil {
		return decimal.Zero
	}
	price, ok := prices.Price(l.ProductID)
	if !ok {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Len is the number of distinct products in the cart.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}
