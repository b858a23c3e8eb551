package domain

import "github.com/shopspring/decimal"

// Product is a catalog item as served by the catalog gateway. It is never
// mutated after it has been fetched.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Rating      Rating          `json:"rating"`
}

// Rating is the aggregate customer rating of a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Catalog is an immutable snapshot of a product listing indexed by ID.
// The zero value and a nil *Catalog are empty snapshots.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// NewCatalog indexes products. Later duplicates of an ID are ignored.
func NewCatalog(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Product returns the product with the given ID.
func (c *Catalog) Product(id int) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Price returns the price of the product with the given ID.
func (c *Catalog) Price(id int) (decimal.Decimal, bool) {
	p, ok := c.Product(id)
	if !ok {
		return decimal.Zero, false
	}
	return p.Price, true
}

// Products returns a copy of the snapshot in fetch order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return []Product{}
	}
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products in the snapshot.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}
