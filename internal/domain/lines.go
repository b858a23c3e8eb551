package domain

// CartLine is one product in the cart. Quantity is always at least 1;
// a line whose quantity would reach 0 is removed instead.
type CartLine struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// WishlistEntry is one saved product.
type WishlistEntry struct {
	ProductID int `json:"product_id"`
}
