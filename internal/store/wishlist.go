package store

import "github.com/DonatHalimi/OmniShop/internal/domain"

// Wishlist is an insertion-ordered set of saved products.
type Wishlist struct {
	notifier
	entries []domain.WishlistEntry
}

// NewWishlist returns an empty wishlist.
func NewWishlist() *Wishlist {
	return &Wishlist{}
}

func (w *Wishlist) index(productID int) int {
	for i := range w.entries {
		if w.entries[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add saves productID. Adding a saved product is a no-op.
func (w *Wishlist) Add(productID int) {
	if w.index(productID) >= 0 {
		return
	}
	w.entries = append(w.entries, domain.WishlistEntry{ProductID: productID})
	w.notify(Change{Store: WishlistStore, Op: OpAdded, ProductID: productID, Quantity: 1})
}

// Remove forgets productID if it is saved.
func (w *Wishlist) Remove(productID int) {
	i := w.index(productID)
	if i < 0 {
		return
	}
	w.entries = append(w.entries[:i], w.entries[i+1:]...)
	w.notify(Change{Store: WishlistStore, Op: OpRemoved, ProductID: productID})
}

// Contains reports whether productID is saved.
func (w *Wishlist) Contains(productID int) bool {
	return w.index(productID) >= 0
}

// Len is the number of saved products.
func (w *Wishlist) Len() int {
	return len(w.entries)
}

// Entries returns a copy of the entries in insertion order.
func (w *Wishlist) Entries() []domain.WishlistEntry {
	out := make([]domain.WishlistEntry, len(w.entries))
	copy(out, w.entries)
	return out
}
