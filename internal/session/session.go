// Package session keeps one browser's cart, wishlist and list views
// together and serialises access to them.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/DonatHalimi/OmniShop/internal/listing"
	"github.com/DonatHalimi/OmniShop/internal/store"
)

// Names of the list views every session carries.
const (
	ViewAll      = "all"
	ViewCategory = "category"
	ViewSearch   = "search"
)

// Session is a single shopper's state. The cart and wishlist are not safe
// for concurrent use on their own; every access goes through Read or Update.
type Session struct {
	id string

	mu       sync.Mutex
	cart     *store.Cart
	wishlist *store.Wishlist
	version  uint64
	pending  []store.Change

	views    map[string]*listing.View
	lastSeen atomic.Int64
}

func newSession(id string, sortDelay time.Duration, onChange store.Listener, now time.Time) *Session {
	s := &Session{
		id:       id,
		cart:     store.NewCart(),
		wishlist: store.NewWishlist(),
		views: map[string]*listing.View{
			ViewAll:      listing.NewView(sortDelay),
			ViewCategory: listing.NewView(sortDelay),
			ViewSearch:   listing.NewView(sortDelay),
		},
	}
	s.lastSeen.Store(now.UnixNano())

	record := func(c store.Change) {
		s.version++
		s.pending = append(s.pending, c)
		if onChange != nil {
			onChange(c)
		}
	}
	s.cart.Subscribe(record)
	s.wishlist.Subscribe(record)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Update runs fn with exclusive access to the stores and returns the
// changes fn made, in order. An empty result means nothing changed.
func (s *Session) Update(fn func(cart *store.Cart, wishlist *store.Wishlist)) []store.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	fn(s.cart, s.wishlist)
	changes := s.pending
	s.pending = nil
	return changes
}

// Read runs fn with the stores locked and returns the state version fn saw.
// fn must not mutate the stores.
func (s *Session) Read(fn func(cart *store.Cart, wishlist *store.Wishlist)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.cart, s.wishlist)
	return s.version
}

// View returns the named list view, or nil for an unknown name.
func (s *Session) View(name string) *listing.View {
	return s.views[name]
}

// LastSeen reports when the session was last fetched from the registry.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}
