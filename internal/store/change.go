package store

// Op names the kind of change a store mutation made.
type Op string

const (
	OpAdded       Op = "added"
	OpIncremented Op = "incremented"
	OpDecremented Op = "decremented"
	OpRemoved     Op = "removed"
)

// Store names used in Change.Store.
const (
	CartStore     = "cart"
	WishlistStore = "wishlist"
)

// Change describes one state-changing mutation. Quantity is the line's
// quantity after the change (0 once removed); wishlist changes report 1 for
// membership and 0 for removal.
type Change struct {
	Store     string
	Op        Op
	ProductID int
	Quantity  int
}

// Listener is notified synchronously after a mutation changed state.
type Listener func(Change)

type notifier struct {
	listeners []Listener
}

// Subscribe registers l for every later state-changing mutation.
func (n *notifier) Subscribe(l Listener) {
	if l != nil {
		n.listeners = append(n.listeners, l)
	}
}

func (n *notifier) notify(c Change) {
	for _, l := range n.listeners {
		l(c)
	}
}
