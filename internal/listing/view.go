package listing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DonatHalimi/OmniShop/internal/domain"
)

// State is the list view lifecycle state.
type State string

const (
	Loading State = "loading"
	Ready   State = "ready"
)

// ErrNotLoaded is returned when a sort is requested before any data arrived.
var ErrNotLoaded = errors.New("list view has no data yet")

// Snapshot is a point-in-time copy of a view.
type Snapshot struct {
	State    State
	Sort     SortKey
	Param    string
	Products []domain.Product
	// Superseded is set on results of a load or sort that a newer request
	// overtook. The products are still the caller's own result, but the view
	// does not show them.
	Superseded bool
}

// Ticket tags one load. Only the most recently issued ticket may resolve.
type Ticket struct {
	seq   uint64
	param string
}

// Param is the parameter the ticket was issued for.
func (t Ticket) Param() string { return t.param }

// View is one sortable product list screen (all products, one category, or
// search results). It keeps the pristine fetch-order list and derives the
// displayed order from it, so returning to Relevance always restores fetch
// order. Loads are tagged with tickets so a slow response can never replace
// a newer one. Safe for concurrent use.
type View struct {
	mu       sync.Mutex
	delay    time.Duration
	state    State
	key      SortKey
	param    string
	original []domain.Product
	display  []domain.Product

	// dataParam is the parameter original was loaded for; param may already
	// name a newer load that has not resolved.
	dataParam string
	loaded    bool
	pending   bool
	loadSeq   uint64
	sortSeq   uint64
}

// NewView returns a view in the Loading state. delay is how long a sort
// selection holds the Loading state before the sorted list is shown.
func NewView(delay time.Duration) *View {
	return &View{delay: delay, state: Loading, key: Relevance}
}

// Begin starts a load for param and moves the view to Loading.
func (v *View) Begin(param string) Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.loadSeq++
	v.state = Loading
	v.param = param
	v.pending = true
	return Ticket{seq: v.loadSeq, param: param}
}

// Resolve installs products as the view's data if t is still the current
// ticket, showing them in Relevance order. Stale tickets are ignored and
// false is returned. Any sort in flight on the previous data is abandoned.
func (v *View) Resolve(t Ticket, products []domain.Product) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if t.seq != v.loadSeq {
		return false
	}
	v.original = Sort(products, Relevance)
	v.display = v.original
	v.dataParam = t.param
	v.key = Relevance
	v.state = Ready
	v.loaded = true
	v.pending = false
	v.sortSeq++
	return true
}

// Load fetches fresh data for param through fetch and resolves it. On fetch
// failure the view stays Loading and the error is returned.
func (v *View) Load(ctx context.Context, param string, fetch func(context.Context) ([]domain.Product, error)) (Snapshot, error) {
	t := v.Begin(param)

	products, err := fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	if !v.Resolve(t, products) {
		return Snapshot{
			State:      Ready,
			Sort:       Relevance,
			Param:      param,
			Products:   Sort(products, Relevance),
			Superseded: true,
		}, nil
	}
	return v.Snapshot(), nil
}

// SelectSort re-orders the loaded list by key. The view is Loading for the
// configured delay, then Ready(key) unless a newer load or sort happened in
// the meantime. While a load is unresolved the view is left untouched and
// the loaded data is returned sorted and marked Superseded. If ctx ends during
// the delay the previous order is restored and ctx's error returned.
func (v *View) SelectSort(ctx context.Context, key SortKey) (Snapshot, error) {
	v.mu.Lock()
	if !v.loaded {
		v.mu.Unlock()
		return Snapshot{}, ErrNotLoaded
	}
	if v.pending {
		base, param := v.original, v.dataParam
		v.mu.Unlock()
		return Snapshot{State: Ready, Sort: key, Param: param, Products: Sort(base, key), Superseded: true}, nil
	}
	v.sortSeq++
	sortSeq, loadSeq := v.sortSeq, v.loadSeq
	prev := v.state
	v.state = Loading
	base, param := v.original, v.dataParam
	v.mu.Unlock()

	if err := sleep(ctx, v.delay); err != nil {
		v.mu.Lock()
		if v.sortSeq == sortSeq && v.loadSeq == loadSeq {
			v.state = prev
		}
		v.mu.Unlock()
		return Snapshot{}, err
	}

	sorted := Sort(base, key)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sortSeq != sortSeq || v.loadSeq != loadSeq {
		return Snapshot{State: Ready, Sort: key, Param: param, Products: sorted, Superseded: true}, nil
	}
	v.display = sorted
	v.key = key
	v.state = Ready
	return v.snapshotLocked(), nil
}

// Snapshot returns a copy of the current view state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	products := make([]domain.Product, len(v.display))
	copy(products, v.display)
	return Snapshot{State: v.state, Sort: v.key, Param: v.param, Products: products}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
