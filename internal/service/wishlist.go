package service

import (
	"context"
	"log/slog"
	"strconv"

	apperrors "github.com/DonatHalimi/OmniShop/pkg/errors"

	"github.com/DonatHalimi/OmniShop/internal/domain"
	"github.com/DonatHalimi/OmniShop/internal/session"
	"github.com/DonatHalimi/OmniShop/internal/store"
)

// WishlistEntryView is a saved product enriched with catalog data.
type WishlistEntryView struct {
	ProductID int             `json:"product_id"`
	Product   *domain.Product `json:"product,omitempty"`
	InCart    int             `json:"in_cart"`
}

// WishlistView is the wishlist page model.
type WishlistView struct {
	SessionID string              `json:"session_id"`
	Entries   []WishlistEntryView `json:"entries"`
	Count     int                 `json:"count"`
	Version   uint64              `json:"version"`
}

// GetWishlist returns the session's wishlist.
func (s *Storefront) GetWishlist(ctx context.Context, sessionID string) WishlistView {
	prices := s.prices(ctx)
	return wishlistView(s.sessions.GetOrCreate(sessionID), prices)
}

// AddToWishlist saves productID. Saving twice is a no-op.
func (s *Storefront) AddToWishlist(ctx context.Context, sessionID string, productID int) (WishlistView, error) {
	return s.mutateWishlist(ctx, sessionID, productID, "add", func(w *store.Wishlist) { w.Add(productID) })
}

// RemoveFromWishlist forgets productID.
func (s *Storefront) RemoveFromWishlist(ctx context.Context, sessionID string, productID int) (WishlistView, error) {
	return s.mutateWishlist(ctx, sessionID, productID, "remove", func(w *store.Wishlist) { w.Remove(productID) })
}

// MoveWishlistItemToCart adds one unit of a saved product to the cart. The
// product stays saved.
func (s *Storefront) MoveWishlistItemToCart(ctx context.Context, sessionID string, productID int) (CartView, error) {
	if err := validateProductID(productID); err != nil {
		return CartView{}, err
	}

	prices := s.prices(ctx)
	sess := s.sessions.GetOrCreate(sessionID)

	saved := false
	changes := sess.Update(func(c *store.Cart, w *store.Wishlist) {
		if saved = w.Contains(productID); saved {
			c.AddOne(productID)
		}
	})
	if !saved {
		return CartView{}, apperrors.NotFound("wishlist item", strconv.Itoa(productID))
	}

	view := cartView(sess, prices)
	s.log(ctx).InfoContext(ctx, "wishlist item added to cart",
		slog.Int("product_id", productID),
		slog.Int("item_count", view.ItemCount),
	)
	s.publishCartChanges(ctx, sessionID, changes, view)
	return view, nil
}

func (s *Storefront) mutateWishlist(ctx context.Context, sessionID string, productID int, action string, fn func(*store.Wishlist)) (WishlistView, error) {
	if err := validateProductID(productID); err != nil {
		return WishlistView{}, err
	}

	prices := s.prices(ctx)
	sess := s.sessions.GetOrCreate(sessionID)
	changes := sess.Update(func(_ *store.Cart, w *store.Wishlist) { fn(w) })
	view := wishlistView(sess, prices)

	s.log(ctx).InfoContext(ctx, "wishlist updated",
		slog.String("action", action),
		slog.Int("product_id", productID),
		slog.Bool("changed", len(changes) > 0),
		slog.Int("count", view.Count),
	)

	if s.events != nil {
		for _, c := range changes {
			if err := s.events.PublishWishlistUpdated(ctx, sessionID, c, view.Count); err != nil {
				s.log(ctx).ErrorContext(ctx, "failed to publish wishlist event",
					slog.String("op", string(c.Op)),
					slog.Int("product_id", c.ProductID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	return view, nil
}

func wishlistView(sess *session.Session, prices *domain.Catalog) WishlistView {
	var view WishlistView
	view.Version = sess.Read(func(c *store.Cart, w *store.Wishlist) {
		entries := w.Entries()
		view.Entries = make([]WishlistEntryView, 0, len(entries))
		for _, e := range entries {
			ev := WishlistEntryView{ProductID: e.ProductID, InCart: c.QuantityOf(e.ProductID)}
			if p, ok := prices.Product(e.ProductID); ok {
				ev.Product = &p
			}
			view.Entries = append(view.Entries, ev)
		}
		view.Count = len(entries)
	})
	view.SessionID = sess.ID()
	return view
}
