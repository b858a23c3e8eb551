package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	apperrors "github.com/DonatHalimi/OmniShop/pkg/errors"

	"github.com/DonatHalimi/OmniShop/internal/domain"
	"github.com/DonatHalimi/OmniShop/internal/session"
	"github.com/DonatHalimi/OmniShop/internal/store"
)

// CartLineView is a cart line enriched with catalog data. Product is nil
// when the product is not in the current snapshot; its subtotal is then 0.
type CartLineView struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   *domain.Product `json:"product,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the cart page model.
type CartView struct {
	SessionID string          `json:"session_id"`
	Lines     []CartLineView  `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	Version   uint64          `json:"version"`
}

// GetCart returns the session's cart.
func (s *Storefront) GetCart(ctx context.Context, sessionID string) CartView {
	prices := s.prices(ctx)
	return cartView(s.sessions.GetOrCreate(sessionID), prices)
}

// AddToCart adds one unit of productID.
func (s *Storefront) AddToCart(ctx context.Context, sessionID string, productID int) (CartView, error) {
	return s.mutateCart(ctx, sessionID, productID, "add", func(c *store.Cart) { c.AddOne(productID) })
}

// RemoveOneFromCart removes one unit of productID; the line goes away at
// quantity 1. Products not in the cart are ignored.
func (s *Storefront) RemoveOneFromCart(ctx context.Context, sessionID string, productID int) (CartView, error) {
	return s.mutateCart(ctx, sessionID, productID, "remove_one", func(c *store.Cart) { c.RemoveOne(productID) })
}

// DeleteFromCart removes the whole line for productID.
func (s *Storefront) DeleteFromCart(ctx context.Context, sessionID string, productID int) (CartView, error) {
	return s.mutateCart(ctx, sessionID, productID, "delete", func(c *store.Cart) { c.Delete(productID) })
}

func (s *Storefront) mutateCart(ctx context.Context, sessionID string, productID int, action string, fn func(*store.Cart)) (CartView, error) {
	if err := validateProductID(productID); err != nil {
		return CartView{}, err
	}

	prices := s.prices(ctx)
	sess := s.sessions.GetOrCreate(sessionID)
	changes := sess.Update(func(c *store.Cart, _ *store.Wishlist) { fn(c) })
	view := cartView(sess, prices)

	s.log(ctx).InfoContext(ctx, "cart updated",
		slog.String("action", action),
		slog.Int("product_id", productID),
		slog.Bool("changed", len(changes) > 0),
		slog.Int("item_count", view.ItemCount),
	)
	s.publishCartChanges(ctx, sessionID, changes, view)
	return view, nil
}

func (s *Storefront) publishCartChanges(ctx context.Context, sessionID string, changes []store.Change, view CartView) {
	if s.events == nil {
		return
	}
	for _, c := range changes {
		if c.Store != store.CartStore {
			continue
		}
		if err := s.events.PublishCartUpdated(ctx, sessionID, c, view.ItemCount, view.Total); err != nil {
			s.log(ctx).ErrorContext(ctx, "failed to publish cart event",
				slog.String("op", string(c.Op)),
				slog.Int("product_id", c.ProductID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func cartView(sess *session.Session, prices *domain.Catalog) CartView {
	var view CartView
	view.Version = sess.Read(func(c *store.Cart, _ *store.Wishlist) {
		lines := c.Lines()
		view.Lines = make([]CartLineView, 0, len(lines))
		for _, l := range lines {
			lv := CartLineView{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Subtotal:  store.Subtotal(l, prices),
			}
			if p, ok := prices.Product(l.ProductID); ok {
				lv.Product = &p
			}
			view.Lines = append(view.Lines, lv)
		}
		view.ItemCount = c.ItemCount()
		view.Total = c.TotalCost(prices)
	})
	view.SessionID = sess.ID()
	return view
}

func validateProductID(id int) error {
	if id <= 0 {
		return apperrors.InvalidInput("product id must be a positive integer, got " + strconv.Itoa(id))
	}
	return nil
}
