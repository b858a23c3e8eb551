// Package fakestore talks to a catalog API shaped like fakestoreapi.com.
package fakestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/DonatHalimi/OmniShop/pkg/errors"
	"github.com/DonatHalimi/OmniShop/pkg/httpclient"

	"github.com/DonatHalimi/OmniShop/internal/domain"
)

const maxBodyBytes = 8 << 20

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client implements catalog.Gateway over HTTP.
type Client struct {
	baseURL string
	http    HTTPDoer
	logger  *slog.Logger
}

// NewClient returns a client for the catalog at baseURL.
func NewClient(baseURL string, doer HTTPDoer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		logger:  logger,
	}
}

// ListProducts returns every product in catalog order.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if _, err := c.get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

// GetProduct returns one product. A 404 or an empty body means the product
// does not exist.
func (c *Client) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	var product *domain.Product
	found, err := c.get(ctx, "/products/"+strconv.Itoa(id), &product)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", strconv.Itoa(id))
		}
		return nil, err
	}
	if !found || product == nil {
		return nil, apperrors.NotFound("product", strconv.Itoa(id))
	}
	return product, nil
}

// ListByCategory returns the products of one category in catalog order.
func (c *Client) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var products []domain.Product
	if _, err := c.get(ctx, "/products/category/"+url.PathEscape(category), &products); err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

// ListCategories returns the category names.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if _, err := c.get(ctx, "/products/categories", &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// get decodes the JSON body of GET path into dst. found is false when the
// body was empty.
func (c *Client) get(ctx context.Context, path string, dst any) (found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		c.logger.ErrorContext(ctx, "catalog request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			return false, apperrors.Unavailable("catalog is temporarily unavailable, please retry later", err)
		}
		return false, apperrors.Unavailable("catalog is unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := httpclient.ParseResponseError(resp, "catalog")
		if resp.StatusCode >= 500 && !errors.Is(err, apperrors.ErrServiceUnavail) {
			return false, apperrors.Unavailable("catalog is unavailable", err)
		}
		return false, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return false, fmt.Errorf("read catalog response %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return false, fmt.Errorf("decode catalog response %s: %w", path, err)
	}
	return true, nil
}

func nonNil(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}
