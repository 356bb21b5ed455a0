// Package client is a typed HTTP client for the catalog admin API. Requests
// are paced by a token bucket so a busy dashboard cannot flood the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"catalog-admin/internal/config"
	"catalog-admin/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the message sent by the server
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return e.Message
}

// Is lets callers classify responses with the domain error classes
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

// ProductListParams selects which listing GET /products returns
type ProductListParams struct {
	Search          string
	CategoryID      *uuid.UUID
	IncludeInactive bool
}

// Client talks to the catalog admin API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New creates a Client from configuration
func New(cfg config.ClientConfig, logger *zap.Logger) *Client {
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}
}

// ListProducts fetches products matching params
func (c *Client) ListProducts(ctx context.Context, params ProductListParams) ([]domain.Product, error) {
	q := url.Values{}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.CategoryID != nil {
		q.Set("categoryId", params.CategoryID.String())
	}
	if params.IncludeInactive {
		q.Set("includeInactive", "true")
	}

	path := "/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a product with its category
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct creates a product and returns the stored entity
func (c *Client) CreateProduct(ctx context.Context, input domain.ProductCreateInput) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodPost, "/products", input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct sends a partial update; absent fields are omitted from the body
func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, input domain.ProductUpdateInput) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodPatch, "/products/"+id.String(), input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id.String(), nil, nil)
}

// ListCategories fetches every category ordered by name
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory fetches a category with its products
func (c *Client) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories/"+id.String(), nil, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a category and returns the stored entity
func (c *Client) CreateCategory(ctx context.Context, input domain.CategoryCreateInput) (*domain.Category, error) {
	var category domain.Category
	if err := c.do(ctx, http.MethodPost, "/categories", input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory sends a partial update of a category
func (c *Client) UpdateCategory(ctx context.Context, id uuid.UUID, input domain.CategoryUpdateInput) (*domain.Category, error) {
	var category domain.Category
	if err := c.do(ctx, http.MethodPatch, "/categories/"+id.String(), input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category that owns no products
func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+id.String(), nil, nil)
}

// do sends one JSON request and decodes the answer into out when non-nil
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
