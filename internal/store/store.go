// Package store keeps client-side copies of catalog entities and reconciles
// them with the results of API calls.
//
// Every action follows the same transitions: it marks the store loading and
// clears the error, calls the API without holding the lock, then either
// reconciles the cached collection or records the failure message. Actions
// never return errors; callers read State.
package store

import (
	"context"

	"catalog-admin/internal/client"
	"catalog-admin/internal/domain"

	"github.com/google/uuid"
)

// ProductAPI is the subset of the API client used by ProductStore
type ProductAPI interface {
	ListProducts(ctx context.Context, params client.ProductListParams) ([]domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, input domain.ProductCreateInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input domain.ProductUpdateInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CategoryAPI is the subset of the API client used by CategoryStore
type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateCategory(ctx context.Context, input domain.CategoryCreateInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input domain.CategoryUpdateInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

var (
	_ ProductAPI  = (*client.Client)(nil)
	_ CategoryAPI = (*client.Client)(nil)
)

// EntityState is the cached view of one entity collection
type EntityState[T any] struct {
	Items     []T
	Selected  *T
	IsLoading bool
	Error     string
}

// clone deep-copies the collection and the selection with copyItem so the
// result never aliases store internals
func (s EntityState[T]) clone(copyItem func(T) T) EntityState[T] {
	out := s
	out.Items = cloneSlice(s.Items, copyItem)
	if s.Selected != nil {
		selected := copyItem(*s.Selected)
		out.Selected = &selected
	}
	return out
}

func cloneSlice[T any](items []T, copyItem func(T) T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i := range items {
		out[i] = copyItem(items[i])
	}
	return out
}

// copyProduct copies a product together with everything it points to
func copyProduct(p domain.Product) domain.Product {
	p.Description = copyPtr(p.Description)
	p.Image = copyPtr(p.Image)
	if p.Category != nil {
		category := copyCategory(*p.Category)
		p.Category = &category
	}
	return p
}

// copyCategory copies a category together with its loaded products
func copyCategory(c domain.Category) domain.Category {
	c.Description = copyPtr(c.Description)
	c.Image = copyPtr(c.Image)
	if c.Products != nil {
		products := make([]*domain.Product, len(c.Products))
		for i, p := range c.Products {
			if p != nil {
				product := copyProduct(*p)
				products[i] = &product
			}
		}
		c.Products = products
	}
	return c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// replaceByID swaps the element with the same id, leaving the order alone
func replaceByID[T any](items []T, item T, idOf func(*T) uuid.UUID) []T {
	id := idOf(&item)
	for i := range items {
		if idOf(&items[i]) == id {
			items[i] = item
		}
	}
	return items
}

func removeByID[T any](items []T, id uuid.UUID, idOf func(*T) uuid.UUID) []T {
	out := items[:0]
	for i := range items {
		if idOf(&items[i]) != id {
			out = append(out, items[i])
		}
	}
	return out
}

func productID(p *domain.Product) uuid.UUID   { return p.ID }
func categoryID(c *domain.Category) uuid.UUID { return c.ID }
