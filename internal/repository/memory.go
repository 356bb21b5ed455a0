package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"catalog-admin/internal/domain"

	"github.com/google/uuid"
)

var (
	errMemoryDuplicateID   = errors.New("duplicate primary key")
	errMemoryForeignKey    = errors.New("foreign key violation")
	errMemoryRestrictedRef = errors.New("category is still referenced by products")
)

// MemoryStore is an in-process gateway holding categories and products in
// maps. It enforces the same keys and references as the SQL schema.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]domain.Category
	products   map[uuid.UUID]domain.Product
}

// NewMemoryStore creates an empty in-memory gateway
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[uuid.UUID]domain.Category),
		products:   make(map[uuid.UUID]domain.Product),
	}
}

// Products returns the product side of the store
func (m *MemoryStore) Products() ProductRepository { return memoryProducts{m} }

// Categories returns the category side of the store
func (m *MemoryStore) Categories() CategoryRepository { return memoryCategories{m} }

type memoryProducts struct{ m *MemoryStore }

func (r memoryProducts) Create(ctx context.Context, product *domain.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, exists := r.m.products[product.ID]; exists {
		return fmt.Errorf("failed to create product: %w", errMemoryDuplicateID)
	}
	if _, exists := r.m.categories[product.CategoryID]; !exists {
		return fmt.Errorf("failed to create product: %w", errMemoryForeignKey)
	}

	stored := *product
	stored.Category = nil
	r.m.products[product.ID] = stored
	return nil
}

func (r memoryProducts) Update(ctx context.Context, product *domain.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	existing, exists := r.m.products[product.ID]
	if !exists {
		return domain.ErrProductNotFound
	}
	if _, ok := r.m.categories[product.CategoryID]; !ok {
		return fmt.Errorf("failed to update product: %w", errMemoryForeignKey)
	}

	stored := *product
	stored.Category = nil
	stored.CreatedAt = existing.CreatedAt
	r.m.products[product.ID] = stored
	return nil
}

func (r memoryProducts) Delete(ctx context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, exists := r.m.products[id]; !exists {
		return domain.ErrProductNotFound
	}
	delete(r.m.products, id)
	return nil
}

func (r memoryProducts) FindByID(ctx context.Context, id uuid.UUID, includeCategory bool) (*domain.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	stored, exists := r.m.products[id]
	if !exists {
		return nil, domain.ErrProductNotFound
	}
	return r.m.productLocked(stored, includeCategory), nil
}

func (r memoryProducts) FindMany(ctx context.Context, q ProductQuery) ([]*domain.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	products := []*domain.Product{}
	for _, stored := range r.m.products {
		if q.Where.Matches(&stored) {
			products = append(products, r.m.productLocked(stored, q.IncludeCategory))
		}
	}

	sortProducts(products, q.OrderBy)
	return products, nil
}

func (r memoryProducts) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	return r.m.countByCategoryLocked(categoryID), nil
}

type memoryCategories struct{ m *MemoryStore }

func (r memoryCategories) Create(ctx context.Context, category *domain.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, exists := r.m.categories[category.ID]; exists {
		return fmt.Errorf("failed to create category: %w", errMemoryDuplicateID)
	}

	stored := *category
	stored.Products = nil
	r.m.categories[category.ID] = stored
	return nil
}

func (r memoryCategories) Update(ctx context.Context, category *domain.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	existing, exists := r.m.categories[category.ID]
	if !exists {
		return domain.ErrCategoryNotFound
	}

	stored := *category
	stored.Products = nil
	stored.CreatedAt = existing.CreatedAt
	r.m.categories[category.ID] = stored
	return nil
}

func (r memoryCategories) Delete(ctx context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, exists := r.m.categories[id]; !exists {
		return domain.ErrCategoryNotFound
	}
	if r.m.countByCategoryLocked(id) > 0 {
		return fmt.Errorf("failed to delete category: %w", errMemoryRestrictedRef)
	}
	delete(r.m.categories, id)
	return nil
}

func (r memoryCategories) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	stored, exists := r.m.categories[id]
	if !exists {
		return nil, domain.ErrCategoryNotFound
	}
	return &stored, nil
}

func (r memoryCategories) List(ctx context.Context) ([]*domain.Category, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	categories := make([]*domain.Category, 0, len(r.m.categories))
	for _, stored := range r.m.categories {
		c := stored
		categories = append(categories, &c)
	}

	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].ID.String() < categories[j].ID.String()
	})
	return categories, nil
}

func (m *MemoryStore) productLocked(stored domain.Product, includeCategory bool) *domain.Product {
	p := stored
	p.Category = nil
	if includeCategory {
		if c, ok := m.categories[p.CategoryID]; ok {
			p.Category = &c
		}
	}
	return &p
}

func (m *MemoryStore) countByCategoryLocked(categoryID uuid.UUID) int {
	count := 0
	for _, p := range m.products {
		if p.CategoryID == categoryID {
			count++
		}
	}
	return count
}

func sortProducts(products []*domain.Product, orderBy []string) {
	if len(orderBy) == 0 {
		return
	}
	sort.SliceStable(products, func(i, j int) bool {
		for _, field := range orderBy {
			if c := compareProducts(products[i], products[j], field); c != 0 {
				return c < 0
			}
		}
		return products[i].ID.String() < products[j].ID.String()
	})
}

func compareProducts(a, b *domain.Product, field string) int {
	if field == "name" {
		return strings.Compare(a.Name, b.Name)
	}
	return 0
}
