package store

import (
	"context"
	"sync"

	"catalog-admin/internal/client"
	"catalog-admin/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductState is the product cache plus the locally filtered view
type ProductState struct {
	EntityState[domain.Product]
	FilteredItems []domain.Product
	FilterTerm    string
}

// ProductStore caches products fetched through the API
type ProductStore struct {
	api    ProductAPI
	logger *zap.Logger

	mu      sync.Mutex
	state   ProductState
	pending int
}

// NewProductStore creates an empty ProductStore
func NewProductStore(api ProductAPI, logger *zap.Logger) *ProductStore {
	return &ProductStore{
		api:    api,
		logger: logger,
		state: ProductState{
			EntityState:   EntityState[domain.Product]{Items: []domain.Product{}},
			FilteredItems: []domain.Product{},
		},
	}
}

// State returns a snapshot safe to read and modify
func (s *ProductStore) State() ProductState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ProductState{
		EntityState:   s.state.EntityState.clone(copyProduct),
		FilteredItems: cloneSlice(s.state.FilteredItems, copyProduct),
		FilterTerm:    s.state.FilterTerm,
	}
}

// FetchProducts replaces the cache with every product, inactive included
func (s *ProductStore) FetchProducts(ctx context.Context) {
	s.begin()
	products, err := s.api.ListProducts(ctx, client.ProductListParams{IncludeInactive: true})
	if err != nil {
		s.fail("fetch products", err)
		return
	}
	s.finish(func(st *ProductState) {
		st.Items = products
	})
}

// FetchProductsByCategory replaces the cache with the active products of a category
func (s *ProductStore) FetchProductsByCategory(ctx context.Context, categoryID uuid.UUID) {
	s.begin()
	products, err := s.api.ListProducts(ctx, client.ProductListParams{CategoryID: &categoryID})
	if err != nil {
		s.fail("fetch products by category", err)
		return
	}
	s.finish(func(st *ProductState) {
		st.Items = products
	})
}

// FetchProductByID selects a product. A product the server does not know
// clears the selection without recording an error.
func (s *ProductStore) FetchProductByID(ctx context.Context, id uuid.UUID) {
	s.begin()
	product, err := s.api.GetProduct(ctx, id)
	if err != nil && !client.IsNotFound(err) {
		s.fail("fetch product", err)
		return
	}
	s.finish(func(st *ProductState) {
		st.Selected = product
	})
}

// CreateProduct appends the created product to the cache
func (s *ProductStore) CreateProduct(ctx context.Context, input domain.ProductCreateInput) {
	s.begin()
	product, err := s.api.CreateProduct(ctx, input)
	if err != nil {
		s.fail("create product", err)
		return
	}
	s.finish(func(st *ProductState) {
		st.Items = append(st.Items, *product)
	})
}

// UpdateProduct replaces the cached product with the server's version
func (s *ProductStore) UpdateProduct(ctx context.Context, id uuid.UUID, input domain.ProductUpdateInput) {
	s.begin()
	product, err := s.api.UpdateProduct(ctx, id, input)
	if err != nil {
		s.fail("update product", err)
		return
	}
	s.finish(func(st *ProductState) {
		st.Items = replaceByID(st.Items, *product, productID)
		if st.Selected != nil && st.Selected.ID == id {
			updated := *product
			st.Selected = &updated
		}
	})
}

// DeleteProduct drops the product from the cache and the selection
func (s *ProductStore) DeleteProduct(ctx context.Context, id uuid.UUID) {
	s.begin()
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		s.fail("delete product", err)
		return
	}
	s.finish(func(st *ProductState) {
		st.Items = removeByID(st.Items, id, productID)
		if st.Selected != nil && st.Selected.ID == id {
			st.Selected = nil
		}
	})
}

// SetSelectedProduct selects a product, or clears the selection with nil
func (s *ProductStore) SetSelectedProduct(product *domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product == nil {
		s.state.Selected = nil
		return
	}
	selected := copyProduct(*product)
	s.state.Selected = &selected
}

// FilterProducts narrows the view to products whose name, description or
// category name contains term, ignoring case. The term stays active across
// later reconciliations until ResetFilters.
func (s *ProductStore) FilterProducts(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.FilterTerm = term
	s.refilterLocked()
}

// ResetFilters clears the term and shows every cached product
func (s *ProductStore) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.FilterTerm = ""
	s.refilterLocked()
}

func (s *ProductStore) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending++
	s.state.IsLoading = true
	s.state.Error = ""
}

func (s *ProductStore) finish(reconcile func(st *ProductState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reconcile(&s.state)
	if s.state.Items == nil {
		s.state.Items = []domain.Product{}
	}
	s.refilterLocked()
	s.doneLocked()
}

func (s *ProductStore) fail(action string, err error) {
	s.logger.Warn("Product store action failed", zap.String("action", action), zap.Error(err))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Error = err.Error()
	s.doneLocked()
}

func (s *ProductStore) doneLocked() {
	s.pending--
	s.state.IsLoading = s.pending > 0
}

func (s *ProductStore) refilterLocked() {
	if s.state.FilterTerm == "" {
		s.state.FilteredItems = cloneSlice(s.state.Items, copyProduct)
		return
	}

	filtered := []domain.Product{}
	for _, p := range s.state.Items {
		if matchesTerm(p, s.state.FilterTerm) {
			filtered = append(filtered, p)
		}
	}
	s.state.FilteredItems = filtered
}

func matchesTerm(p domain.Product, term string) bool {
	if domain.ContainsFold(p.Name, term) {
		return true
	}
	if p.Description != nil && domain.ContainsFold(*p.Description, term) {
		return true
	}
	return p.Category != nil && domain.ContainsFold(p.Category.Name, term)
}
