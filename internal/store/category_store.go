package store

import (
	"context"
	"sync"

	"catalog-admin/internal/client"
	"catalog-admin/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryState is the cached category collection
type CategoryState = EntityState[domain.Category]

// CategoryStore caches categories fetched through the API
type CategoryStore struct {
	api    CategoryAPI
	logger *zap.Logger

	mu      sync.Mutex
	state   CategoryState
	pending int
}

// NewCategoryStore creates an empty CategoryStore
func NewCategoryStore(api CategoryAPI, logger *zap.Logger) *CategoryStore {
	return &CategoryStore{
		api:    api,
		logger: logger,
		state:  CategoryState{Items: []domain.Category{}},
	}
}

// State returns a snapshot safe to read and modify
func (s *CategoryStore) State() CategoryState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone(copyCategory)
}

// FetchCategories replaces the cache with every category
func (s *CategoryStore) FetchCategories(ctx context.Context) {
	s.begin()
	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		s.fail("fetch categories", err)
		return
	}
	s.finish(func(st *CategoryState) {
		st.Items = categories
	})
}

// FetchCategoryByID selects a category with its products. An unknown id
// clears the selection without recording an error.
func (s *CategoryStore) FetchCategoryByID(ctx context.Context, id uuid.UUID) {
	s.begin()
	category, err := s.api.GetCategory(ctx, id)
	if err != nil && !client.IsNotFound(err) {
		s.fail("fetch category", err)
		return
	}
	s.finish(func(st *CategoryState) {
		st.Selected = category
	})
}

// CreateCategory appends the created category to the cache
func (s *CategoryStore) CreateCategory(ctx context.Context, input domain.CategoryCreateInput) {
	s.begin()
	category, err := s.api.CreateCategory(ctx, input)
	if err != nil {
		s.fail("create category", err)
		return
	}
	s.finish(func(st *CategoryState) {
		st.Items = append(st.Items, *category)
	})
}

// UpdateCategory replaces the cached category with the server's version
func (s *CategoryStore) UpdateCategory(ctx context.Context, id uuid.UUID, input domain.CategoryUpdateInput) {
	s.begin()
	category, err := s.api.UpdateCategory(ctx, id, input)
	if err != nil {
		s.fail("update category", err)
		return
	}
	s.finish(func(st *CategoryState) {
		st.Items = replaceByID(st.Items, *category, categoryID)
		if st.Selected != nil && st.Selected.ID == id {
			updated := *category
			// PATCH answers without the product list; keep the one already loaded.
			if updated.Products == nil {
				updated.Products = st.Selected.Products
			}
			st.Selected = &updated
		}
	})
}

// DeleteCategory drops the category from the cache and the selection
func (s *CategoryStore) DeleteCategory(ctx context.Context, id uuid.UUID) {
	s.begin()
	if err := s.api.DeleteCategory(ctx, id); err != nil {
		s.fail("delete category", err)
		return
	}
	s.finish(func(st *CategoryState) {
		st.Items = removeByID(st.Items, id, categoryID)
		if st.Selected != nil && st.Selected.ID == id {
			st.Selected = nil
		}
	})
}

// SetSelectedCategory selects a category, or clears the selection with nil
func (s *CategoryStore) SetSelectedCategory(category *domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == nil {
		s.state.Selected = nil
		return
	}
	selected := copyCategory(*category)
	s.state.Selected = &selected
}

func (s *CategoryStore) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending++
	s.state.IsLoading = true
	s.state.Error = ""
}

func (s *CategoryStore) finish(reconcile func(st *CategoryState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reconcile(&s.state)
	if s.state.Items == nil {
		s.state.Items = []domain.Category{}
	}
	s.doneLocked()
}

func (s *CategoryStore) fail(action string, err error) {
	s.logger.Warn("Category store action failed", zap.String("action", action), zap.Error(err))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Error = err.Error()
	s.doneLocked()
}

func (s *CategoryStore) doneLocked() {
	s.pending--
	s.state.IsLoading = s.pending > 0
}
