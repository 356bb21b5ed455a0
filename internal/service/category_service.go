package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/repository"

	"github.com/google/uuid"
)

// CategoryService defines the category operations of the catalog
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Create(ctx context.Context, input domain.CategoryCreateInput) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, input domain.CategoryUpdateInput) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	now          func() time.Time
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		now:          time.Now,
	}
}

// List returns every category ordered by name
func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetByID returns the category with its products, or nil when it does not exist
func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	products, err := s.productRepo.FindMany(ctx, repository.ProductQuery{
		Where:   repository.ProductFilter{CategoryID: &id},
		OrderBy: repository.ByNameAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load category products: %w", err)
	}
	category.Products = products

	return category, nil
}

// Create persists a new category. Empty description and image are stored as null.
func (s *categoryService) Create(ctx context.Context, input domain.CategoryCreateInput) (*domain.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrNameRequired
	}

	now := s.now().UTC()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: emptyToNil(input.Description),
		Image:       emptyToNil(input.Image),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// Update merges the provided fields into an existing category
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, input domain.CategoryUpdateInput) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if name, ok := input.Name.Get(); ok && strings.TrimSpace(name) == "" {
		return nil, domain.ErrNameRequired
	}

	input.Apply(category)
	category.UpdatedAt = s.now().UTC()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// Delete removes a category that owns no products and returns it
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count category products: %w", err)
	}
	if count > 0 {
		return nil, domain.ErrCategoryHasProducts
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to delete category: %w", err)
	}

	return category, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
