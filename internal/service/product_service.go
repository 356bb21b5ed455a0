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

// ProductService defines the product operations of the catalog
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Search(ctx context.Context, term *string, categoryID *uuid.UUID) ([]*domain.Product, error)
	Create(ctx context.Context, input domain.ProductCreateInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input domain.ProductUpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// List returns every product, active or not, with its category
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.FindMany(ctx, repository.ProductQuery{
		IncludeCategory: true,
		OrderBy:         repository.ByNameAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListByCategory returns the active products of a category
func (s *productService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	active := true
	products, err := s.productRepo.FindMany(ctx, repository.ProductQuery{
		Where: repository.ProductFilter{
			IsActive:   &active,
			CategoryID: &categoryID,
		},
		IncludeCategory: true,
		OrderBy:         repository.ByNameAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products for category %s: %w", categoryID, err)
	}
	return products, nil
}

// GetByID returns the product with its category, or nil when it does not exist.
// Inactive products are returned too.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Search returns active products, optionally scoped to a category and
// narrowed by a case-insensitive term matched against name or description.
func (s *productService) Search(ctx context.Context, term *string, categoryID *uuid.UUID) ([]*domain.Product, error) {
	products, err := s.productRepo.FindMany(ctx, searchQuery(term, categoryID))
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// searchQuery composes isActive AND [categoryId = ?] AND [(name ~ term OR description ~ term)].
// An absent or empty term leaves the text clause out of the filter entirely.
func searchQuery(term *string, categoryID *uuid.UUID) repository.ProductQuery {
	active := true
	filter := repository.ProductFilter{IsActive: &active}

	if categoryID != nil {
		id := *categoryID
		filter.CategoryID = &id
	}

	if term != nil && *term != "" {
		filter.Search = &repository.TextSearch{Term: *term}
	}

	return repository.ProductQuery{
		Where:           filter,
		IncludeCategory: true,
		OrderBy:         repository.ByNameAsc,
	}
}

// Create validates the input, checks the category exists and persists the product
func (s *productService) Create(ctx context.Context, input domain.ProductCreateInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrNameRequired
	}
	if err := domain.ValidatePrice(input.Price); err != nil {
		return nil, err
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	category, err := s.categoryRepo.FindByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	now := s.now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: emptyToNil(input.Description),
		Price:       input.Price,
		Image:       emptyToNil(input.Image),
		Stock:       stock,
		IsActive:    isActive,
		CategoryID:  category.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	product.Category = category
	return product, nil
}

// Update merges the provided fields into an existing product
func (s *productService) Update(ctx context.Context, id uuid.UUID, input domain.ProductUpdateInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if categoryID, ok := input.CategoryID.Get(); ok {
		if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	input.Apply(product)
	product.UpdatedAt = s.now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.productRepo.FindByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}

	return updated, nil
}

// Delete removes a product and returns it
func (s *productService) Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return product, nil
}
