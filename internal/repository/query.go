package repository

import (
	"context"
	"strings"

	"catalog-admin/internal/domain"

	"github.com/google/uuid"
)

// ProductFilter is the predicate of a product query. Every non-nil field is
// ANDed into the WHERE clause; a nil field is absent from it entirely.
type ProductFilter struct {
	IsActive   *bool
	CategoryID *uuid.UUID
	Search     *TextSearch
}

// TextSearch matches products whose name OR description contains Term,
// ignoring case. Term is a literal substring, not a pattern.
type TextSearch struct {
	Term string
}

// ProductQuery describes a find-many request against the product store
type ProductQuery struct {
	Where           ProductFilter
	IncludeCategory bool
	OrderBy         []string // ascending sort fields
}

// ByNameAsc is the ordering used by every product and category listing
var ByNameAsc = []string{"name"}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID, includeCategory bool) (*domain.Product, error)
	FindMany(ctx context.Context, query ProductQuery) ([]*domain.Product, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

// Matches evaluates the filter against a single product in memory
func (f ProductFilter) Matches(p *domain.Product) bool {
	if f.IsActive != nil && p.IsActive != *f.IsActive {
		return false
	}
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.Search != nil {
		inName := domain.ContainsFold(p.Name, f.Search.Term)
		inDescription := p.Description != nil && domain.ContainsFold(*p.Description, f.Search.Term)
		if !inName && !inDescription {
			return false
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a literal term into an ILIKE substring pattern
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
