package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog-admin/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var productColumns = []string{
	"p.id", "p.name", "p.description", "p.price", "p.image", "p.stock", "p.sold",
	"p.is_active", "p.created_at", "p.updated_at", "p.category_id",
}

var categoryColumns = []string{
	"c.id", "c.name", "c.description", "c.image", "c.created_at", "c.updated_at",
}

// sortable maps sort fields to columns to prevent SQL injection
var sortable = map[string]string{
	"name": "p.name",
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a PostgreSQL backed ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, image, stock, sold, is_active, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Image,
		product.Stock,
		product.Sold,
		product.IsActive,
		product.CategoryID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites every column of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, image = $5, stock = $6,
		    sold = $7, is_active = $8, category_id = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Image,
		product.Stock,
		product.Sold,
		product.IsActive,
		product.CategoryID,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID, optionally joining its category
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID, includeCategory bool) (*domain.Product, error) {
	sb := selectProducts(includeCategory).Where(sq.Eq{"p.id": id.String()})

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build product query: %w", err)
	}

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, args...).Scan, includeCategory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindMany runs a filtered, ordered product query
func (r *productRepository) FindMany(ctx context.Context, q ProductQuery) ([]*domain.Product, error) {
	query, args, err := BuildProductQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build product query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows.Scan, q.IncludeCategory)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// CountByCategory returns how many products reference the category
func (r *productRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// BuildProductQuery renders a ProductQuery as a SELECT statement
func BuildProductQuery(q ProductQuery) sq.SelectBuilder {
	sb := selectProducts(q.IncludeCategory)

	if pred := wherePredicate(q.Where); len(pred) > 0 {
		sb = sb.Where(pred)
	}

	orderBy := make([]string, 0, len(q.OrderBy)+1)
	for _, field := range q.OrderBy {
		if column, ok := sortable[field]; ok {
			orderBy = append(orderBy, column+" ASC")
		}
	}
	if len(orderBy) > 0 {
		// Tie-break on the primary key so equal names keep a stable order.
		orderBy = append(orderBy, "p.id ASC")
		sb = sb.OrderBy(orderBy...)
	}

	return sb
}

func selectProducts(includeCategory bool) sq.SelectBuilder {
	sb := psql.Select(productColumns...).From("products p")
	if includeCategory {
		sb = sb.Columns(categoryColumns...).Join("categories c ON c.id = p.category_id")
	}
	return sb
}

// wherePredicate translates the filter into squirrel expressions. UUIDs are
// passed as strings because squirrel expands array values into IN lists.
func wherePredicate(f ProductFilter) sq.And {
	pred := sq.And{}

	if f.IsActive != nil {
		pred = append(pred, sq.Eq{"p.is_active": *f.IsActive})
	}

	if f.CategoryID != nil {
		pred = append(pred, sq.Eq{"p.category_id": f.CategoryID.String()})
	}

	if f.Search != nil {
		pattern := containsPattern(f.Search.Term)
		pred = append(pred, sq.Or{
			sq.ILike{"p.name": pattern},
			sq.ILike{"p.description": pattern},
		})
	}

	return pred
}

func scanProduct(scan func(dest ...any) error, includeCategory bool) (*domain.Product, error) {
	product := &domain.Product{}
	dest := []any{
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Image,
		&product.Stock,
		&product.Sold,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.CategoryID,
	}

	var category *domain.Category
	if includeCategory {
		category = &domain.Category{}
		dest = append(dest,
			&category.ID,
			&category.Name,
			&category.Description,
			&category.Image,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
	}

	if err := scan(dest...); err != nil {
		return nil, err
	}

	product.Category = category
	return product, nil
}
