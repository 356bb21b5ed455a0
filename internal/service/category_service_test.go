package service

import (
	"context"
	"errors"
	"testing"

	"catalog-admin/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryList_OrderedByName(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.categorySvc.Create(ctx, domain.CategoryCreateInput{Name: "Books"})
	require.NoError(t, err)

	categories, err := f.categorySvc.List(ctx)
	require.NoError(t, err)

	var got []string
	for _, c := range categories {
		got = append(got, c.Name)
	}
	assert.Equal(t, []string{"Books", "Electronics", "Furniture"}, got)
}

func TestCategoryGetByID_IncludesAllProducts(t *testing.T) {
	f := newCatalogFixture(t)

	category, err := f.categorySvc.GetByID(context.Background(), f.electronics.ID)
	require.NoError(t, err)
	require.NotNil(t, category)

	// Inactive products still belong to the category
	assert.Equal(t, []string{
		"Apple Magic Mouse", "Gaming Laptop", "Laptop Pro", "Old Keyboard", "Wireless Mouse",
	}, names(category.Products))

	missing, err := f.categorySvc.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCategoryCreate(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.categorySvc.Create(ctx, domain.CategoryCreateInput{Name: ""})
	assert.ErrorIs(t, err, domain.ErrNameRequired)
	assert.ErrorIs(t, err, domain.ErrValidation)

	created, err := f.categorySvc.Create(ctx, domain.CategoryCreateInput{
		Name:        "Garden",
		Description: strPtr(""),
		Image:       strPtr("https://img.example/garden.png"),
	})
	require.NoError(t, err)
	assert.Nil(t, created.Description, "empty description is stored as null")
	require.NotNil(t, created.Image)
	assert.Equal(t, "https://img.example/garden.png", *created.Image)
}

func TestCategoryUpdate(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	withDescription, err := f.categorySvc.Update(ctx, f.furniture.ID, domain.CategoryUpdateInput{
		Description: domain.Value("Home and office"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Furniture", withDescription.Name)
	require.NotNil(t, withDescription.Description)
	assert.Equal(t, "Home and office", *withDescription.Description)

	cleared, err := f.categorySvc.Update(ctx, f.furniture.ID, domain.CategoryUpdateInput{
		Name:        domain.Some("Home"),
		Description: domain.Null[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, "Home", cleared.Name)
	assert.Nil(t, cleared.Description)

	_, err = f.categorySvc.Update(ctx, f.furniture.ID, domain.CategoryUpdateInput{Name: domain.Some(" ")})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	_, err = f.categorySvc.Update(ctx, uuid.New(), domain.CategoryUpdateInput{Name: domain.Some("x")})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	// Existence is checked before the payload
	_, err = f.categorySvc.Update(ctx, uuid.New(), domain.CategoryUpdateInput{Name: domain.Some("")})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryDelete_RestrictedWhileProductsExist(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.categorySvc.Delete(ctx, f.furniture.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryHasProducts)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stillThere, err := f.categorySvc.GetByID(ctx, f.furniture.ID)
	require.NoError(t, err)
	require.NotNil(t, stillThere)

	for _, name := range []string{"Office Chair", "Standing Desk"} {
		_, err := f.productSvc.Delete(ctx, f.byName[name].ID)
		require.NoError(t, err)
	}

	removed, err := f.categorySvc.Delete(ctx, f.furniture.ID)
	require.NoError(t, err)
	assert.Equal(t, f.furniture.ID, removed.ID)

	gone, err := f.categorySvc.GetByID(ctx, f.furniture.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = f.categorySvc.Delete(ctx, f.furniture.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

// Property: a category can be deleted exactly when it owns no products,
// active or inactive.
func TestProperty_CategoryDeleteRestrict(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("delete succeeds iff the category is empty", prop.ForAll(
		func(productCount int, inactive bool) bool {
			f := newCatalogFixture(t)
			ctx := context.Background()

			category, err := f.categorySvc.Create(ctx, domain.CategoryCreateInput{Name: "Scratch"})
			if err != nil {
				return false
			}
			for i := 0; i < productCount; i++ {
				active := !inactive
				if _, err := f.productSvc.Create(ctx, domain.ProductCreateInput{
					Name:       "Item",
					Price:      f.byName["Laptop Pro"].Price,
					IsActive:   &active,
					CategoryID: category.ID,
				}); err != nil {
					return false
				}
			}

			_, err = f.categorySvc.Delete(ctx, category.ID)
			if productCount == 0 {
				return err == nil
			}
			return errors.Is(err, domain.ErrCategoryHasProducts)
		},
		gen.IntRange(0, 3),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
