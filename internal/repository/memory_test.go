package repository

import (
	"context"
	"testing"

	"catalog-admin/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"mouse":    "%mouse%",
		"":         "%%",
		"50%":      `%50\%%`,
		"a_b":      `%a\_b%`,
		`back\sla`: `%back\\sla%`,
	}
	for term, want := range tests {
		assert.Equal(t, want, containsPattern(term), "term %q", term)
	}
}

func TestMemoryStore_ReferentialRules(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	products := store.Products()
	categories := store.Categories()

	category := &domain.Category{ID: uuid.New(), Name: "Electronics"}
	require.NoError(t, categories.Create(ctx, category))
	assert.Error(t, categories.Create(ctx, category), "duplicate id")

	orphan := newProduct("Orphan", nil, "1", uuid.New(), true)
	assert.Error(t, products.Create(ctx, orphan), "unknown category")

	laptop := newProduct("Laptop", nil, "999", category.ID, true)
	require.NoError(t, products.Create(ctx, laptop))

	assert.Error(t, categories.Delete(ctx, category.ID), "restricted while referenced")

	moved := *laptop
	moved.CategoryID = uuid.New()
	assert.Error(t, products.Update(ctx, &moved), "unknown category on update")

	count, err := products.CountByCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, products.Delete(ctx, laptop.ID))
	assert.ErrorIs(t, products.Delete(ctx, laptop.ID), domain.ErrProductNotFound)
	require.NoError(t, categories.Delete(ctx, category.ID))
	assert.ErrorIs(t, categories.Delete(ctx, category.ID), domain.ErrCategoryNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	category := &domain.Category{ID: uuid.New(), Name: "Books"}
	require.NoError(t, store.Categories().Create(ctx, category))
	product := newProduct("Novel", strPtr("Long"), "10", category.ID, true)
	require.NoError(t, store.Products().Create(ctx, product))

	got, err := store.Products().FindByID(ctx, product.ID, true)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	got.Name = "Changed"
	got.Category.Name = "Changed"

	again, err := store.Products().FindByID(ctx, product.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Novel", again.Name)
	assert.Equal(t, "Books", again.Category.Name)

	without, err := store.Products().FindByID(ctx, product.ID, false)
	require.NoError(t, err)
	assert.Nil(t, without.Category)
}

func TestMemoryStore_FindManyOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	category := &domain.Category{ID: uuid.New(), Name: "Tools"}
	require.NoError(t, store.Categories().Create(ctx, category))

	for _, p := range []*domain.Product{
		newProduct("Saw", nil, "30", category.ID, true),
		newProduct("Hammer", nil, "12", category.ID, true),
		newProduct("Drill", nil, "80", category.ID, false),
	} {
		require.NoError(t, store.Products().Create(ctx, p))
	}

	active := true
	byName, err := store.Products().FindMany(ctx, ProductQuery{
		Where:   ProductFilter{IsActive: &active},
		OrderBy: ByNameAsc,
	})
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, "Hammer", byName[0].Name)
	assert.Equal(t, "Saw", byName[1].Name)
}

// Property: the in-memory filter agrees with Matches for every stored product
func TestProperty_MemoryFindManyUsesFilter(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("FindMany returns exactly the matching products", prop.ForAll(
		func(productNames []string, term string, onlyActive bool) bool {
			ctx := context.Background()
			store := NewMemoryStore()
			category := &domain.Category{ID: uuid.New(), Name: "C"}
			if err := store.Categories().Create(ctx, category); err != nil {
				return false
			}

			want := 0
			filter := ProductFilter{Search: &TextSearch{Term: term}}
			if onlyActive {
				active := true
				filter.IsActive = &active
			}
			for i, name := range productNames {
				p := newProduct(name, nil, "1", category.ID, i%2 == 0)
				if err := store.Products().Create(ctx, p); err != nil {
					return false
				}
				if filter.Matches(p) {
					want++
				}
			}

			got, err := store.Products().FindMany(ctx, ProductQuery{Where: filter})
			if err != nil {
				return false
			}
			for _, p := range got {
				if !filter.Matches(p) {
					return false
				}
			}
			return len(got) == want
		},
		gen.SliceOf(gen.RegexMatch(`[a-cA-C]{1,4}`)),
		gen.RegexMatch(`[a-cA-C]{0,2}`),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
