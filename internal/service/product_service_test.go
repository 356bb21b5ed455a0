package service

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingProductRepo records every FindMany query before delegating
type recordingProductRepo struct {
	repository.ProductRepository
	queries []repository.ProductQuery
}

func (r *recordingProductRepo) FindMany(ctx context.Context, q repository.ProductQuery) ([]*domain.Product, error) {
	r.queries = append(r.queries, q)
	return r.ProductRepository.FindMany(ctx, q)
}

func (r *recordingProductRepo) lastQuery(t *testing.T) repository.ProductQuery {
	t.Helper()
	require.NotEmpty(t, r.queries, "no query was issued")
	return r.queries[len(r.queries)-1]
}

// failingProductRepo fails every call, standing in for a broken gateway
type failingProductRepo struct {
	repository.ProductRepository
}

var errGatewayDown = errors.New("connection refused")

func (failingProductRepo) FindMany(context.Context, repository.ProductQuery) ([]*domain.Product, error) {
	return nil, errGatewayDown
}

func (failingProductRepo) FindByID(context.Context, uuid.UUID, bool) (*domain.Product, error) {
	return nil, errGatewayDown
}

type catalogFixture struct {
	store       *repository.MemoryStore
	products    *recordingProductRepo
	productSvc  ProductService
	categorySvc CategoryService
	electronics *domain.Category
	furniture   *domain.Category
	byName      map[string]*domain.Product
}

func strPtr(s string) *string { return &s }

// newCatalogFixture seeds two categories and seven products, one inactive
func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	recorder := &recordingProductRepo{ProductRepository: store.Products()}
	f := &catalogFixture{
		store:       store,
		products:    recorder,
		productSvc:  NewProductService(recorder, store.Categories()),
		categorySvc: NewCategoryService(store.Categories(), recorder),
		byName:      make(map[string]*domain.Product),
	}

	var err error
	f.electronics, err = f.categorySvc.Create(ctx, domain.CategoryCreateInput{Name: "Electronics"})
	require.NoError(t, err)
	f.furniture, err = f.categorySvc.Create(ctx, domain.CategoryCreateInput{Name: "Furniture"})
	require.NoError(t, err)

	seed := []struct {
		name, description string
		price             string
		category          *domain.Category
		active            bool
		stock             int
	}{
		{"Laptop Pro", "High-performance laptop", "1200", f.electronics, true, 10},
		{"Wireless Mouse", "Ergonomic wireless mouse", "25", f.electronics, true, 100},
		{"Office Chair", "Comfortable office chair", "150", f.furniture, true, 20},
		{"Gaming Laptop", "Laptop for gaming enthusiasts", "1800", f.electronics, true, 5},
		{"Old Keyboard", "A very old keyboard (inactive) for a laptop", "5", f.electronics, false, 1},
		{"Standing Desk", "Adjustable standing desk", "300", f.furniture, true, 15},
		{"Apple Magic Mouse", "Sleek Apple mouse", "79", f.electronics, true, 50},
	}
	for _, s := range seed {
		active := s.active
		stock := s.stock
		p, err := f.productSvc.Create(ctx, domain.ProductCreateInput{
			Name:        s.name,
			Description: strPtr(s.description),
			Price:       decimal.RequireFromString(s.price),
			Stock:       &stock,
			IsActive:    &active,
			CategoryID:  s.category.ID,
		})
		require.NoError(t, err)
		f.byName[s.name] = p
	}

	return f
}

func names(products []*domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestSearch_QueryComposition(t *testing.T) {
	f := newCatalogFixture(t)
	active := true
	catID := f.electronics.ID

	tests := []struct {
		name       string
		term       *string
		categoryID *uuid.UUID
		want       repository.ProductFilter
	}{
		{
			name: "no filters",
			want: repository.ProductFilter{IsActive: &active},
		},
		{
			name: "empty term is structurally absent",
			term: strPtr(""),
			want: repository.ProductFilter{IsActive: &active},
		},
		{
			name: "term only",
			term: strPtr("laptop"),
			want: repository.ProductFilter{IsActive: &active, Search: &repository.TextSearch{Term: "laptop"}},
		},
		{
			name:       "category only",
			categoryID: &catID,
			want:       repository.ProductFilter{IsActive: &active, CategoryID: &catID},
		},
		{
			name:       "category and term",
			term:       strPtr("mouse"),
			categoryID: &catID,
			want: repository.ProductFilter{
				IsActive:   &active,
				CategoryID: &catID,
				Search:     &repository.TextSearch{Term: "mouse"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.productSvc.Search(context.Background(), tt.term, tt.categoryID)
			require.NoError(t, err)

			q := f.products.lastQuery(t)
			assert.Equal(t, tt.want, q.Where)
			assert.True(t, q.IncludeCategory)
			assert.Equal(t, repository.ByNameAsc, q.OrderBy)
		})
	}
}

func TestSearch_ByNameIsCaseInsensitiveAndOrdered(t *testing.T) {
	f := newCatalogFixture(t)

	results, err := f.productSvc.Search(context.Background(), strPtr("laptop"), nil)
	require.NoError(t, err)

	// "Old Keyboard" mentions a laptop in its description but is inactive
	assert.Equal(t, []string{"Gaming Laptop", "Laptop Pro"}, names(results))
	for _, p := range results {
		assert.True(t, p.IsActive)
		require.NotNil(t, p.Category)
		assert.Equal(t, "Electronics", p.Category.Name)
	}
}

func TestSearch_ByDescription(t *testing.T) {
	f := newCatalogFixture(t)

	results, err := f.productSvc.Search(context.Background(), strPtr("ERGONOMIC"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wireless Mouse"}, names(results))
}

func TestSearch_NoFiltersReturnsAllActiveByName(t *testing.T) {
	f := newCatalogFixture(t)

	for _, term := range []*string{nil, strPtr("")} {
		results, err := f.productSvc.Search(context.Background(), term, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Apple Magic Mouse", "Gaming Laptop", "Laptop Pro", "Office Chair", "Standing Desk", "Wireless Mouse",
		}, names(results))
	}
}

func TestSearch_CategoryOnly(t *testing.T) {
	f := newCatalogFixture(t)

	results, err := f.productSvc.Search(context.Background(), nil, &f.furniture.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Office Chair", "Standing Desk"}, names(results))

	unknown := uuid.New()
	results, err = f.productSvc.Search(context.Background(), nil, &unknown)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_CategoryAndTerm(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	// A mouse in another category must not leak into the results
	_, err := f.productSvc.Create(ctx, domain.ProductCreateInput{
		Name:       "Mouse Pad Desk",
		Price:      decimal.NewFromInt(12),
		CategoryID: f.furniture.ID,
	})
	require.NoError(t, err)

	results, err := f.productSvc.Search(ctx, strPtr("mouse"), &f.electronics.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple Magic Mouse", "Wireless Mouse"}, names(results))
}

func TestSearch_TermIsLiteral(t *testing.T) {
	f := newCatalogFixture(t)

	results, err := f.productSvc.Search(context.Background(), strPtr("%"), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_InactiveExcludedButRetrievableByID(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	inactive := f.byName["Old Keyboard"]

	for _, term := range []string{"keyboard", "old", "inactive", ""} {
		results, err := f.productSvc.Search(ctx, strPtr(term), nil)
		require.NoError(t, err)
		assert.NotContains(t, names(results), "Old Keyboard", "term %q", term)
	}

	byCategory, err := f.productSvc.ListByCategory(ctx, f.electronics.ID)
	require.NoError(t, err)
	assert.NotContains(t, names(byCategory), "Old Keyboard")

	got, err := f.productSvc.GetByID(ctx, inactive.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive)
	require.NotNil(t, got.Category)
	assert.Equal(t, f.electronics.ID, got.Category.ID)
}

func TestList_IncludesInactive(t *testing.T) {
	f := newCatalogFixture(t)

	all, err := f.productSvc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Contains(t, names(all), "Old Keyboard")
	assert.True(t, sort.StringsAreSorted(names(all)))
}

func TestGetByID_MissingIsNotAnError(t *testing.T) {
	f := newCatalogFixture(t)

	got, err := f.productSvc.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearch_GatewayFailureIsWrapped(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewProductService(failingProductRepo{store.Products()}, store.Categories())

	_, err := svc.Search(context.Background(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errGatewayDown)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errGatewayDown)
}

func TestCreate_PriceValidation(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	for _, price := range []string{"0", "-5"} {
		_, err := f.productSvc.Create(ctx, domain.ProductCreateInput{
			Name:       "Cable",
			Price:      decimal.RequireFromString(price),
			CategoryID: f.electronics.ID,
		})
		assert.ErrorIs(t, err, domain.ErrValidation, "price %s", price)
		assert.ErrorIs(t, err, domain.ErrInvalidPrice, "price %s", price)
	}

	p, err := f.productSvc.Create(ctx, domain.ProductCreateInput{
		Name:       "Cable",
		Price:      decimal.RequireFromString("0.01"),
		CategoryID: f.electronics.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.True(t, p.IsActive)
	assert.Equal(t, 0, p.Sold)
	assert.Nil(t, p.Description)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Electronics", p.Category.Name)
}

func TestCreate_PriceScale(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	for _, price := range []string{"0.004", "1.005", "19.999"} {
		_, err := f.productSvc.Create(ctx, domain.ProductCreateInput{
			Name:       "Cable",
			Price:      decimal.RequireFromString(price),
			CategoryID: f.electronics.ID,
		})
		assert.ErrorIs(t, err, domain.ErrPricePrecision, "price %s", price)
		assert.ErrorIs(t, err, domain.ErrValidation, "price %s", price)
	}

	p, err := f.productSvc.Create(ctx, domain.ProductCreateInput{
		Name:       "Cable",
		Price:      decimal.RequireFromString("1.500"),
		CategoryID: f.electronics.ID,
	})
	require.NoError(t, err, "trailing zeros stay within scale")
	assert.True(t, p.Price.Equal(decimal.RequireFromString("1.5")))
}

func TestCreate_RequiresExistingCategoryAndName(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.productSvc.Create(ctx, domain.ProductCreateInput{
		Name:       "Orphan",
		Price:      decimal.NewFromInt(1),
		CategoryID: uuid.New(),
	})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.productSvc.Create(ctx, domain.ProductCreateInput{
		Name:       "  ",
		Price:      decimal.NewFromInt(1),
		CategoryID: f.electronics.ID,
	})
	assert.ErrorIs(t, err, domain.ErrNameRequired)
}

func TestUpdate_PartialMerge(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	original := f.byName["Office Chair"]

	updated, err := f.productSvc.Update(ctx, original.ID, domain.ProductUpdateInput{
		Description: domain.Null[string](),
		Stock:       domain.Some(3),
		CategoryID:  domain.Some(f.electronics.ID),
	})
	require.NoError(t, err)

	assert.Equal(t, "Office Chair", updated.Name, "absent name is unchanged")
	assert.True(t, updated.Price.Equal(original.Price), "absent price is unchanged")
	assert.Nil(t, updated.Description, "explicit null clears")
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, f.electronics.ID, updated.CategoryID)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "Electronics", updated.Category.Name)
	assert.False(t, updated.UpdatedAt.Before(original.UpdatedAt))
}

func TestUpdate_Failures(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	chair := f.byName["Office Chair"]

	_, err := f.productSvc.Update(ctx, uuid.New(), domain.ProductUpdateInput{Name: domain.Some("x")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.productSvc.Update(ctx, chair.ID, domain.ProductUpdateInput{CategoryID: domain.Some(uuid.New())})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = f.productSvc.Update(ctx, chair.ID, domain.ProductUpdateInput{Price: domain.Some(decimal.Zero)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.productSvc.Update(ctx, chair.ID, domain.ProductUpdateInput{Sold: domain.Some(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidSold)

	_, err = f.productSvc.Update(ctx, chair.ID, domain.ProductUpdateInput{Price: domain.Some(decimal.RequireFromString("1.005"))})
	assert.ErrorIs(t, err, domain.ErrPricePrecision)

	_, err = f.productSvc.Update(ctx, chair.ID, domain.ProductUpdateInput{Name: domain.Some("   ")})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	got, err := f.productSvc.GetByID(ctx, chair.ID)
	require.NoError(t, err)
	assert.Equal(t, chair.CategoryID, got.CategoryID, "failed updates leave the product untouched")
	assert.True(t, got.Price.Equal(chair.Price))
}

func TestDelete_Product(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	desk := f.byName["Standing Desk"]

	removed, err := f.productSvc.Delete(ctx, desk.ID)
	require.NoError(t, err)
	assert.Equal(t, desk.ID, removed.ID)

	got, err := f.productSvc.GetByID(ctx, desk.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = f.productSvc.Delete(ctx, desk.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// Property: search results are exactly the active products whose name or
// description contains the term (ignoring case), ordered by name.
func TestProperty_SearchMatchesReferenceFilter(t *testing.T) {
	properties := gopter.NewProperties(nil)

	type seed struct {
		Name        string
		Description string
		Active      bool
		InFirst     bool
	}

	seedGen := gen.Struct(
		reflect.TypeOf(seed{}),
		map[string]gopter.Gen{
			"Name":        gen.RegexMatch(`[A-Za-z]{1,3} [a-z]{1,3}`),
			"Description": gen.RegexMatch(`[a-zA-Z ]{0,8}`),
			"Active":      gen.Bool(),
			"InFirst":     gen.Bool(),
		},
	)

	properties.Property("search agrees with an in-test reference filter", prop.ForAll(
		func(seeds []seed, term string, scoped bool) bool {
			ctx := context.Background()
			store := repository.NewMemoryStore()
			categories := NewCategoryService(store.Categories(), store.Products())
			products := NewProductService(store.Products(), store.Categories())

			first, err := categories.Create(ctx, domain.CategoryCreateInput{Name: "First"})
			if err != nil {
				return false
			}
			second, err := categories.Create(ctx, domain.CategoryCreateInput{Name: "Second"})
			if err != nil {
				return false
			}

			var want []string
			for _, s := range seeds {
				active := s.Active
				category := second
				if s.InFirst {
					category = first
				}
				if _, err := products.Create(ctx, domain.ProductCreateInput{
					Name:        s.Name,
					Description: strPtr(s.Description),
					Price:       decimal.NewFromInt(1),
					IsActive:    &active,
					CategoryID:  category.ID,
				}); err != nil {
					return false
				}

				if !s.Active || (scoped && !s.InFirst) {
					continue
				}
				lt := strings.ToLower(term)
				if term == "" || strings.Contains(strings.ToLower(s.Name), lt) || strings.Contains(strings.ToLower(s.Description), lt) {
					want = append(want, s.Name)
				}
			}
			sort.Strings(want)

			var categoryID *uuid.UUID
			if scoped {
				categoryID = &first.ID
			}
			results, err := products.Search(ctx, &term, categoryID)
			if err != nil {
				return false
			}

			got := names(results)
			if len(got) != len(want) {
				t.Logf("FAIL: term %q: got %v, want %v", term, got, want)
				return false
			}
			for i := range got {
				if got[i] != want[i] {
					t.Logf("FAIL: term %q: got %v, want %v", term, got, want)
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, seedGen),
		gen.RegexMatch(`[a-zA-Z]{0,2}`),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreate_TimestampsAreSet(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.byName["Laptop Pro"]

	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.WithinDuration(t, time.Now().UTC(), p.CreatedAt, time.Minute)
}
