package repository

import (
	"context"
	"testing"

	"food-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Feature: food-catalog, Property 9: Category names are unique ignoring case
func TestProperty_CategoryNamesUniqueIgnoringCase(t *testing.T) {
	resetTables(t)
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)
	properties.Property("a category whose name differs only in case is rejected", prop.ForAll(
		func(name string) bool {
			name = name + uuid.NewString()[:8]
			first := &domain.Category{ID: uuid.New(), Name: name, IsActive: true}
			if err := repo.Create(ctx, first); err != nil {
				t.Logf("FAIL: create: %v", err)
				return false
			}

			exists, err := repo.NameExists(ctx, swapCase(name), nil)
			if err != nil || !exists {
				return false
			}
			exists, err = repo.NameExists(ctx, name, &first.ID)
			if err != nil || exists {
				return false
			}

			second := &domain.Category{ID: uuid.New(), Name: swapCase(name), IsActive: true}
			return repo.Create(ctx, second) == ErrCategoryAlreadyExists
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func swapCase(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z':
			out[i] = r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			out[i] = r - 'A' + 'a'
		}
	}
	return string(out)
}

func TestCategoryListCountsActiveProducts(t *testing.T) {
	resetTables(t)
	repo := NewCategoryRepository(testDB)
	products := NewProductRepository(testDB)
	ctx := context.Background()

	pizza := createCategory(t, "Pizza")
	pasta := createCategory(t, "Pasta")
	pasta.SortOrder = 1
	pasta.Description = "Fresh handmade pasta"
	require.NoError(t, repo.Update(ctx, pasta))
	hidden := createCategory(t, "Hidden")
	require.NoError(t, repo.SoftDelete(ctx, hidden.ID))

	createProduct(t, newProduct(pizza.ID, "Margherita", "9.00", 10))
	gone := createProduct(t, newProduct(pizza.ID, "Hawaiian", "9.00", 10))
	require.NoError(t, products.SoftDelete(ctx, gone.ID))

	page := domain.PageRequest{Page: 1, PageSize: 20}
	list, total, err := repo.List(ctx, domain.CategoryFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "Pizza", list[0].Name)
	assert.Equal(t, 1, list[0].ActiveProductsCount)
	assert.Equal(t, "Pasta", list[1].Name)

	list, _, err = repo.List(ctx, domain.CategoryFilter{Search: "handmade"}, page)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pasta", list[0].Name)

	list, _, err = repo.List(ctx, domain.CategoryFilter{Ordering: "-name"}, page)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", list[0].Name)
	assert.Equal(t, "Pasta", list[1].Name)

	list, _, err = repo.List(ctx, domain.CategoryFilter{Ordering: "name"}, page)
	require.NoError(t, err)
	assert.Equal(t, "Pasta", list[0].Name)

	found, err := repo.FindByID(ctx, hidden.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestCategoryNotFound(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.ErrorIs(t, repo.SoftDelete(ctx, uuid.New()), ErrCategoryNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.Category{ID: uuid.New(), Name: "ghost"}), ErrCategoryNotFound)
}

func TestDeletingCategoryRowCascadesToProductsAndImages(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	category := createCategory(t, "Seasonal")
	product := createProduct(t, newProduct(category.ID, "Pumpkin Soup", "7.00", 10))
	images := NewProductImageRepository(testDB)
	require.NoError(t, images.Create(ctx, &domain.ProductImage{ID: uuid.New(), ProductID: product.ID, ImageURL: "u"}))

	_, err := testDB.Exec(`DELETE FROM categories WHERE id = $1`, category.ID)
	require.NoError(t, err)

	_, err = NewProductRepository(testDB).FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	var remaining int
	require.NoError(t, testDB.Get(&remaining, `SELECT COUNT(*) FROM product_images WHERE product_id = $1`, product.ID))
	assert.Zero(t, remaining)
}
