package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"food-catalog/internal/cache"
	"food-catalog/internal/domain"
	"food-catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mock repositories for testing

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
	listCalls  int
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) add(name string, active bool) *domain.Category {
	c := &domain.Category{ID: uuid.New(), Name: name, IsActive: active}
	m.categories[c.ID] = c
	return c
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	c, ok := m.categories[id]
	if !ok {
		return repository.ErrCategoryNotFound
	}
	c.IsActive = false
	return nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCategoryRepository) List(ctx context.Context, filter domain.CategoryFilter, page domain.PageRequest) ([]*domain.Category, int, error) {
	m.listCalls++
	var out []*domain.Category
	for _, c := range m.categories {
		if c.IsActive {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, page), len(out), nil
}

func (m *mockCategoryRepository) NameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) && (excludeID == nil || c.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

type mockProductRepository struct {
	products   map[uuid.UUID]*domain.Product
	listCalls  int
	bulkCalls  int
	lastBulk   domain.BulkProductUpdate
	statsCalls int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if exists, _ := m.SlugExists(ctx, product.Slug, nil); exists {
		return repository.ErrSlugTaken
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.IsActive = false
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) LockBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return m.FindBySlug(ctx, slug)
}

func (m *mockProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int, availability domain.Availability) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.StockQuantity, p.Availability = stock, availability
	return nil
}

func (m *mockProductRepository) UpdateRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.RatingAverage, p.ReviewCount = average, count
	return nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]*domain.Product, int, error) {
	m.listCalls++
	var out []*domain.Product
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, page), len(out), nil
}

func (m *mockProductRepository) Featured(ctx context.Context, limit int) ([]*domain.Product, error) {
	m.listCalls++
	var out []*domain.Product
	for _, p := range m.products {
		if p.IsActive && p.IsFeatured && p.IsAvailable() && len(out) < limit {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockProductRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	for _, p := range m.products {
		if p.Slug == slug && (excludeID == nil || p.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProductRepository) NameExistsInCategory(ctx context.Context, categoryID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	for _, p := range m.products {
		if p.CategoryID == categoryID && strings.EqualFold(p.Name, name) && (excludeID == nil || p.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProductRepository) BulkUpdate(ctx context.Context, ids []uuid.UUID, update domain.BulkProductUpdate) (int64, error) {
	m.bulkCalls++
	m.lastBulk = update
	var n int64
	for _, id := range ids {
		p, ok := m.products[id]
		if !ok {
			continue
		}
		if update.IsFeatured != nil {
			p.IsFeatured = *update.IsFeatured
		}
		if update.IsActive != nil {
			p.IsActive = *update.IsActive
		}
		n++
	}
	return n, nil
}

func (m *mockProductRepository) Statistics(ctx context.Context) (*domain.CatalogStatistics, error) {
	m.statsCalls++
	return &domain.CatalogStatistics{TotalProducts: len(m.products), CategoriesWithProducts: []domain.CategoryProductCount{}}, nil
}

type mockProductImageRepository struct {
	images map[uuid.UUID]*domain.ProductImage
}

func newMockProductImageRepository() *mockProductImageRepository {
	return &mockProductImageRepository{images: make(map[uuid.UUID]*domain.ProductImage)}
}

func (m *mockProductImageRepository) Create(ctx context.Context, image *domain.ProductImage) error {
	copied := *image
	m.images[image.ID] = &copied
	return nil
}

func (m *mockProductImageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	out := []*domain.ProductImage{}
	for _, img := range m.images {
		if img.ProductID == productID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *mockProductImageRepository) Delete(ctx context.Context, productID, imageID uuid.UUID) (*domain.ProductImage, error) {
	img, ok := m.images[imageID]
	if !ok || img.ProductID != productID {
		return nil, repository.ErrProductImageNotFound
	}
	delete(m.images, imageID)
	return img, nil
}

type mockCustomerRepository struct {
	customers []*domain.Customer
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	copied := *customer
	m.customers = append([]*domain.Customer{&copied}, m.customers...)
	return nil
}

func (m *mockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	for i, c := range m.customers {
		if c.ID == customer.ID {
			copied := *customer
			m.customers[i] = &copied
			return nil
		}
	}
	return repository.ErrCustomerNotFound
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for i, c := range m.customers {
		if c.ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return nil
		}
	}
	return repository.ErrCustomerNotFound
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (m *mockCustomerRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Customer, int, error) {
	return paginate(m.customers, page), len(m.customers), nil
}

// passthroughTx runs the unit of work without a real transaction
type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func paginate[T any](items []T, page domain.PageRequest) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func newTestMemoryCache() cache.Cache {
	return cache.NewMemoryCache(time.Minute, time.Minute)
}
