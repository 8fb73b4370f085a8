package transport

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"food-catalog/internal/domain"
	"food-catalog/internal/middleware"
	"food-catalog/internal/repository"
	"food-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// fakeProductService serves a fixed set of products keyed by slug and records what it was asked
type fakeProductService struct {
	products   map[string]*domain.Product
	images     map[uuid.UUID]*domain.ProductImage
	err        error
	lastFilter domain.ProductFilter
	lastPage   domain.PageRequest
	lastStock  struct {
		action   domain.StockAction
		quantity int
	}
	lastBulk map[string]interface{}
}

func newFakeProductService() *fakeProductService {
	return &fakeProductService{
		products: make(map[string]*domain.Product),
		images:   make(map[uuid.UUID]*domain.ProductImage),
	}
}

func (f *fakeProductService) add(name, slug string, stock int) *domain.Product {
	p := &domain.Product{
		ID:            uuid.New(),
		Name:          name,
		Slug:          slug,
		Price:         decimal.RequireFromString("10.00"),
		Availability:  domain.AvailabilityAvailable,
		StockQuantity: stock,
		IsActive:      true,
	}
	f.products[slug] = p
	return p
}

func (f *fakeProductService) page(req domain.PageRequest) (*domain.Page[*domain.Product], error) {
	var all []*domain.Product
	for _, p := range f.products {
		all = append(all, p)
	}
	page := &domain.Page[*domain.Product]{Total: len(all), Number: req.Page, PageSize: req.PageSize}
	if req.Page > page.Pages() {
		return nil, domain.ErrInvalidPage
	}
	start := min(req.Offset(), len(all))
	page.Items = all[start:min(start+req.PageSize, len(all))]
	return page, nil
}

func (f *fakeProductService) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (*domain.Page[*domain.Product], error) {
	f.lastFilter, f.lastPage = filter, page
	if f.err != nil {
		return nil, f.err
	}
	return f.page(page)
}

func (f *fakeProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID, page domain.PageRequest) (*domain.Page[*domain.Product], error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.page(page)
}

func (f *fakeProductService) Featured(ctx context.Context) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, f.err
}

func (f *fakeProductService) Search(ctx context.Context, q string, page domain.PageRequest) (*domain.Page[*domain.Product], error) {
	if q == "" {
		return &domain.Page[*domain.Product]{Items: []*domain.Product{}, Number: 1, PageSize: page.PageSize}, nil
	}
	return f.page(page)
}

func (f *fakeProductService) Get(ctx context.Context, slug string) (*domain.Product, error) {
	p, ok := f.products[slug]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductService) Create(ctx context.Context, in service.ProductInput) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.add(*in.Name, "created", 1), nil
}

func (f *fakeProductService) Update(ctx context.Context, slug string, in service.ProductInput) (*domain.Product, error) {
	p, err := f.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	return p, nil
}

func (f *fakeProductService) Delete(ctx context.Context, slug string) error {
	p, err := f.Get(ctx, slug)
	if err != nil {
		return err
	}
	p.IsActive = false
	return nil
}

func (f *fakeProductService) AdjustStock(ctx context.Context, slug string, action domain.StockAction, quantity int) (*service.StockResult, error) {
	f.lastStock.action, f.lastStock.quantity = action, quantity
	p, err := f.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := p.ApplyStockAction(action, quantity); err != nil {
		return nil, err
	}
	return &service.StockResult{Message: "ok", Product: p}, nil
}

func (f *fakeProductService) Rate(ctx context.Context, slug string, rating decimal.Decimal) (*domain.Product, error) {
	p, err := f.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	p.UpdateRating(rating)
	return p, nil
}

func (f *fakeProductService) BulkUpdate(ctx context.Context, ids []uuid.UUID, data map[string]interface{}) (int64, error) {
	f.lastBulk = data
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(ids)), nil
}

func (f *fakeProductService) ListImages(ctx context.Context, slug string) ([]*domain.ProductImage, error) {
	p, err := f.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	out := []*domain.ProductImage{}
	for _, img := range f.images {
		if img.ProductID == p.ID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeProductService) AddImage(ctx context.Context, slug string, image *domain.ProductImage) (*domain.ProductImage, error) {
	p, err := f.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	image.ID, image.ProductID = uuid.New(), p.ID
	f.images[image.ID] = image
	return image, nil
}

func (f *fakeProductService) DeleteImage(ctx context.Context, slug string, imageID uuid.UUID) error {
	if _, ok := f.images[imageID]; !ok {
		return repository.ErrProductImageNotFound
	}
	delete(f.images, imageID)
	return nil
}

type fakeStatisticsService struct {
	calls int
}

func (f *fakeStatisticsService) Catalog(ctx context.Context) (*domain.CatalogStatistics, error) {
	f.calls++
	return &domain.CatalogStatistics{TotalProducts: 3, CategoriesWithProducts: []domain.CategoryProductCount{{Name: "Mains", ProductCount: 3}}}, nil
}

// fakeStorage keeps uploaded objects in memory
type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func (f *fakeStorage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	url := "https://cdn.example.com/products/" + uuid.NewString() + ".jpg"
	f.objects[url] = data
	return url, nil
}

func (f *fakeStorage) Delete(ctx context.Context, url string) error {
	delete(f.objects, url)
	f.deleted = append(f.deleted, url)
	return nil
}

// newTestRouter mounts handlers the way the server does
func newTestRouter(register ...func(chi.Router, Guards)) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.StripSlashes)
	guards := NewGuards(testSecret, zap.NewNop())
	r.Route("/api", func(r chi.Router) {
		for _, fn := range register {
			fn(r, guards)
		}
	})
	return r
}

func staffToken(t *testing.T, role string) string {
	t.Helper()
	claims := middleware.StaffClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "staff-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, h http.Handler, method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorEnvelope struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}
