package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"food-catalog/internal/cache"
	"food-catalog/internal/domain"
	"food-catalog/internal/repository"
	"food-catalog/internal/slug"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// FeaturedLimit caps the featured products listing
	FeaturedLimit = 8

	slugAttempts = 3
)

// ProductInput carries the writable product fields. Nil means unchanged.
type ProductInput struct {
	Name             *string
	Description      *string
	ShortDescription *string
	Price            *decimal.Decimal
	OriginalPrice    *decimal.Decimal
	CategoryID       *uuid.UUID
	ImageURL         *string
	ImageAlt         *string
	Availability     *domain.Availability
	StockQuantity    *int
	Ingredients      *string
	Allergens        *string
	SpiceLevel       *domain.SpiceLevel
	Calories         *int
	PreparationTime  *int
	Protein          *decimal.Decimal
	Carbs            *decimal.Decimal
	Fat              *decimal.Decimal
	IsActive         *bool
	IsFeatured       *bool
	IsVegetarian     *bool
	IsVegan          *bool
	IsGlutenFree     *bool
	MetaTitle        *string
	MetaDescription  *string
	SortOrder        *int
}

func (in ProductInput) apply(p *domain.Product) {
	setIf(&p.Name, in.Name)
	setIf(&p.Description, in.Description)
	setIf(&p.ShortDescription, in.ShortDescription)
	setIf(&p.Price, in.Price)
	setNullDecimal(&p.OriginalPrice, in.OriginalPrice)
	setIf(&p.CategoryID, in.CategoryID)
	setIf(&p.ImageURL, in.ImageURL)
	setIf(&p.ImageAlt, in.ImageAlt)
	setIf(&p.Availability, in.Availability)
	setIf(&p.StockQuantity, in.StockQuantity)
	setIf(&p.Ingredients, in.Ingredients)
	setIf(&p.Allergens, in.Allergens)
	setIf(&p.SpiceLevel, in.SpiceLevel)
	if in.Calories != nil {
		calories := *in.Calories
		p.Calories = &calories
	}
	setIf(&p.PreparationTime, in.PreparationTime)
	setNullDecimal(&p.Protein, in.Protein)
	setNullDecimal(&p.Carbs, in.Carbs)
	setNullDecimal(&p.Fat, in.Fat)
	setIf(&p.IsActive, in.IsActive)
	setIf(&p.IsFeatured, in.IsFeatured)
	setIf(&p.IsVegetarian, in.IsVegetarian)
	setIf(&p.IsVegan, in.IsVegan)
	setIf(&p.IsGlutenFree, in.IsGlutenFree)
	setIf(&p.MetaTitle, in.MetaTitle)
	setIf(&p.MetaDescription, in.MetaDescription)
	setIf(&p.SortOrder, in.SortOrder)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setNullDecimal(dst *decimal.NullDecimal, src *decimal.Decimal) {
	if src != nil {
		*dst = decimal.NewNullDecimal(*src)
	}
}

// StockResult is the outcome of a stock transition
type StockResult struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (*domain.Page[*domain.Product], error)
	// ListByCategory lists the active products of an active category
	ListByCategory(ctx context.Context, categoryID uuid.UUID, page domain.PageRequest) (*domain.Page[*domain.Product], error)
	Featured(ctx context.Context) ([]*domain.Product, error)
	// Search matches q against product text and category names; an empty q matches nothing
	Search(ctx context.Context, q string, page domain.PageRequest) (*domain.Page[*domain.Product], error)
	// Get returns an active product
	Get(ctx context.Context, slug string) (*domain.Product, error)
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	// Update applies in to the product whether or not it is active
	Update(ctx context.Context, slug string, in ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, slug string) error
	AdjustStock(ctx context.Context, slug string, action domain.StockAction, quantity int) (*StockResult, error)
	Rate(ctx context.Context, slug string, rating decimal.Decimal) (*domain.Product, error)
	// BulkUpdate applies allow-listed fields to every listed product and returns the number updated
	BulkUpdate(ctx context.Context, ids []uuid.UUID, data map[string]interface{}) (int64, error)
	ListImages(ctx context.Context, slug string) ([]*domain.ProductImage, error)
	AddImage(ctx context.Context, slug string, image *domain.ProductImage) (*domain.ProductImage, error)
	DeleteImage(ctx context.Context, slug string, imageID uuid.UUID) error
}

type productService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	images     repository.ProductImageRepository
	tx         repository.TxManager
	validator  *Validator
	slugs      *slug.Generator
	cache      cache.Cache
	ttls       CacheTTLs
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	images repository.ProductImageRepository,
	tx repository.TxManager,
	validator *Validator,
	c cache.Cache,
	ttls CacheTTLs,
) ProductService {
	return &productService{
		products:   products,
		categories: categories,
		images:     images,
		tx:         tx,
		validator:  validator,
		slugs:      slug.NewGenerator(products),
		cache:      c,
		ttls:       ttls,
	}
}

func productListKey(filter domain.ProductFilter, page domain.PageRequest) string {
	var b strings.Builder
	b.WriteString("products:")
	if filter.CategoryID != nil {
		fmt.Fprintf(&b, "category=%s:", filter.CategoryID)
	}
	fmt.Fprintf(&b, "featured=%t:available=%t:veg=%t:vegan=%t:gf=%t:",
		filter.Featured, filter.AvailableOnly, filter.Vegetarian, filter.Vegan, filter.GlutenFree)
	if filter.MinPrice != nil {
		fmt.Fprintf(&b, "min=%s:", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		fmt.Fprintf(&b, "max=%s:", filter.MaxPrice.String())
	}
	fmt.Fprintf(&b, "search=%s:ordering=%s:page=%d:size=%d", filter.Search, filter.Ordering, page.Page, page.PageSize)
	return b.String()
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (*domain.Page[*domain.Product], error) {
	return cachedRead(ctx, s.cache, productListKey(filter, page), s.ttls.Products, func() (*domain.Page[*domain.Product], error) {
		return s.list(ctx, filter, page)
	})
}

func (s *productService) list(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (*domain.Page[*domain.Product], error) {
	items, total, err := s.products.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page)
}

func (s *productService) ListByCategory(ctx context.Context, categoryID uuid.UUID, page domain.PageRequest) (*domain.Page[*domain.Product], error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, repository.ErrCategoryNotFound
	}
	return s.list(ctx, domain.ProductFilter{CategoryID: &categoryID}, page)
}

func (s *productService) Featured(ctx context.Context) ([]*domain.Product, error) {
	return cachedRead(ctx, s.cache, "products:featured", s.ttls.Featured, func() ([]*domain.Product, error) {
		return s.products.Featured(ctx, FeaturedLimit)
	})
}

func (s *productService) Search(ctx context.Context, q string, page domain.PageRequest) (*domain.Page[*domain.Product], error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return newPage([]*domain.Product{}, 0, page)
	}
	return s.list(ctx, domain.ProductFilter{Search: q}, page)
}

func (s *productService) Get(ctx context.Context, slug string) (*domain.Product, error) {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	required := domain.NewValidationError()
	if in.Name == nil {
		required.Add("name", "This field is required.", errFieldLimit)
	}
	if in.Price == nil {
		required.Add("price", "This field is required.", errFieldLimit)
	}
	if in.CategoryID == nil {
		required.Add("category_id", "This field is required.", errFieldLimit)
	}
	if err := required.ErrOrNil(); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:              uuid.New(),
		Availability:    domain.AvailabilityAvailable,
		SpiceLevel:      domain.SpiceNone,
		PreparationTime: 15,
		IsActive:        true,
		RatingAverage:   decimal.Zero,
	}
	in.apply(product)

	if err := s.validator.ValidateProduct(ctx, product, nil); err != nil {
		return nil, err
	}

	err := s.withUniqueSlug(ctx, product, func() error {
		return s.products.Create(ctx, product)
	})
	if err != nil {
		return nil, productValidationRace(err)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, slug string, in ProductInput) (*domain.Product, error) {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	oldName := product.Name
	in.apply(product)

	if err := s.validator.ValidateProduct(ctx, product, &product.ID); err != nil {
		return nil, err
	}

	if product.Name == oldName {
		err = s.products.Update(ctx, product)
	} else {
		err = s.withUniqueSlug(ctx, product, func() error {
			return s.products.Update(ctx, product)
		})
	}
	if err != nil {
		return nil, productValidationRace(err)
	}
	return product, nil
}

// withUniqueSlug derives the product slug from its name and runs write,
// regenerating the slug if a concurrent writer claimed it first.
func (s *productService) withUniqueSlug(ctx context.Context, product *domain.Product, write func() error) error {
	var exclude *uuid.UUID
	if product.ID != uuid.Nil {
		exclude = &product.ID
	}

	var err error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		product.Slug, err = s.slugs.Unique(ctx, product.Name, exclude)
		if err != nil {
			return err
		}
		if err = write(); !errors.Is(err, repository.ErrSlugTaken) {
			return err
		}
	}
	return err
}

// productValidationRace turns constraint violations that slipped past validation
// into the matching field error
func productValidationRace(err error) error {
	verr := domain.NewValidationError()
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		verr.Add("name", "Product with this name already exists in this category.", domain.ErrDuplicateName)
	case errors.Is(err, domain.ErrStockAvailabilityViolation):
		verr.Add("availability", "Cannot set as available when stock quantity is 0.", domain.ErrStockAvailabilityViolation)
	case errors.Is(err, domain.ErrPriceOrderViolation):
		verr.Add("original_price", "Original price must be greater than current price.", domain.ErrPriceOrderViolation)
	case errors.Is(err, repository.ErrCategoryNotFound):
		verr.Add("category_id", "Invalid category. Object does not exist.", repository.ErrCategoryNotFound)
	default:
		return err
	}
	return verr
}

func (s *productService) Delete(ctx context.Context, slug string) error {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.products.SoftDelete(ctx, product.ID)
}

func (s *productService) AdjustStock(ctx context.Context, slug string, action domain.StockAction, quantity int) (*StockResult, error) {
	var product *domain.Product
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.products.LockBySlug(ctx, slug)
		if err != nil {
			return err
		}

		if err := product.ApplyStockAction(action, quantity); err != nil {
			return err
		}

		return s.products.UpdateStock(ctx, product.ID, product.StockQuantity, product.Availability)
	})
	if err != nil {
		return nil, err
	}

	return &StockResult{Message: stockMessage(action, quantity), Product: product}, nil
}

func stockMessage(action domain.StockAction, quantity int) string {
	switch action {
	case domain.StockAdd:
		return fmt.Sprintf("Added %d items to stock", quantity)
	case domain.StockReduce:
		return fmt.Sprintf("Reduced stock by %d items", quantity)
	default:
		return fmt.Sprintf("Stock set to %d", quantity)
	}
}

func (s *productService) Rate(ctx context.Context, slug string, rating decimal.Decimal) (*domain.Product, error) {
	var product *domain.Product
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.products.LockBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return repository.ErrProductNotFound
		}

		product.UpdateRating(rating)
		return s.products.UpdateRating(ctx, product.ID, product.RatingAverage, product.ReviewCount)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// bulkUpdateFields is the allow-list of fields a bulk update may touch
var bulkUpdateFields = map[string]bool{
	"is_active":    true,
	"is_featured":  true,
	"availability": true,
	"category":     true,
	"sort_order":   true,
}

func (s *productService) BulkUpdate(ctx context.Context, ids []uuid.UUID, data map[string]interface{}) (int64, error) {
	update, err := s.parseBulkUpdate(ctx, data)
	if err != nil {
		return 0, err
	}

	var updated int64
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		updated, err = s.products.BulkUpdate(ctx, ids, update)
		return err
	})
	if err != nil {
		return 0, productValidationRace(err)
	}
	return updated, nil
}

func (s *productService) parseBulkUpdate(ctx context.Context, data map[string]interface{}) (domain.BulkProductUpdate, error) {
	var update domain.BulkProductUpdate

	var invalid []string
	for field := range data {
		if !bulkUpdateFields[field] {
			invalid = append(invalid, field)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return update, &domain.InvalidFieldSetError{Fields: invalid}
	}

	verr := domain.NewValidationError()
	for field, raw := range data {
		switch field {
		case "is_active", "is_featured":
			b, ok := raw.(bool)
			if !ok {
				verr.Add(field, "Must be a valid boolean.", errFieldLimit)
				continue
			}
			if field == "is_active" {
				update.IsActive = &b
			} else {
				update.IsFeatured = &b
			}
		case "availability":
			str, _ := raw.(string)
			availability := domain.Availability(str)
			if !availability.Valid() {
				verr.Add(field, fmt.Sprintf("%q is not a valid choice.", str), errFieldLimit)
				continue
			}
			update.Availability = &availability
		case "sort_order":
			n, ok := raw.(float64)
			if !ok || n < 0 || n > domain.MaxQuantity || n != math.Trunc(n) {
				verr.Add(field, "Ensure this value is a whole number greater than or equal to 0.", errFieldLimit)
				continue
			}
			order := int(n)
			update.SortOrder = &order
		case "category":
			str, _ := raw.(string)
			id, err := uuid.Parse(str)
			if err != nil {
				verr.Add(field, "Must be a valid UUID.", errFieldLimit)
				continue
			}
			category, err := s.categories.FindByID(ctx, id)
			if errors.Is(err, repository.ErrCategoryNotFound) || (err == nil && !category.IsActive) {
				verr.Add(field, "Invalid category. Object does not exist.", repository.ErrCategoryNotFound)
				continue
			}
			if err != nil {
				return update, err
			}
			update.CategoryID = &id
		}
	}

	return update, verr.ErrOrNil()
}

func (s *productService) ListImages(ctx context.Context, slug string) ([]*domain.ProductImage, error) {
	product, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.images.ListByProduct(ctx, product.ID)
}

func (s *productService) AddImage(ctx context.Context, slug string, image *domain.ProductImage) (*domain.ProductImage, error) {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	image.ImageURL = strings.TrimSpace(image.ImageURL)
	checkRequired(verr, "image_url", image.ImageURL, 500)
	checkMaxLength(verr, "alt_text", image.AltText, 200)
	checkQuantity(verr, "sort_order", image.SortOrder)
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	image.ID = uuid.New()
	image.ProductID = product.ID
	if err := s.images.Create(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

func (s *productService) DeleteImage(ctx context.Context, slug string, imageID uuid.UUID) error {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	_, err = s.images.Delete(ctx, product.ID, imageID)
	return err
}
