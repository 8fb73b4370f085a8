package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-catalog/internal/cache"
	"food-catalog/internal/domain"
	"food-catalog/internal/repository"

	"github.com/google/uuid"
)

// CategoryInput carries the writable category fields. Nil means unchanged.
type CategoryInput struct {
	Name        *string
	Description *string
	ImageURL    *string
	IsActive    *bool
	SortOrder   *int
}

func (in CategoryInput) apply(c *domain.Category) {
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.ImageURL != nil {
		c.ImageURL = *in.ImageURL
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context, filter domain.CategoryFilter, page domain.PageRequest) (*domain.Page[*domain.Category], error)
	// Get returns an active category
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Create(ctx context.Context, in CategoryInput) (*domain.Category, error)
	// Update applies in to the category whether or not it is active
	Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categories repository.CategoryRepository
	validator  *Validator
	cache      cache.Cache
	ttl        time.Duration
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categories repository.CategoryRepository, validator *Validator, c cache.Cache, ttls CacheTTLs) CategoryService {
	return &categoryService{
		categories: categories,
		validator:  validator,
		cache:      c,
		ttl:        ttls.Categories,
	}
}

func (s *categoryService) List(ctx context.Context, filter domain.CategoryFilter, page domain.PageRequest) (*domain.Page[*domain.Category], error) {
	key := fmt.Sprintf("categories:search=%s:ordering=%s:page=%d:size=%d", filter.Search, filter.Ordering, page.Page, page.PageSize)

	return cachedRead(ctx, s.cache, key, s.ttl, func() (*domain.Page[*domain.Category], error) {
		items, total, err := s.categories.List(ctx, filter, page)
		if err != nil {
			return nil, err
		}
		return newPage(items, total, page)
	})
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, repository.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		ID:       uuid.New(),
		IsActive: true,
	}
	in.apply(category)

	if err := s.validator.ValidateCategory(ctx, category, nil); err != nil {
		return nil, err
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, duplicateCategory(err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(category)

	if err := s.validator.ValidateCategory(ctx, category, &category.ID); err != nil {
		return nil, err
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, duplicateCategory(err)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.categories.SoftDelete(ctx, id)
}

// duplicateCategory reports a unique index race as the same validation error the check produces
func duplicateCategory(err error) error {
	if errors.Is(err, repository.ErrCategoryAlreadyExists) {
		verr := domain.NewValidationError()
		verr.Add("name", "Category with this name already exists.", domain.ErrDuplicateName)
		return verr
	}
	return err
}

// newPage wraps a slice of results, rejecting page numbers past the last page
func newPage[T any](items []T, total int, req domain.PageRequest) (*domain.Page[T], error) {
	page := &domain.Page[T]{
		Items:    items,
		Total:    total,
		Number:   req.Page,
		PageSize: req.PageSize,
	}
	if req.Page < 1 || req.Page > page.Pages() {
		return nil, domain.ErrInvalidPage
	}
	return page, nil
}
