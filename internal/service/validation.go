package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"food-catalog/internal/domain"
	"food-catalog/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var fieldValidator = validator.New()

var (
	minPrice      = decimal.RequireFromString("0.01")
	maxPrice      = decimal.RequireFromString("99999999.99")
	maxNutrient   = decimal.RequireFromString("999.99")
	errFieldLimit = errors.New("field constraint violated")
)

// Validator enforces catalog invariants that span more than one record
type Validator struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
}

func NewValidator(categories repository.CategoryRepository, products repository.ProductRepository) *Validator {
	return &Validator{categories: categories, products: products}
}

// ValidateCategory checks a candidate category. excludeID is the id of the
// category being updated, or nil on create.
func (v *Validator) ValidateCategory(ctx context.Context, c *domain.Category, excludeID *uuid.UUID) error {
	verr := domain.NewValidationError()

	c.Name = strings.TrimSpace(c.Name)
	checkRequired(verr, "name", c.Name, 100)
	checkQuantity(verr, "sort_order", c.SortOrder)

	if c.Name != "" {
		exists, err := v.categories.NameExists(ctx, c.Name, excludeID)
		if err != nil {
			return err
		}
		if exists {
			verr.Add("name", "Category with this name already exists.", domain.ErrDuplicateName)
		}
	}

	return verr.ErrOrNil()
}

// ValidateProduct checks a candidate product. excludeID is the id of the
// product being updated, or nil on create.
func (v *Validator) ValidateProduct(ctx context.Context, p *domain.Product, excludeID *uuid.UUID) error {
	verr := domain.NewValidationError()

	p.Name = strings.TrimSpace(p.Name)
	checkRequired(verr, "name", p.Name, 200)
	checkMaxLength(verr, "short_description", p.ShortDescription, 300)
	checkMaxLength(verr, "image_alt", p.ImageAlt, 200)
	checkMaxLength(verr, "image_url", p.ImageURL, 500)
	checkMaxLength(verr, "allergens", p.Allergens, 500)
	checkMaxLength(verr, "meta_title", p.MetaTitle, 200)
	checkMaxLength(verr, "meta_description", p.MetaDescription, 300)

	checkPrice(verr, "price", p.Price)
	if p.OriginalPrice.Valid {
		checkPrice(verr, "original_price", p.OriginalPrice.Decimal)
		if p.OriginalPrice.Decimal.LessThanOrEqual(p.Price) {
			verr.Add("original_price", "Original price must be greater than current price.", domain.ErrPriceOrderViolation)
		}
	}

	if !p.Availability.Valid() {
		verr.Add("availability", fmt.Sprintf("%q is not a valid choice.", p.Availability), errFieldLimit)
	}
	if !p.SpiceLevel.Valid() {
		verr.Add("spice_level", fmt.Sprintf("%q is not a valid choice.", p.SpiceLevel), errFieldLimit)
	}

	checkQuantity(verr, "stock_quantity", p.StockQuantity)
	checkQuantity(verr, "preparation_time", p.PreparationTime)
	checkQuantity(verr, "sort_order", p.SortOrder)
	if p.Calories != nil {
		checkQuantity(verr, "calories", *p.Calories)
	}
	checkNutrient(verr, "protein", p.Protein)
	checkNutrient(verr, "carbs", p.Carbs)
	checkNutrient(verr, "fat", p.Fat)

	if p.Availability == domain.AvailabilityAvailable && p.StockQuantity == 0 {
		verr.Add("availability", "Cannot set as available when stock quantity is 0.", domain.ErrStockAvailabilityViolation)
	}

	category, err := v.categories.FindByID(ctx, p.CategoryID)
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		verr.Add("category_id", "Invalid category. Object does not exist.", repository.ErrCategoryNotFound)
	case err != nil:
		return err
	default:
		p.CategoryName = category.Name
	}

	if p.Name != "" {
		exists, err := v.products.NameExistsInCategory(ctx, p.CategoryID, p.Name, excludeID)
		if err != nil {
			return err
		}
		if exists {
			verr.Add("name", "Product with this name already exists in this category.", domain.ErrDuplicateName)
		}
	}

	return verr.ErrOrNil()
}

func checkRequired(verr *domain.ValidationError, field, value string, max int) {
	if value == "" {
		verr.Add(field, "This field is required.", errFieldLimit)
		return
	}
	checkMaxLength(verr, field, value, max)
}

func checkMaxLength(verr *domain.ValidationError, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		verr.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", max), errFieldLimit)
	}
}

// checkQuantity bounds an integer field to the range of its INTEGER column
func checkQuantity(verr *domain.ValidationError, field string, value int) {
	switch {
	case value < 0:
		verr.Add(field, "Ensure this value is greater than or equal to 0.", errFieldLimit)
	case value > domain.MaxQuantity:
		verr.Add(field, fmt.Sprintf("Ensure this value is less than or equal to %d.", domain.MaxQuantity), errFieldLimit)
	}
}

func checkPrice(verr *domain.ValidationError, field string, value decimal.Decimal) {
	switch {
	case value.LessThan(minPrice):
		verr.Add(field, "Ensure this value is greater than or equal to 0.01.", errFieldLimit)
	case value.GreaterThan(maxPrice):
		verr.Add(field, "Ensure that there are no more than 10 digits in total.", errFieldLimit)
	case !value.Equal(value.Round(2)):
		verr.Add(field, "Ensure that there are no more than 2 decimal places.", errFieldLimit)
	}
}

func checkNutrient(verr *domain.ValidationError, field string, value decimal.NullDecimal) {
	if !value.Valid {
		return
	}
	if value.Decimal.IsNegative() || value.Decimal.GreaterThan(maxNutrient) {
		verr.Add(field, "Ensure this value is between 0 and 999.99.", errFieldLimit)
	}
}
