package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold is the stock level below which a product is shown as limited
	LowStockThreshold = 10
	// MaxQuantity is the largest value the INTEGER columns hold
	MaxQuantity = math.MaxInt32
)

// Availability is the purchasability state of a product
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityLimited     Availability = "limited"
)

// Valid reports whether a is a known availability state
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityUnavailable, AvailabilityLimited:
		return true
	}
	return false
}

// SpiceLevel describes how hot a dish is
type SpiceLevel string

const (
	SpiceNone     SpiceLevel = "none"
	SpiceMild     SpiceLevel = "mild"
	SpiceMedium   SpiceLevel = "medium"
	SpiceHot      SpiceLevel = "hot"
	SpiceExtraHot SpiceLevel = "extra_hot"
)

func (s SpiceLevel) Valid() bool {
	switch s {
	case SpiceNone, SpiceMild, SpiceMedium, SpiceHot, SpiceExtraHot:
		return true
	}
	return false
}

// StockAction names a stock transition
type StockAction string

const (
	StockAdd    StockAction = "add"
	StockReduce StockAction = "reduce"
	StockSet    StockAction = "set"
)

// Product represents a dish in the catalog
type Product struct {
	ID               uuid.UUID           `json:"id" db:"id"`
	Name             string              `json:"name" db:"name"`
	Slug             string              `json:"slug" db:"slug"`
	Description      string              `json:"description" db:"description"`
	ShortDescription string              `json:"short_description" db:"short_description"`
	Price            decimal.Decimal     `json:"price" db:"price"`
	OriginalPrice    decimal.NullDecimal `json:"original_price" db:"original_price"`
	CategoryID       uuid.UUID           `json:"category_id" db:"category_id"`
	CategoryName     string              `json:"category_name" db:"category_name"`
	ImageURL         string              `json:"image_url" db:"image_url"`
	ImageAlt         string              `json:"image_alt" db:"image_alt"`
	Availability     Availability        `json:"availability" db:"availability"`
	StockQuantity    int                 `json:"stock_quantity" db:"stock_quantity"`
	Ingredients      string              `json:"ingredients" db:"ingredients"`
	Allergens        string              `json:"allergens" db:"allergens"`
	SpiceLevel       SpiceLevel          `json:"spice_level" db:"spice_level"`
	Calories         *int                `json:"calories" db:"calories"`
	PreparationTime  int                 `json:"preparation_time" db:"preparation_time"`
	Protein          decimal.NullDecimal `json:"protein" db:"protein"`
	Carbs            decimal.NullDecimal `json:"carbs" db:"carbs"`
	Fat              decimal.NullDecimal `json:"fat" db:"fat"`
	IsActive         bool                `json:"is_active" db:"is_active"`
	IsFeatured       bool                `json:"is_featured" db:"is_featured"`
	IsVegetarian     bool                `json:"is_vegetarian" db:"is_vegetarian"`
	IsVegan          bool                `json:"is_vegan" db:"is_vegan"`
	IsGlutenFree     bool                `json:"is_gluten_free" db:"is_gluten_free"`
	MetaTitle        string              `json:"meta_title" db:"meta_title"`
	MetaDescription  string              `json:"meta_description" db:"meta_description"`
	SortOrder        int                 `json:"sort_order" db:"sort_order"`
	RatingAverage    decimal.Decimal     `json:"rating_average" db:"rating_average"`
	ReviewCount      int                 `json:"review_count" db:"review_count"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
}

// IsAvailable reports whether the product can be ordered right now
func (p *Product) IsAvailable() bool {
	return p.IsActive && p.Availability == AvailabilityAvailable && p.StockQuantity > 0
}

// IsOnSale reports whether the original price is above the current price
func (p *Product) IsOnSale() bool {
	return p.OriginalPrice.Valid && p.OriginalPrice.Decimal.GreaterThan(p.Price)
}

// DiscountPercentage returns the whole-number discount off the original price
func (p *Product) DiscountPercentage() int {
	if !p.IsOnSale() {
		return 0
	}
	original := p.OriginalPrice.Decimal
	pct := original.Sub(p.Price).Div(original).Mul(decimal.NewFromInt(100)).RoundBank(0)
	return int(pct.IntPart())
}

// AddStock increases stock and makes an unavailable product available again
func (p *Product) AddStock(quantity int) error {
	if quantity < 0 || quantity > MaxQuantity-p.StockQuantity {
		return ErrInvalidQuantity
	}

	stock := p.StockQuantity + quantity
	availability := p.Availability
	if stock > 0 && availability == AvailabilityUnavailable {
		availability = AvailabilityAvailable
	}

	p.StockQuantity, p.Availability = stock, availability
	return nil
}

// ReduceStock decreases stock, degrading availability as it runs low.
// The product is left untouched when there is not enough stock.
func (p *Product) ReduceStock(quantity int) error {
	if quantity < 0 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	if quantity > p.StockQuantity {
		return ErrInsufficientStock
	}

	stock := p.StockQuantity - quantity
	availability := p.Availability
	switch {
	case stock == 0:
		availability = AvailabilityUnavailable
	case stock < LowStockThreshold:
		availability = AvailabilityLimited
	}

	p.StockQuantity, p.Availability = stock, availability
	return nil
}

// SetStock assigns stock directly, applying the same threshold rules as
// AddStock and ReduceStock.
func (p *Product) SetStock(quantity int) error {
	if quantity < 0 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}

	availability := p.Availability
	switch {
	case quantity == 0:
		availability = AvailabilityUnavailable
	case quantity < LowStockThreshold:
		availability = AvailabilityLimited
	case availability == AvailabilityUnavailable:
		availability = AvailabilityAvailable
	}

	p.StockQuantity, p.Availability = quantity, availability
	return nil
}

// ApplyStockAction dispatches a named stock transition
func (p *Product) ApplyStockAction(action StockAction, quantity int) error {
	switch action {
	case StockAdd:
		return p.AddStock(quantity)
	case StockReduce:
		return p.ReduceStock(quantity)
	case StockSet:
		return p.SetStock(quantity)
	default:
		return ErrInvalidStockAction
	}
}

// UpdateRating folds a new rating into the running average.
// The rating is not range-checked here.
func (p *Product) UpdateRating(rating decimal.Decimal) {
	count := decimal.NewFromInt(int64(p.ReviewCount))
	total := p.RatingAverage.Mul(count).Add(rating)

	p.ReviewCount++
	p.RatingAverage = total.Div(decimal.NewFromInt(int64(p.ReviewCount))).RoundBank(2)
}

// ProductFilter narrows product listings. Nil pointers mean "no constraint".
type ProductFilter struct {
	CategoryID    *uuid.UUID
	Featured      bool
	AvailableOnly bool
	Vegetarian    bool
	Vegan         bool
	GlutenFree    bool
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Search        string
	Ordering      string
}

// BulkProductUpdate holds the allow-listed fields of a bulk update. Nil means unchanged.
type BulkProductUpdate struct {
	IsActive     *bool
	IsFeatured   *bool
	Availability *Availability
	CategoryID   *uuid.UUID
	SortOrder    *int
}
