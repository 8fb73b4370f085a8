package transport

import (
	"strconv"
	"strings"

	"food-catalog/internal/domain"
	"food-catalog/internal/service"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRequest is the payload of category create and update. Absent fields are left unchanged.
type CategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,gte=0"`
}

func (req CategoryRequest) input() service.CategoryInput {
	return service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
	}
}

// ProductRequest is the payload of product create and update. Absent fields are left unchanged.
type ProductRequest struct {
	Name             *string          `json:"name" validate:"omitempty,max=200"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"short_description" validate:"omitempty,max=300"`
	Price            *decimal.Decimal `json:"price"`
	OriginalPrice    *decimal.Decimal `json:"original_price"`
	CategoryID       *uuid.UUID       `json:"category_id"`
	ImageURL         *string          `json:"image_url" validate:"omitempty,max=500"`
	ImageAlt         *string          `json:"image_alt" validate:"omitempty,max=200"`
	Availability     *string          `json:"availability" validate:"omitempty,oneof=available unavailable limited"`
	StockQuantity    *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
	Ingredients      *string          `json:"ingredients"`
	Allergens        *string          `json:"allergens" validate:"omitempty,max=500"`
	SpiceLevel       *string          `json:"spice_level" validate:"omitempty,oneof=none mild medium hot extra_hot"`
	Calories         *int             `json:"calories" validate:"omitempty,gte=0"`
	PreparationTime  *int             `json:"preparation_time" validate:"omitempty,gte=0"`
	Protein          *decimal.Decimal `json:"protein"`
	Carbs            *decimal.Decimal `json:"carbs"`
	Fat              *decimal.Decimal `json:"fat"`
	IsActive         *bool            `json:"is_active"`
	IsFeatured       *bool            `json:"is_featured"`
	IsVegetarian     *bool            `json:"is_vegetarian"`
	IsVegan          *bool            `json:"is_vegan"`
	IsGlutenFree     *bool            `json:"is_gluten_free"`
	MetaTitle        *string          `json:"meta_title" validate:"omitempty,max=200"`
	MetaDescription  *string          `json:"meta_description" validate:"omitempty,max=300"`
	SortOrder        *int             `json:"sort_order" validate:"omitempty,gte=0"`
}

func (req ProductRequest) input() service.ProductInput {
	in := service.ProductInput{
		Name:             req.Name,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		OriginalPrice:    req.OriginalPrice,
		CategoryID:       req.CategoryID,
		ImageURL:         req.ImageURL,
		ImageAlt:         req.ImageAlt,
		StockQuantity:    req.StockQuantity,
		Ingredients:      req.Ingredients,
		Allergens:        req.Allergens,
		Calories:         req.Calories,
		PreparationTime:  req.PreparationTime,
		Protein:          req.Protein,
		Carbs:            req.Carbs,
		Fat:              req.Fat,
		IsActive:         req.IsActive,
		IsFeatured:       req.IsFeatured,
		IsVegetarian:     req.IsVegetarian,
		IsVegan:          req.IsVegan,
		IsGlutenFree:     req.IsGlutenFree,
		MetaTitle:        req.MetaTitle,
		MetaDescription:  req.MetaDescription,
		SortOrder:        req.SortOrder,
	}
	if req.Availability != nil {
		availability := domain.Availability(*req.Availability)
		in.Availability = &availability
	}
	if req.SpiceLevel != nil {
		spice := domain.SpiceLevel(*req.SpiceLevel)
		in.SpiceLevel = &spice
	}
	return in
}

// CustomerRequest is the payload of customer create and update
type CustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Address *string `json:"address" validate:"omitempty,max=100"`
	Email   *string `json:"email" validate:"omitempty,max=100,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=100"`
}

func (req CustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{
		Name:    req.Name,
		Address: req.Address,
		Email:   req.Email,
		Phone:   req.Phone,
	}
}

// StockRequest is the payload of a stock transition
type StockRequest struct {
	Action   string          `json:"action"`
	Quantity json.RawMessage `json:"quantity"`
}

// quantity accepts an integer or a string holding one. A missing quantity is zero.
func (req StockRequest) quantity() (int, error) {
	if len(req.Quantity) == 0 {
		return 0, nil
	}

	var n int
	if err := json.Unmarshal(req.Quantity, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(req.Quantity, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	}
	return 0, domain.ErrInvalidQuantity
}

// RatingRequest submits one customer rating
type RatingRequest struct {
	Rating *decimal.Decimal `json:"rating"`
}

// ProductImageRequest adds an image to a product gallery
type ProductImageRequest struct {
	ImageURL  string `json:"image_url" validate:"required,max=500"`
	AltText   string `json:"alt_text" validate:"max=200"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

// BulkUpdateRequest applies update_data to every product in product_ids
type BulkUpdateRequest struct {
	ProductIDs []uuid.UUID             `json:"product_ids"`
	UpdateData map[string]interface{} `json:"update_data"`
}

// BulkUpdateResponse reports how many products a bulk update touched
type BulkUpdateResponse struct {
	Message      string `json:"message"`
	UpdatedCount int64  `json:"updated_count"`
}

// ProductResponse adds the derived fields to a product
type ProductResponse struct {
	*domain.Product
	IsAvailable        bool `json:"is_available"`
	IsOnSale           bool `json:"is_on_sale"`
	DiscountPercentage int  `json:"discount_percentage"`
}

func newProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		Product:            p,
		IsAvailable:        p.IsAvailable(),
		IsOnSale:           p.IsOnSale(),
		DiscountPercentage: p.DiscountPercentage(),
	}
}

// ProductDetailResponse is a product together with its gallery
type ProductDetailResponse struct {
	ProductResponse
	AdditionalImages []*domain.ProductImage `json:"additional_images"`
}

// StockResponse is the outcome of a stock transition
type StockResponse struct {
	Message string          `json:"message"`
	Product ProductResponse `json:"product"`
}
