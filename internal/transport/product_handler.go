package transport

import (
	"net/http"

	"food-catalog/internal/domain"
	"food-catalog/internal/middleware"
	"food-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var maxRating = decimal.NewFromInt(5)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	products service.ProductService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/featured", h.Featured)
		r.Get("/search", h.Search)
		r.Get("/{slug}", h.Get)
		r.Get("/{slug}/images", h.ListImages)

		r.With(guards.Authenticated).Post("/{slug}/rating", h.Rate)

		r.Group(func(r chi.Router) {
			r.Use(guards.Staff)
			r.Post("/", h.Create)
			r.Put("/{slug}", h.Update)
			r.Delete("/{slug}", h.Delete)
			r.Patch("/{slug}/stock", h.AdjustStock)
			r.Post("/{slug}/images", h.AddImage)
			r.Delete("/{slug}/images/{imageID}", h.DeleteImage)
		})
	})
}

// productFilter reads the listing filters. Malformed prices are ignored.
func productFilter(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Featured:      queryFlag(r, "featured"),
		AvailableOnly: queryFlag(r, "available_only"),
		Vegetarian:    queryFlag(r, "vegetarian"),
		Vegan:         queryFlag(r, "vegan"),
		GlutenFree:    queryFlag(r, "gluten_free"),
		Search:        q.Get("search"),
		Ordering:      q.Get("ordering"),
	}

	if raw := q.Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr := domain.NewValidationError()
			verr.Add("category", "Must be a valid UUID.", nil)
			return filter, verr
		}
		filter.CategoryID = &id
	}

	if price, err := decimal.NewFromString(q.Get("min_price")); err == nil {
		filter.MinPrice = &price
	}
	if price, err := decimal.NewFromString(q.Get("max_price")); err == nil {
		filter.MaxPrice = &price
	}
	return filter, nil
}

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	page, err := pageRequest(r, productPages)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.products.List(r.Context(), filter, page)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, paginated(r, result, newProductResponse))
}

// Featured handles GET /products/featured
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Featured(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, newProductResponse(p))
	}
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Search handles GET /products/search?q=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, productPages)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.products.Search(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, paginated(r, result, newProductResponse))
}

// Get handles GET /products/{slug}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.products.Get(r.Context(), slug)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	images, err := h.products.ListImages(r.Context(), slug)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductDetailResponse{
		ProductResponse:  newProductResponse(product),
		AdditionalImages: images,
	})
}

// Create handles POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	product, err := h.products.Create(r.Context(), req.input())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, newProductResponse(product))
}

// Update handles PUT /products/{slug}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	product, err := h.products.Update(r.Context(), chi.URLParam(r, "slug"), req.input())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// Delete handles DELETE /products/{slug}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.products.Delete(r.Context(), slug); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Product deactivated", zap.String("slug", slug))
	w.WriteHeader(http.StatusNoContent)
}

// AdjustStock handles PATCH /products/{slug}/stock
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req StockRequest
	if err := middleware.DecodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	quantity, err := req.quantity()
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	action := domain.StockAction(req.Action)
	switch action {
	case domain.StockAdd, domain.StockReduce, domain.StockSet:
	default:
		respondError(w, h.logger, domain.ErrInvalidStockAction)
		return
	}

	result, err := h.products.AdjustStock(r.Context(), chi.URLParam(r, "slug"), action, quantity)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Stock adjusted",
		zap.String("slug", result.Product.Slug),
		zap.String("action", req.Action),
		zap.Int("quantity", quantity),
		zap.Int("stock", result.Product.StockQuantity),
	)
	middleware.RespondWithJSON(w, http.StatusOK, StockResponse{
		Message: result.Message,
		Product: newProductResponse(result.Product),
	})
}

// Rate handles POST /products/{slug}/rating
func (h *ProductHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req RatingRequest
	if err := middleware.DecodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	if req.Rating == nil || req.Rating.IsNegative() || req.Rating.GreaterThan(maxRating) {
		middleware.RespondWithFieldErrors(w, map[string]string{
			"rating": "Ensure this value is between 0 and 5.",
		})
		return
	}

	product, err := h.products.Rate(r.Context(), chi.URLParam(r, "slug"), *req.Rating)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// ListImages handles GET /products/{slug}/images
func (h *ProductHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.products.ListImages(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, images)
}

// AddImage handles POST /products/{slug}/images
func (h *ProductHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	var req ProductImageRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	image, err := h.products.AddImage(r.Context(), chi.URLParam(r, "slug"), &domain.ProductImage{
		ImageURL:  req.ImageURL,
		AltText:   req.AltText,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, image)
}

// DeleteImage handles DELETE /products/{slug}/images/{imageID}
func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	if err := h.products.DeleteImage(r.Context(), chi.URLParam(r, "slug"), imageID); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
