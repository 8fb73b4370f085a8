package transport

import (
	"net/http"

	"food-catalog/internal/domain"
	"food-catalog/internal/middleware"
	"food-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categories service.CategoryService
	products   service.ProductService
	logger     *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories service.CategoryService, products service.ProductService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/products", h.ListProducts)

		r.Group(func(r chi.Router) {
			r.Use(guards.Staff)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles GET /categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, categoryPages)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	filter := domain.CategoryFilter{
		Search:   r.URL.Query().Get("search"),
		Ordering: r.URL.Query().Get("ordering"),
	}

	result, err := h.categories.List(r.Context(), filter, page)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, paginated(r, result, identity[*domain.Category]))
}

// Get handles GET /categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// ListProducts handles GET /categories/{id}/products
func (h *CategoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	page, err := pageRequest(r, productPages)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.products.ListByCategory(r.Context(), id, page)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, paginated(r, result, newProductResponse))
}

// Create handles POST /categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	category, err := h.categories.Create(r.Context(), req.input())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// Update handles PUT /categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	category, err := h.categories.Update(r.Context(), id, req.input())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Category deactivated", zap.String("category_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// categoryID parses the id path parameter. A malformed id cannot name a category.
func (h *CategoryHandler) categoryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, notFoundMessage)
		return uuid.Nil, false
	}
	return id, true
}
