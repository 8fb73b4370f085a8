package transport

import (
	"fmt"
	"net/http"

	"food-catalog/internal/middleware"
	"food-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// APIVersion is reported by the API root
const APIVersion = "1.0"

// CatalogHandler serves the catalog-wide endpoints: the API root, statistics and bulk updates
type CatalogHandler struct {
	products   service.ProductService
	statistics service.StatisticsService
	logger     *zap.Logger
}

func NewCatalogHandler(products service.ProductService, statistics service.StatisticsService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		products:   products,
		statistics: statistics,
		logger:     logger,
	}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Get("/", h.Root)
	r.Get("/statistics", h.Statistics)
	r.With(guards.Staff).Post("/bulk-update", h.BulkUpdate)
}

type apiRoot struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Root lists the top-level endpoints
func (h *CatalogHandler) Root(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, apiRoot{
		Message: "Food Catalog API",
		Version: APIVersion,
		Endpoints: map[string]string{
			"categories":  "/api/categories/",
			"products":    "/api/products/",
			"featured":    "/api/products/featured/",
			"search":      "/api/products/search/",
			"statistics":  "/api/statistics/",
			"bulk_update": "/api/bulk-update/",
			"uploads":     "/api/uploads/images/",
			"customers":   "/api/customers/",
		},
	})
}

// Statistics handles GET /statistics
func (h *CatalogHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statistics.Catalog(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// BulkUpdate handles POST /bulk-update
func (h *CatalogHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateRequest
	if err := middleware.DecodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	if len(req.ProductIDs) == 0 || len(req.UpdateData) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "product_ids and update_data are required")
		return
	}

	updated, err := h.products.BulkUpdate(r.Context(), req.ProductIDs, req.UpdateData)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Products bulk updated",
		zap.Int("requested", len(req.ProductIDs)),
		zap.Int64("updated", updated),
	)
	middleware.RespondWithJSON(w, http.StatusOK, BulkUpdateResponse{
		Message:      fmt.Sprintf("Successfully updated %d products", updated),
		UpdatedCount: updated,
	})
}
