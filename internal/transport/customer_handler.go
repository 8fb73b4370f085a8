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

// CustomerHandler handles HTTP requests for customer records
type CustomerHandler struct {
	customers service.CustomerService
	logger    *zap.Logger
}

func NewCustomerHandler(customers service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, logger: logger}
}

// RegisterRoutes registers the customer routes. Customer records are staff-only.
func (h *CustomerHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/customers", func(r chi.Router) {
		r.Use(guards.Staff)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, categoryPages)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.customers.List(r.Context(), page)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, paginated(r, result, identity[*domain.Customer]))
}

func (h *CustomerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.customers.Dashboard(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, dashboard)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	customer, err := h.customers.Create(r.Context(), req.input())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	var req CustomerRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	customer, err := h.customers.Update(r.Context(), id, req.input())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Customer deleted", zap.String("customer_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func customerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, notFoundMessage)
		return uuid.Nil, false
	}
	return id, true
}
