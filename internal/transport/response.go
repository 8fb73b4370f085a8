package transport

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"food-catalog/internal/domain"
	"food-catalog/internal/middleware"
	"food-catalog/internal/repository"
	"food-catalog/internal/storage"

	"go.uber.org/zap"
)

const notFoundMessage = "Not found."

// respondError maps service errors onto HTTP statuses. Validation errors are
// checked first because they may wrap a not-found cause.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *domain.ValidationError
	var fieldSetErr *domain.InvalidFieldSetError

	switch {
	case errors.As(err, &verr):
		middleware.RespondWithFieldErrors(w, verr.Fields)
	case errors.As(err, &fieldSetErr):
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, "Invalid fields: "+quoteList(fieldSetErr.Fields),
			map[string]interface{}{"invalid_fields": fieldSetErr.Fields})
	case errors.Is(err, domain.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusBadRequest, "Insufficient stock")
	case errors.Is(err, domain.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid quantity value")
	case errors.Is(err, domain.ErrInvalidStockAction):
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid action. Use add, reduce or set.")
	case errors.Is(err, storage.ErrUnsupportedImage):
		middleware.RespondWithError(w, http.StatusBadRequest, "Upload a valid image.")
	case errors.Is(err, middleware.ErrMalformedBody):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
	case errors.Is(err, domain.ErrInvalidPage):
		middleware.RespondWithError(w, http.StatusNotFound, "Invalid page.")
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrProductImageNotFound),
		errors.Is(err, repository.ErrCustomerNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, notFoundMessage)
	default:
		logger.Error("Request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondDecodeError reports a body that failed to decode or validate
func respondDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Request body rejected", zap.Error(err))
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

func quoteList(items []string) string {
	out := "["
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += strconv.Quote(item)
	}
	return out + "]"
}

// pageLimits are the default and maximum page sizes of a listing
type pageLimits struct {
	Default int
	Max     int
}

var (
	productPages  = pageLimits{Default: 12, Max: 100}
	categoryPages = pageLimits{Default: 20, Max: 50}
)

// pageRequest reads page and page_size. A page that is not a positive integer
// is an invalid page; a bad page_size falls back to the default.
func pageRequest(r *http.Request, limits pageLimits) (domain.PageRequest, error) {
	req := domain.PageRequest{Page: 1, PageSize: limits.Default}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return req, domain.ErrInvalidPage
		}
		req.Page = page
	}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			req.PageSize = min(size, limits.Max)
		}
	}
	return req, nil
}

type paginationMeta struct {
	Page        int     `json:"page"`
	Pages       int     `json:"pages"`
	PerPage     int     `json:"per_page"`
	Total       int     `json:"total"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	HasNext     bool    `json:"has_next"`
	HasPrevious bool    `json:"has_previous"`
}

type paginatedResponse[T any] struct {
	Pagination paginationMeta `json:"pagination"`
	Results    []T            `json:"results"`
}

func paginated[T, R any](r *http.Request, page *domain.Page[T], convert func(T) R) paginatedResponse[R] {
	results := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		results = append(results, convert(item))
	}

	meta := paginationMeta{
		Page:        page.Number,
		Pages:       page.Pages(),
		PerPage:     page.PageSize,
		Total:       page.Total,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
	}
	if meta.HasNext {
		meta.Next = pageLink(r, page.Number+1)
	}
	if meta.HasPrevious {
		meta.Previous = pageLink(r, page.Number-1)
	}

	return paginatedResponse[R]{Pagination: meta, Results: results}
}

func identity[T any](v T) T {
	return v
}

// pageLink rebuilds the absolute request URL pointing at page n
func pageLink(r *http.Request, n int) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	query := r.URL.Query()
	if n == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(n))
	}

	link := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: query.Encode()}
	s := link.String()
	return &s
}

// queryFlag reports whether the query parameter is literally "true", ignoring case
func queryFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// Guards are the middleware chains that protect routes
type Guards struct {
	// Authenticated requires a valid bearer token
	Authenticated func(http.Handler) http.Handler
	// Staff requires a valid bearer token carrying an admin or staff role
	Staff func(http.Handler) http.Handler
}

// NewGuards builds the route guards from the token secret
func NewGuards(jwtSecret string, logger *zap.Logger) Guards {
	authenticate := middleware.AuthMiddleware(jwtSecret, logger)
	requireStaff := middleware.RequireStaff(logger)

	return Guards{
		Authenticated: authenticate,
		Staff: func(next http.Handler) http.Handler {
			return authenticate(requireStaff(next))
		},
	}
}
