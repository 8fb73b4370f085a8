package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// Feature: food-catalog, Property 18: Only admins and staff may write
func TestProperty_RequireStaffGatesOnRole(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("roles other than admin and staff get 403", prop.ForAll(
		func(role string) bool {
			handler := RequireStaff(zap.NewNop())(okHandler())

			req := httptest.NewRequest(http.MethodDelete, "/api/products/pad-thai", nil)
			req = req.WithContext(context.WithValue(req.Context(), RoleKey, role))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if role == RoleAdmin || role == RoleStaff {
				return w.Code == http.StatusOK
			}
			return w.Code == http.StatusForbidden
		},
		gen.OneGenOf(gen.OneConstOf(RoleAdmin, RoleStaff), gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRequireRoleWithoutAuthentication(t *testing.T) {
	handler := RequireRole([]string{RoleAdmin}, zap.NewNop())(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/categories", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), permissionDenied)
}
