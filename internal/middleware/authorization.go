package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// Roles allowed to modify the catalog
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

const permissionDenied = "You do not have permission to perform this action."

// RequireStaff lets admins and staff through
func RequireStaff(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]string{RoleAdmin, RoleStaff}, logger)
}

// RequireRole middleware ensures the caller has one of the specified roles
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, permissionDenied)
				return
			}

			if !allowed[role] {
				logger.Warn("Role not authorized",
					zap.String("role", role),
					zap.Strings("allowed_roles", allowedRoles),
				)
				RespondWithError(w, http.StatusForbidden, permissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
