package middleware

import (
	"encoding/json"
	"net/http"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/auth"
	"github.com/frahmantamala/petshop-commerce/pkg/logger"
)

// RequirePermissions lets the request through when the authenticated user holds
// any of the given permissions. Admins hold all of them.
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				writeAppError(w, errors.NewUnauthorizedError("Authentication required", errors.ErrCodeInvalidToken))
				return
			}

			if !user.HasAnyPermission(permissions) {
				logger.From(r.Context()).Warn("access denied: user lacks required permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				writeAppError(w, errors.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
