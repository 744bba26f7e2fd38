// AngelaMos | 2026
// guard.go

package middleware

import (
	"net/http"

	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/permission"
	"github.com/recims/backend/internal/phase"
)

// RequirePermission rejects callers whose resolved permissions lack c.
// It must run after Authenticator.
func RequirePermission(c permission.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAuthenticated(r.Context()) {
				core.JSONError(w, core.UnauthorizedError("authentication required"))
				return
			}

			if !GetPermissions(r.Context()).Has(c) {
				core.JSONError(w, core.ForbiddenError("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePage rejects callers whose phase limit is below the page's
// required phase.
func RequirePage(page string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAuthenticated(r.Context()) {
				core.JSONError(w, core.UnauthorizedError("authentication required"))
				return
			}

			if !phase.CanAccessPage(page, GetMaxPhase(r.Context())) {
				core.JSONError(w, core.ForbiddenError("page not available in your phase"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
