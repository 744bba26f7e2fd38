// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/permission"
	"github.com/recims/backend/internal/phase"
)

const (
	UserIDKey      contextKey = "user_id"
	ClaimsKey      contextKey = "jwt_claims"
	PermissionsKey contextKey = "permissions"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

type AccessTokenClaims struct {
	UserID       string
	Role         string
	DetailedRole string
	TenantID     string
	PhaseLimit   *int
	TokenVersion int
}

// Subject is the view of the claims the permission resolver reads.
func (c *AccessTokenClaims) Subject() *permission.Subject {
	return &permission.Subject{Role: c.Role, DetailedRole: c.DetailedRole}
}

func (c *AccessTokenClaims) MaxPhase() float64 {
	return phase.LimitFor(c.PhaseLimit)
}

// Authenticator requires a valid access token. Claims already attached by
// an outer OptionalAuth are reused.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetClaims(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present and lets the
// request through either way.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token != "" && GetClaims(r.Context()) == nil {
				claims, err := verifier.VerifyAccessToken(r.Context(), token)
				if err == nil {
					r = r.WithContext(withClaims(r.Context(), claims))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// withClaims stores the claims and the permissions they resolve to, so
// guards further down the chain do not resolve them again.
func withClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	ctx = context.WithValue(ctx, PermissionsKey, permission.For(claims.Subject()))
	return ctx
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}

func GetTenantID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.TenantID
	}
	return ""
}

// GetPermissions returns the caller's permissions. Unauthenticated
// requests resolve to the empty "none" set.
func GetPermissions(ctx context.Context) permission.Permissions {
	if p, ok := ctx.Value(PermissionsKey).(permission.Permissions); ok {
		return p
	}
	return permission.For(nil)
}

// GetMaxPhase is unlimited for unauthenticated requests; route guards
// requiring a phase must sit behind Authenticator.
func GetMaxPhase(ctx context.Context) float64 {
	if claims := GetClaims(ctx); claims != nil {
		return claims.MaxPhase()
	}
	return phase.Unlimited
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}
