// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/permission"
	"github.com/recims/backend/internal/phase"
)

type fakeVerifier map[string]*AccessTokenClaims

func (f fakeVerifier) VerifyAccessToken(_ context.Context, token string) (*AccessTokenClaims, error) {
	if token == "expired" {
		return nil, core.ErrTokenExpired
	}
	claims, ok := f[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return claims, nil
}

func intPtr(v int) *int { return &v }

var testVerifier = fakeVerifier{
	"super": {
		UserID:       "u-1",
		Role:         "super_admin",
		DetailedRole: "superadmin",
		TenantID:     "TNT-001",
	},
	"phase3": {
		UserID:       "u-2",
		Role:         "phase3_admin",
		DetailedRole: "admin",
		TenantID:     "connecticut_metals",
		PhaseLimit:   intPtr(3),
	},
	"staff": {
		UserID:   "u-3",
		Role:     "warehouse_staff",
		TenantID: "TNT-001",
	},
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func TestAuthenticatorRejectsMissingAndBadTokens(t *testing.T) {
	h := Authenticator(testVerifier)(http.HandlerFunc(okHandler))

	rec := serve(h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

	rec = serve(h, "expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, rec))

	rec = serve(h, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec))
}

func TestAuthenticatorAttachesClaimsAndPermissions(t *testing.T) {
	var (
		gotTenant string
		gotPerms  permission.Permissions
		gotPhase  float64
	)
	h := Authenticator(testVerifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = GetTenantID(r.Context())
		gotPerms = GetPermissions(r.Context())
		gotPhase = GetMaxPhase(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := serve(h, "phase3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "connecticut_metals", gotTenant)
	assert.Equal(t, permission.RoleAdmin, gotPerms.Role)
	assert.True(t, gotPerms.CanManageUsers)
	assert.False(t, gotPerms.CanManageTenants)
	assert.Equal(t, float64(3), gotPhase)
}

func TestOptionalAuthPassesThrough(t *testing.T) {
	var authed bool
	var perms permission.Permissions
	h := OptionalAuth(testVerifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed = IsAuthenticated(r.Context())
		perms = GetPermissions(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := serve(h, "garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, authed)
	assert.Equal(t, permission.RoleNone, perms.Role)

	serve(h, "super")
	assert.True(t, authed)
	assert.True(t, perms.CanManageTenants)
}

func TestRequirePermission(t *testing.T) {
	h := Authenticator(testVerifier)(
		RequirePermission(permission.ManageTenants)(http.HandlerFunc(okHandler)),
	)

	assert.Equal(t, http.StatusOK, serve(h, "super").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "phase3").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "staff").Code)

	unauthenticated := RequirePermission(permission.ManageTenants)(http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusUnauthorized, serve(unauthenticated, "").Code)
}

func TestRequirePage(t *testing.T) {
	qc := Authenticator(testVerifier)(RequirePage("QualityControl")(http.HandlerFunc(okHandler)))
	dash := Authenticator(testVerifier)(RequirePage("Dashboard")(http.HandlerFunc(okHandler)))
	unknown := Authenticator(testVerifier)(RequirePage("SomeNewPage")(http.HandlerFunc(okHandler)))

	require.Equal(t, 4, phase.RequiredPhase("QualityControl"))

	assert.Equal(t, http.StatusForbidden, serve(qc, "phase3").Code)
	assert.Equal(t, http.StatusOK, serve(qc, "super").Code)
	assert.Equal(t, http.StatusOK, serve(dash, "phase3").Code)
	assert.Equal(t, http.StatusOK, serve(unknown, "phase3").Code)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, ExtractToken(req), tt.header)
	}
}

type countingVerifier struct {
	fakeVerifier
	calls int
}

func (c *countingVerifier) VerifyAccessToken(ctx context.Context, token string) (*AccessTokenClaims, error) {
	c.calls++
	return c.fakeVerifier.VerifyAccessToken(ctx, token)
}

func TestAuthenticatorReusesOuterClaims(t *testing.T) {
	v := &countingVerifier{fakeVerifier: testVerifier}
	h := OptionalAuth(v)(Authenticator(v)(OptionalAuth(v)(http.HandlerFunc(okHandler))))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer staff")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, v.calls)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
