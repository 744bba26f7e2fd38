// AngelaMos | 2026
// handler_test.go

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recims/backend/internal/middleware"
)

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(t *testing.T) (http.Handler, *Service) {
	t.Helper()

	svc, _, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(svc), passthrough)
	return r, svc
}

func doJSON(
	t *testing.T,
	h http.Handler,
	method, path, token string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loginOverHTTP(t *testing.T, h http.Handler) AuthResponse {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "admin@connecticutmetals.com",
		Password: testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestHandlerLogin(t *testing.T) {
	h, _ := newTestRouter(t)

	resp := loginOverHTTP(t, h)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.Equal(t, "connecticut_metals", resp.User.TenantID)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", LoginRequest{Email: "admin@connecticutmetals.com", Password: "wrong-password"}, http.StatusUnauthorized},
		{"invalid email", LoginRequest{Email: "not-an-email", Password: testPassword}, http.StatusBadRequest},
		{"empty body", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/auth/login", "", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandlerMe(t *testing.T) {
	h, _ := newTestRouter(t)
	resp := loginOverHTTP(t, h)

	rec := doJSON(t, h, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/auth/me", resp.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "admin", body.Data.User.DetailedRole)
	require.NotNil(t, body.Data.User.PhaseLimit)
	assert.Equal(t, 3, *body.Data.User.PhaseLimit)

	assert.Equal(t, "admin", body.Data.Access.Permissions.Role)
	require.NotNil(t, body.Data.Access.MaxPhase)
	assert.Equal(t, 3, *body.Data.Access.MaxPhase)
	assert.NotContains(t, body.Data.Access.AccessiblePages, "QualityControl")

	require.NotNil(t, body.Data.Tenant)
	assert.Equal(t, "connecticut_metals", body.Data.Tenant.TenantID)
}

func TestHandlerLogoutAllRevokesAccessToken(t *testing.T) {
	h, _ := newTestRouter(t)
	resp := loginOverHTTP(t, h)
	token := resp.Tokens.AccessToken

	rec := doJSON(t, h, http.MethodPost, "/auth/logout-all", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/refresh", "", RefreshRequest{
		RefreshToken: resp.Tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
