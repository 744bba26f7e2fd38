// AngelaMos | 2026
// handler_test.go

package tenant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recims/backend/internal/feature"
	"github.com/recims/backend/internal/middleware"
)

type staticVerifier map[string]*middleware.AccessTokenClaims

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (*middleware.AccessTokenClaims, error) {
	if c, ok := v[token]; ok {
		return c, nil
	}
	return nil, context.Canceled
}

var verifier = staticVerifier{
	"ct-admin": {UserID: "u-2", Role: "phase3_admin", DetailedRole: "admin", TenantID: "connecticut_metals"},
	"super":    {UserID: "u-1", Role: "super_admin", DetailedRole: "superadmin", TenantID: "TNT-001"},
}

func newTestRouter(repo *fakeRepo) http.Handler {
	svc := NewService(repo, fakeToggles{{Key: "enable_po_module", Value: "true"}}, nil, DefaultConfig())
	h := NewHandler(svc, nil)

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.OptionalAuth(verifier), middleware.Authenticator(verifier))
	h.RegisterAdminRoutes(r,
		middleware.Authenticator(verifier),
		middleware.RequirePermission("can_manage_tenants"),
	)
	return r
}

func do(t *testing.T, h http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func TestGetConfigForCallerTenant(t *testing.T) {
	h := newTestRouter(newFakeRepo(connecticutMetals()))

	rec, body := do(t, h, http.MethodGet, "/tenant/config", "ct-admin", "")
	require.Equal(t, http.StatusOK, rec.Code)

	d := data(t, body)
	assert.Equal(t, "connecticut_metals", d["tenant_id"])
	features := d["features"].(map[string]any)
	assert.Equal(t, true, features["po_module_enabled"])
}

func TestGetConfigAnonymousUsesQueryOrDefault(t *testing.T) {
	h := newTestRouter(newFakeRepo(connecticutMetals()))

	rec, body := do(t, h, http.MethodGet, "/tenant/theme?tenant=connecticut_metals", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#1E3A8A", data(t, body)["primaryColor"])

	rec, body = do(t, h, http.MethodGet, "/tenant/config", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, data(t, body)["is_default"])
}

func TestFormatRequiresNumericAmount(t *testing.T) {
	h := newTestRouter(newFakeRepo(connecticutMetals()))

	rec, _ := do(t, h, http.MethodGet, "/tenant/format?amount=abc", "ct-admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/tenant/format?amount=1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := do(t, h, http.MethodGet, "/tenant/format?amount=1234.5", "ct-admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "USD", data(t, body)["currency"])
}

func TestAdminRoutesRequireManageTenants(t *testing.T) {
	h := newTestRouter(newFakeRepo(connecticutMetals()))

	rec, _ := do(t, h, http.MethodGet, "/admin/tenants", "ct-admin", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/admin/tenants", "super", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/admin/tenants/ghost/config", "super", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateFeaturesAcceptsStringOrObject(t *testing.T) {
	repo := newFakeRepo(connecticutMetals())
	h := newTestRouter(repo)

	rec, _ := do(t, h, http.MethodPut, "/admin/tenants/connecticut_metals/features", "super",
		`{"features": "{\"kpi_dashboard_enabled\": \"true\"}"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kpi_dashboard_enabled": "true"}`, *repo.tenants["connecticut_metals"].FeaturesJSON)

	rec, body := do(t, h, http.MethodPut, "/admin/tenants/connecticut_metals/features", "super",
		`{"features": {"invoicing_enabled": true}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	features := data(t, body)["features"].(map[string]any)
	assert.Equal(t, true, features["invoicing_enabled"])

	rec, _ = do(t, h, http.MethodPut, "/admin/tenants/connecticut_metals/features", "super",
		`{"features": [1, 2]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFeatureStateShowsEveryStage(t *testing.T) {
	h := newTestRouter(newFakeRepo(connecticutMetals()))

	rec, body := do(t, h, http.MethodGet, "/admin/tenants/connecticut_metals/features", "super", "")
	require.Equal(t, http.StatusOK, rec.Code)

	d := data(t, body)
	var state feature.State
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &state))

	assert.Equal(t, "x", state.Base["label"])
	assert.Equal(t, "x", state.Merged["label"])
	assert.NotContains(t, state.Flags, "label")
	assert.True(t, state.Toggles["enable_po_module"])
}
