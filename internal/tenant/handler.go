// AngelaMos | 2026
// handler.go

package tenant

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/locale"
	"github.com/recims/backend/internal/middleware"
)

type Handler struct {
	service    *Service
	formatters *locale.Cache
	validator  *validator.Validate
}

func NewHandler(service *Service, formatters *locale.Cache) *Handler {
	if formatters == nil {
		formatters = locale.NewCache()
	}
	return &Handler{
		service:    service,
		formatters: formatters,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the caller-facing tenant endpoints. optionalAuth
// lets the login screen fetch branding before a session exists.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth, authenticator func(http.Handler) http.Handler,
) {
	r.Route("/tenant", func(r chi.Router) {
		r.With(optionalAuth).Get("/config", h.GetConfig)
		r.With(optionalAuth).Get("/theme", h.GetTheme)
		r.With(authenticator).Get("/format", h.Format)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, guard func(http.Handler) http.Handler,
) {
	r.Route("/admin/tenants", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(guard)

		r.Get("/", h.List)
		r.Get("/{code}/config", h.GetTenantConfig)
		r.Get("/{code}/features", h.GetFeatureState)
		r.Put("/{code}/features", h.UpdateFeatures)
		r.Put("/{code}/branding", h.UpdateBranding)
	})
}

// requestTenant is the caller's tenant, or the ?tenant= query parameter
// for anonymous callers.
func requestTenant(r *http.Request) string {
	if code := middleware.GetTenantID(r.Context()); code != "" {
		return code
	}
	return r.URL.Query().Get("tenant")
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.ResolveConfig(r.Context(), requestTenant(r))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, cfg)
}

func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.ResolveConfig(r.Context(), requestTenant(r))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, cfg.Theme)
}

func (h *Handler) Format(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		core.BadRequest(w, "amount must be a number")
		return
	}

	cfg, err := h.service.ResolveConfig(r.Context(), middleware.GetTenantID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	f := h.formatters.Get(cfg.LocaleOptions())
	core.OK(w, FormatResponse{
		Amount:    amount,
		Number:    f.Number(amount),
		Currency:  f.CurrencyCode(),
		Formatted: f.Currency(amount),
		Options:   f.Options(),
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSummaryResponseList(tenants))
}

func (h *Handler) GetTenantConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.LookupConfig(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, cfg)
}

// GetFeatureState exposes every stage of the feature merge for debugging
// why a flag is on or off.
func (h *Handler) GetFeatureState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.FeatureState(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, state)
}

func (h *Handler) UpdateFeatures(w http.ResponseWriter, r *http.Request) {
	var req UpdateFeaturesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	cfg, err := h.service.UpdateFeatures(r.Context(), chi.URLParam(r, "code"), req.Features)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, cfg)
}

func (h *Handler) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	var req UpdateBrandingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	cfg, err := h.service.UpdateBranding(r.Context(), chi.URLParam(r, "code"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, cfg)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "tenant")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
