// AngelaMos | 2026
// handler.go

package setting

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/recims/backend/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterAdminRoutes mounts /admin/settings behind authenticator and the
// settings capability guard.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, guard func(http.Handler) http.Handler,
) {
	r.Route("/admin/settings", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(guard)

		r.Get("/", h.List)
		r.Get("/{key}", h.Get)
		r.Put("/{key}", h.Put)
		r.Delete("/{key}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.List(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSettingResponseList(settings))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "setting")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSettingResponse(s))
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var req UpsertSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	s, err := h.service.Set(
		r.Context(),
		chi.URLParam(r, "key"),
		req.Value,
		req.Description,
	)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSettingResponse(s))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "setting")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}
