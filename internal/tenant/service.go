// AngelaMos | 2026
// service.go

package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/feature"
	"github.com/recims/backend/internal/metrics"
	"github.com/recims/backend/internal/theme"
)

// ToggleSource supplies the global enable_* settings.
type ToggleSource interface {
	FeatureToggles(ctx context.Context) ([]feature.Setting, error)
}

// ConfigStore caches resolved configs. Get returns (nil, nil) on a miss.
type ConfigStore interface {
	Get(ctx context.Context, code string) (*Config, error)
	Set(ctx context.Context, code string, cfg *Config) error
	Invalidate(ctx context.Context, code string) error
	InvalidateAll(ctx context.Context) error
}

type Service struct {
	repo     Repository
	toggles  ToggleSource
	cache    ConfigStore
	defaults Config
}

// NewService wires the resolver. cache may be nil to disable caching;
// defaults is served for unknown tenant codes.
func NewService(
	repo Repository,
	toggles ToggleSource,
	cache ConfigStore,
	defaults Config,
) *Service {
	return &Service{
		repo:     repo,
		toggles:  toggles,
		cache:    cache,
		defaults: defaults,
	}
}

// ResolveConfig returns the tenant's configuration with merged feature
// flags and theme. An empty code means the default tenant, and a code with
// no matching row yields the injected defaults.
func (s *Service) ResolveConfig(ctx context.Context, code string) (*Config, error) {
	return s.resolve(ctx, code, false)
}

// LookupConfig is ResolveConfig without the default fallback: unknown
// codes return core.ErrNotFound.
func (s *Service) LookupConfig(ctx context.Context, code string) (*Config, error) {
	return s.resolve(ctx, code, true)
}

func (s *Service) resolve(ctx context.Context, code string, strict bool) (*Config, error) {
	ctx, span := core.StartSpan(ctx, "tenant.ResolveConfig")
	defer span.End()

	code = strings.TrimSpace(code)
	if code == "" {
		code = s.defaults.TenantID
	}
	span.SetAttributes(attribute.String("tenant.code", code))

	if cached := s.cached(ctx, code); cached != nil {
		span.SetAttributes(attribute.Bool("tenant.cache_hit", true))
		return cached, nil
	}

	t, err := s.repo.GetByCode(ctx, code)
	if errors.Is(err, core.ErrNotFound) && !strict {
		cfg := s.Defaults()
		return &cfg, nil
	}
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			core.SetSpanError(span, err)
		}
		return nil, fmt.Errorf("resolve tenant config: %w", err)
	}

	state, err := s.merge(ctx, t)
	if err != nil {
		core.SetSpanError(span, err)
		return nil, err
	}

	cfg := buildConfig(t, state.Flags)

	if s.cache != nil {
		if err := s.cache.Set(ctx, code, cfg); err != nil {
			slog.WarnContext(ctx, "tenant config cache write failed",
				"tenant", code,
				"error", err,
			)
		}
	}

	return cfg, nil
}

// FeatureState returns the full merge for a tenant, bypassing the cache.
func (s *Service) FeatureState(ctx context.Context, code string) (*feature.State, error) {
	t, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	state, err := s.merge(ctx, t)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Service) List(ctx context.Context) ([]Tenant, error) {
	return s.repo.List(ctx)
}

// UpdateFeatures replaces the tenant's features_json. raw must be empty
// or a JSON object, given either as text or as an object.
func (s *Service) UpdateFeatures(
	ctx context.Context,
	code string,
	raw feature.Raw,
) (*Config, error) {
	if err := feature.Validate(raw); err != nil {
		return nil, fmt.Errorf("update features: %w: %w", core.ErrInvalidInput, err)
	}

	encoded, err := raw.Encode()
	if err != nil {
		return nil, fmt.Errorf("update features: %w: %w", core.ErrInvalidInput, err)
	}

	t, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFeatures(ctx, t.ID, encoded); err != nil {
		return nil, err
	}

	s.invalidate(ctx, t)
	return s.ResolveConfig(ctx, t.Key())
}

// UpdateBranding normalizes colors to #RRGGBB and rejects anything that
// is not a six digit hex value.
func (s *Service) UpdateBranding(
	ctx context.Context,
	code string,
	req UpdateBrandingRequest,
) (*Config, error) {
	primary, err := normalizeColor("primary_color", req.PrimaryColor)
	if err != nil {
		return nil, err
	}
	secondary, err := normalizeColor("secondary_color", req.SecondaryColor)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	err = s.repo.UpdateBranding(ctx, t.ID, Branding{
		DisplayName:    req.DisplayName,
		PrimaryColor:   primary,
		SecondaryColor: secondary,
		LogoURL:        req.LogoURL,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, t)
	return s.ResolveConfig(ctx, t.Key())
}

// Defaults returns a copy of the injected default config.
func (s *Service) Defaults() Config {
	cfg := s.defaults
	cfg.Features = maps.Clone(s.defaults.Features)
	if cfg.Features == nil {
		cfg.Features = map[string]bool{}
	}
	return cfg
}

func (s *Service) merge(ctx context.Context, t *Tenant) (feature.State, error) {
	toggles, err := s.toggles.FeatureToggles(ctx)
	if err != nil {
		return feature.State{}, fmt.Errorf("load feature toggles: %w", err)
	}

	state := feature.Merge(t.Features(), toggles)
	if state.InvalidJSON {
		metrics.FeatureParseFailures.Inc()
	}
	return state, nil
}

func (s *Service) cached(ctx context.Context, code string) *Config {
	if s.cache == nil {
		return nil
	}

	cfg, err := s.cache.Get(ctx, code)
	if err != nil {
		slog.WarnContext(ctx, "tenant config cache read failed",
			"tenant", code,
			"error", err,
		)
		return nil
	}
	return cfg
}

// invalidate drops every key the tenant may have been cached under.
func (s *Service) invalidate(ctx context.Context, t *Tenant) {
	if s.cache == nil {
		return
	}

	keys := map[string]struct{}{t.Key(): {}}
	for _, k := range []*string{t.TenantID, t.Code, t.TenantCode} {
		if k != nil && *k != "" {
			keys[*k] = struct{}{}
		}
	}

	for k := range keys {
		if err := s.cache.Invalidate(ctx, k); err != nil {
			slog.WarnContext(ctx, "tenant config cache invalidation failed",
				"tenant", k,
				"error", err,
			)
		}
	}
}

func normalizeColor(field string, p *string) (*string, error) {
	if p == nil {
		return nil, nil
	}
	if !theme.IsHex(*p) {
		return nil, fmt.Errorf("%s must be a six digit hex color: %w", field, core.ErrInvalidInput)
	}
	v := theme.NormalizeHex(*p, "")
	return &v, nil
}

func buildConfig(t *Tenant, flags map[string]bool) *Config {
	palette := theme.Resolve(t.ThemeInput())
	name := strOr(t.DisplayName, t.Name)

	return &Config{
		ID:               t.ID,
		TenantID:         t.Key(),
		Code:             strOr(t.Code, t.Key()),
		Name:             t.Name,
		DisplayName:      name,
		Region:           strOr(t.Region, defaultRegion),
		Status:           strings.ToUpper(strOr(t.Status, StatusActive)),
		BaseSubdomain:    strOr(t.BaseSubdomain, strOr(t.Code, t.Key())),
		BusinessType:     strOr(t.BusinessType, defaultBusinessType),
		PrimaryColor:     palette.PrimaryColor,
		SecondaryColor:   palette.SecondaryColor,
		LogoURL:          str(t.LogoURL),
		Currency:         strOr(t.Currency, defaultCurrency),
		Country:          strOr(t.Country, defaultCountry),
		Timezone:         strOr(t.Timezone, defaultTimezone),
		Locale:           strOr(t.Locale, defaultLocale),
		DateFormat:       strOr(t.DateFormat, defaultDateFormat),
		UnitSystem:       strOr(t.UnitSystem, defaultUnitSystem),
		NumberFormat:     jsonOr(t.NumberFormatJSON, `{}`),
		DefaultLoadTypes: jsonOr(t.DefaultLoadTypesJSON, `[]`),
		Address: Address{
			Line1:         str(t.AddressLine1),
			Line2:         str(t.AddressLine2),
			City:          str(t.City),
			StateProvince: str(t.StateProvince),
			PostalCode:    str(t.PostalCode),
			Phone:         str(t.Phone),
			Email:         str(t.Email),
			Website:       str(t.Website),
		},
		Features: flags,
		Theme:    palette,
	}
}
