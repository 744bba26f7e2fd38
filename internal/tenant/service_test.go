// AngelaMos | 2026
// service_test.go

package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/feature"
	"github.com/recims/backend/internal/theme"
)

func sp(s string) *string { return &s }

type fakeRepo struct {
	tenants map[string]*Tenant
	lookups int
	err     error
}

func newFakeRepo(tenants ...*Tenant) *fakeRepo {
	r := &fakeRepo{tenants: map[string]*Tenant{}}
	for _, t := range tenants {
		r.tenants[t.Key()] = t
	}
	return r
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*Tenant, error) {
	for _, t := range r.tenants {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) GetByCode(_ context.Context, code string) (*Tenant, error) {
	r.lookups++
	if r.err != nil {
		return nil, r.err
	}
	for _, t := range r.tenants {
		if t.Key() == code || (t.Code != nil && *t.Code == code) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) List(context.Context) ([]Tenant, error) {
	out := make([]Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeRepo) UpdateFeatures(_ context.Context, id int64, featuresJSON *string) error {
	for _, t := range r.tenants {
		if t.ID == id {
			t.FeaturesJSON = featuresJSON
			return nil
		}
	}
	return core.ErrNotFound
}

func (r *fakeRepo) UpdateBranding(_ context.Context, id int64, b Branding) error {
	for _, t := range r.tenants {
		if t.ID != id {
			continue
		}
		if b.PrimaryColor != nil {
			t.PrimaryColor = b.PrimaryColor
		}
		if b.SecondaryColor != nil {
			t.SecondaryColor = b.SecondaryColor
		}
		if b.DisplayName != nil {
			t.DisplayName = b.DisplayName
		}
		return nil
	}
	return core.ErrNotFound
}

type fakeToggles []feature.Setting

func (f fakeToggles) FeatureToggles(context.Context) ([]feature.Setting, error) {
	return f, nil
}

func connecticutMetals() *Tenant {
	return &Tenant{
		ID:             2,
		Name:           "Connecticut Metals",
		TenantID:       sp("connecticut_metals"),
		Code:           sp("connecticut_metals"),
		Region:         sp("USA"),
		Status:         sp("active"),
		PrimaryColor:   sp("1e3a8a"),
		SecondaryColor: sp("#F59E0B"),
		Currency:       sp("USD"),
		FeaturesJSON:   sp(`{"po_module_enabled": "true", "qc_enabled": false, "label": "x"}`),
	}
}

func newTestCache(t *testing.T) (*ConfigCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewConfigCache(rdb, "tenant:config", time.Minute), mr
}

func TestResolveConfigMergesFeaturesAndTheme(t *testing.T) {
	svc := NewService(
		newFakeRepo(connecticutMetals()),
		fakeToggles{{Key: "enable_quality_control", Value: "true"}},
		nil,
		DefaultConfig(),
	)

	cfg, err := svc.ResolveConfig(context.Background(), "connecticut_metals")
	require.NoError(t, err)

	assert.Equal(t, "connecticut_metals", cfg.TenantID)
	assert.Equal(t, "Connecticut Metals", cfg.DisplayName)
	assert.Equal(t, "ACTIVE", cfg.Status)
	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, "#1E3A8A", cfg.Theme.PrimaryColor)
	assert.Equal(t, "#1E3A8A", cfg.PrimaryColor)
	assert.Equal(t, "#F59E0B", cfg.Theme.SecondaryColor)
	assert.JSONEq(t, `{}`, string(cfg.NumberFormat))
	assert.JSONEq(t, `[]`, string(cfg.DefaultLoadTypes))

	assert.True(t, cfg.FeatureEnabled("po_module_enabled"))
	assert.True(t, cfg.FeatureEnabled("qc_enabled"))
	assert.NotContains(t, cfg.Features, "label")
	assert.False(t, cfg.IsDefault)
}

func TestResolveConfigUnknownTenantUsesDefaults(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeToggles{}, nil, DefaultConfig())

	cfg, err := svc.ResolveConfig(context.Background(), "nope")
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault)
	assert.Equal(t, DefaultTenantID, cfg.TenantID)
	assert.Equal(t, theme.DefaultPrimary, cfg.Theme.PrimaryColor)

	cfg.Features["po_module_enabled"] = true
	again, err := svc.ResolveConfig(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, again.Features)

	_, err = svc.LookupConfig(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolveConfigPropagatesStoreErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection refused")
	svc := NewService(repo, fakeToggles{}, nil, DefaultConfig())

	_, err := svc.ResolveConfig(context.Background(), "connecticut_metals")
	assert.ErrorIs(t, err, repo.err)
}

func TestResolveConfigUsesCache(t *testing.T) {
	cache, mr := newTestCache(t)
	repo := newFakeRepo(connecticutMetals())
	svc := NewService(repo, fakeToggles{}, cache, DefaultConfig())
	ctx := context.Background()

	first, err := svc.ResolveConfig(ctx, "connecticut_metals")
	require.NoError(t, err)
	assert.True(t, mr.Exists("tenant:config:connecticut_metals"))

	second, err := svc.ResolveConfig(ctx, "connecticut_metals")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lookups)
	assert.Equal(t, first, second)

	mr.FastForward(2 * time.Minute)
	_, err = svc.ResolveConfig(ctx, "connecticut_metals")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lookups)
}

func TestResolveConfigBypassesBrokenCache(t *testing.T) {
	cache, mr := newTestCache(t)
	repo := newFakeRepo(connecticutMetals())
	svc := NewService(repo, fakeToggles{}, cache, DefaultConfig())
	mr.Close()

	cfg, err := svc.ResolveConfig(context.Background(), "connecticut_metals")
	require.NoError(t, err)
	assert.Equal(t, "connecticut_metals", cfg.TenantID)
}

func TestUpdateFeaturesInvalidatesCache(t *testing.T) {
	cache, mr := newTestCache(t)
	svc := NewService(newFakeRepo(connecticutMetals()), fakeToggles{}, cache, DefaultConfig())
	ctx := context.Background()

	_, err := svc.ResolveConfig(ctx, "connecticut_metals")
	require.NoError(t, err)
	require.True(t, mr.Exists("tenant:config:connecticut_metals"))

	cfg, err := svc.UpdateFeatures(ctx, "connecticut_metals",
		feature.RawObject(map[string]any{"invoicing_enabled": true}))
	require.NoError(t, err)
	assert.True(t, cfg.FeatureEnabled("invoicing_enabled"))
	assert.False(t, cfg.FeatureEnabled("po_module_enabled"))
}

func TestUpdateFeaturesRejectsNonObjects(t *testing.T) {
	svc := NewService(newFakeRepo(connecticutMetals()), fakeToggles{}, nil, DefaultConfig())

	_, err := svc.UpdateFeatures(context.Background(), "connecticut_metals", feature.RawString(`[1]`))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.UpdateFeatures(context.Background(), "missing", feature.RawString(`{}`))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateBrandingNormalizesColors(t *testing.T) {
	svc := NewService(newFakeRepo(connecticutMetals()), fakeToggles{}, nil, DefaultConfig())

	cfg, err := svc.UpdateBranding(context.Background(), "connecticut_metals", UpdateBrandingRequest{
		PrimaryColor: sp("00ff00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "#00FF00", cfg.Theme.PrimaryColor)
	assert.Equal(t, "#F59E0B", cfg.Theme.SecondaryColor)

	_, err = svc.UpdateBranding(context.Background(), "connecticut_metals", UpdateBrandingRequest{
		SecondaryColor: sp("red"),
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestInvalidateAllClearsEveryTenant(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", &Config{TenantID: "a"}))
	require.NoError(t, cache.Set(ctx, "b", &Config{TenantID: "b"}))
	require.NoError(t, mr.Set("unrelated", "1"))

	require.NoError(t, cache.InvalidateAll(ctx))
	assert.False(t, mr.Exists("tenant:config:a"))
	assert.False(t, mr.Exists("tenant:config:b"))
	assert.True(t, mr.Exists("unrelated"))
}

func TestLocaleOptionsReadsDecimals(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, -1, cfg.LocaleOptions().Decimals)

	cfg.NumberFormat = []byte(`{"decimals": 3}`)
	cfg.Locale = "de-DE"
	cfg.Currency = "EUR"
	opts := cfg.LocaleOptions()
	assert.Equal(t, 3, opts.Decimals)
	assert.Equal(t, "de-DE", opts.Locale)
	assert.Equal(t, "EUR", opts.Currency)
}
