// AngelaMos | 2026
// service_test.go

package setting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/feature"
)

type fakeRepo struct {
	rows map[string]AppSetting
	err  error
}

func newFakeRepo(kv ...string) *fakeRepo {
	r := &fakeRepo{rows: map[string]AppSetting{}}
	for i := 0; i+1 < len(kv); i += 2 {
		r.rows[kv[i]] = AppSetting{SettingKey: kv[i], SettingValue: kv[i+1]}
	}
	return r
}

func (r *fakeRepo) ListByPrefix(_ context.Context, prefix string) ([]AppSetting, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []AppSetting
	for k, v := range r.rows {
		if strings.HasPrefix(k, prefix) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeRepo) Get(_ context.Context, key string) (*AppSetting, error) {
	s, ok := r.rows[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &s, nil
}

func (r *fakeRepo) Upsert(_ context.Context, s *AppSetting) error {
	if r.err != nil {
		return r.err
	}
	s.UpdatedAt = time.Now()
	r.rows[s.SettingKey] = *s
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, key string) error {
	if _, ok := r.rows[key]; !ok {
		return core.ErrNotFound
	}
	delete(r.rows, key)
	return nil
}

type fakeCache struct {
	calls int
	err   error
}

func (c *fakeCache) InvalidateAll(context.Context) error {
	c.calls++
	return c.err
}

func TestFeatureTogglesOnlyReturnsEnablePrefix(t *testing.T) {
	repo := newFakeRepo(
		"enable_po_module", "true",
		"enable_qc", "false",
		"company_name", "Acme",
	)
	svc := NewService(repo, nil)

	toggles, err := svc.FeatureToggles(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []feature.Setting{
		{Key: "enable_po_module", Value: "true"},
		{Key: "enable_qc", Value: "false"},
	}, toggles)
}

func TestFeatureTogglesWrapsRepositoryError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection reset")
	svc := NewService(repo, nil)

	_, err := svc.FeatureToggles(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.err)
}

func TestSetToggleValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{"toggle true", "enable_po_module", "true", "true", false},
		{"toggle normalized", "enable_po_module", " TRUE ", "true", false},
		{"toggle false", "enable_so_module", "false", "false", false},
		{"toggle rejects yes", "enable_so_module", "yes", "", true},
		{"toggle rejects 1", "enable_so_module", "1", "", true},
		{"plain setting free text", "company_name", "Acme Metals", "Acme Metals", false},
		{"empty key", "  ", "x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &fakeCache{}
			svc := NewService(newFakeRepo(), cache)

			got, err := svc.Set(context.Background(), tt.key, tt.value, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrInvalidInput)
				assert.Zero(t, cache.calls)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.SettingValue)
			assert.Equal(t, 1, cache.calls)
		})
	}
}

func TestSetSurvivesCacheFailure(t *testing.T) {
	cache := &fakeCache{err: errors.New("redis down")}
	svc := NewService(newFakeRepo(), cache)

	got, err := svc.Set(context.Background(), "enable_qc", "true", nil)
	require.NoError(t, err)
	assert.Equal(t, "true", got.SettingValue)
	assert.Equal(t, 1, cache.calls)
}

func TestDeleteInvalidatesCache(t *testing.T) {
	cache := &fakeCache{}
	svc := NewService(newFakeRepo("enable_qc", "true"), cache)

	require.NoError(t, svc.Delete(context.Background(), "enable_qc"))
	assert.Equal(t, 1, cache.calls)

	err := svc.Delete(context.Background(), "enable_qc")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 1, cache.calls)
}
