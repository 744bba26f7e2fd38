// AngelaMos | 2026
// service.go

package setting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/feature"
)

// CacheInvalidator drops every cached value derived from settings.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

type Service struct {
	repo  Repository
	cache CacheInvalidator
}

func NewService(repo Repository, cache CacheInvalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// FeatureToggles returns the enable_* rows in the shape the feature merge
// consumes.
func (s *Service) FeatureToggles(ctx context.Context) ([]feature.Setting, error) {
	rows, err := s.repo.ListByPrefix(ctx, feature.TogglePrefix)
	if err != nil {
		return nil, fmt.Errorf("feature toggles: %w", err)
	}

	out := make([]feature.Setting, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToFeatureSetting())
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, prefix string) ([]AppSetting, error) {
	return s.repo.ListByPrefix(ctx, prefix)
}

func (s *Service) Get(ctx context.Context, key string) (*AppSetting, error) {
	return s.repo.Get(ctx, key)
}

// Set writes key. Toggle keys only accept "true" or "false" so that what
// the merge reads as true is exactly what an admin wrote.
func (s *Service) Set(
	ctx context.Context,
	key, value string,
	description *string,
) (*AppSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("set setting: empty key: %w", core.ErrInvalidInput)
	}

	if strings.HasPrefix(key, feature.TogglePrefix) {
		value = strings.ToLower(strings.TrimSpace(value))
		if value != "true" && value != "false" {
			return nil, fmt.Errorf(
				"set setting: toggle %q must be true or false: %w",
				key,
				core.ErrInvalidInput,
			)
		}
	}

	row := &AppSetting{
		SettingKey:   key,
		SettingValue: value,
		Description:  description,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, err
	}

	s.invalidate(ctx, key)
	return row, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}

	s.invalidate(ctx, key)
	return nil
}

// invalidate is best effort: the cache TTL bounds staleness if redis is
// unreachable.
func (s *Service) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		slog.WarnContext(ctx, "tenant config cache invalidation failed",
			"setting_key", key,
			"error", err,
		)
	}
}
