// AngelaMos | 2026
// repository.go

package setting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recims/backend/internal/core"
)

type Repository interface {
	ListByPrefix(ctx context.Context, prefix string) ([]AppSetting, error)
	Get(ctx context.Context, key string) (*AppSetting, error)
	Upsert(ctx context.Context, s *AppSetting) error
	Delete(ctx context.Context, key string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// ListByPrefix returns settings whose key starts with prefix, ordered by
// key. An empty prefix lists everything.
func (r *repository) ListByPrefix(
	ctx context.Context,
	prefix string,
) ([]AppSetting, error) {
	query := `
		SELECT id, setting_key, setting_value, description, updated_at
		FROM app_settings
		WHERE starts_with(setting_key, $1)
		ORDER BY setting_key`

	var settings []AppSetting
	if err := r.db.SelectContext(ctx, &settings, query, prefix); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	return settings, nil
}

func (r *repository) Get(ctx context.Context, key string) (*AppSetting, error) {
	query := `
		SELECT id, setting_key, setting_value, description, updated_at
		FROM app_settings
		WHERE setting_key = $1`

	var s AppSetting
	err := r.db.GetContext(ctx, &s, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get setting: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}

	return &s, nil
}

// Upsert writes s by key. A nil Description keeps the stored one.
func (r *repository) Upsert(ctx context.Context, s *AppSetting) error {
	query := `
		INSERT INTO app_settings (setting_key, setting_value, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (setting_key) DO UPDATE SET
			setting_value = EXCLUDED.setting_value,
			description   = COALESCE(EXCLUDED.description, app_settings.description),
			updated_at    = NOW()
		RETURNING id, description, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		s.SettingKey,
		s.SettingValue,
		s.Description,
	)
	if err := row.Scan(&s.ID, &s.Description, &s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM app_settings WHERE setting_key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete setting: %w", core.ErrNotFound)
	}

	return nil
}
