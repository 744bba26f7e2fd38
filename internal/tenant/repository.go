// AngelaMos | 2026
// repository.go

package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recims/backend/internal/core"
)

type Branding struct {
	DisplayName    *string
	PrimaryColor   *string
	SecondaryColor *string
	LogoURL        *string
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Tenant, error)
	GetByCode(ctx context.Context, code string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	UpdateFeatures(ctx context.Context, id int64, featuresJSON *string) error
	UpdateBranding(ctx context.Context, id int64, b Branding) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Tenant, error) {
	query := `SELECT ` + selectColumns + ` FROM tenants WHERE id = $1`

	var t Tenant
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tenant: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}

	return &t, nil
}

// GetByCode matches tenant_id first and falls back to the code column.
func (r *repository) GetByCode(ctx context.Context, code string) (*Tenant, error) {
	query := `SELECT ` + selectColumns + `
		FROM tenants
		WHERE tenant_id = $1 OR code = $1
		ORDER BY (tenant_id = $1) DESC NULLS LAST, id
		LIMIT 1`

	var t Tenant
	err := r.db.GetContext(ctx, &t, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tenant by code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant by code: %w", err)
	}

	return &t, nil
}

func (r *repository) List(ctx context.Context) ([]Tenant, error) {
	query := `SELECT ` + selectColumns + ` FROM tenants ORDER BY id`

	var tenants []Tenant
	if err := r.db.SelectContext(ctx, &tenants, query); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	return tenants, nil
}

func (r *repository) UpdateFeatures(
	ctx context.Context,
	id int64,
	featuresJSON *string,
) error {
	query := `
		UPDATE tenants
		SET features_json = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, featuresJSON)
	if err != nil {
		return fmt.Errorf("update tenant features: %w", err)
	}

	return requireRow(result, "update tenant features")
}

// UpdateBranding writes the non-nil fields of b.
func (r *repository) UpdateBranding(
	ctx context.Context,
	id int64,
	b Branding,
) error {
	query := `
		UPDATE tenants
		SET display_name    = COALESCE($2, display_name),
		    primary_color   = COALESCE($3, primary_color),
		    secondary_color = COALESCE($4, secondary_color),
		    logo_url        = COALESCE($5, logo_url),
		    updated_at      = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		id,
		b.DisplayName,
		b.PrimaryColor,
		b.SecondaryColor,
		b.LogoURL,
	)
	if err != nil {
		return fmt.Errorf("update tenant branding: %w", err)
	}

	return requireRow(result, "update tenant branding")
}

func requireRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
