// AngelaMos | 2026
// seed.go

package bootstrap

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/recims/backend/internal/core"
)

func (b *Bootstrapper) seed(
	ctx context.Context,
	tx core.DBTX,
	report *Report,
	superHash, restrictedHash string,
) error {
	var err error

	if report.DefaultTenant, err = seedDefaultTenant(ctx, tx); err != nil {
		return err
	}

	if report.SecondTenant, err = b.seedSecondTenant(ctx, tx); err != nil {
		return err
	}

	if report.TenantsBackfilled, err = backfillTenants(ctx, tx); err != nil {
		return err
	}

	if report.SuperAdmin, err = b.seedSuperAdmin(ctx, tx, superHash); err != nil {
		return err
	}

	if report.RestrictedAdmin, err = b.seedRestrictedAdmin(ctx, tx, restrictedHash); err != nil {
		return err
	}

	return nil
}

func seedDefaultTenant(ctx context.Context, tx core.DBTX) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO tenants (id, name) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`,
		DefaultTenantName,
	)
	if err != nil {
		return false, fmt.Errorf("bootstrap: seed default tenant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bootstrap: seed default tenant: %w", err)
	}

	// An explicit id does not advance the serial sequence.
	if _, err := tx.ExecContext(ctx,
		`SELECT setval(pg_get_serial_sequence('tenants', 'id'), (SELECT MAX(id) FROM tenants))`,
	); err != nil {
		return false, fmt.Errorf("bootstrap: sync tenant sequence: %w", err)
	}

	return rows > 0, nil
}

func (b *Bootstrapper) seedSecondTenant(ctx context.Context, tx core.DBTX) (bool, error) {
	t := b.cfg.SecondTenant

	result, err := tx.ExecContext(ctx, `
		INSERT INTO tenants (
			tenant_id, code, tenant_code, name, display_name, region,
			status, primary_color, secondary_color, created_at, updated_at
		) VALUES (
			$1, $1, $1, $2, $2, $3, 'ACTIVE', $4, $5, NOW(), NOW()
		)
		ON CONFLICT (tenant_id) DO NOTHING`,
		t.Code,
		t.Name,
		t.Region,
		t.PrimaryColor,
		t.SecondaryColor,
	)
	if err != nil {
		return false, fmt.Errorf("bootstrap: seed tenant %s: %w", t.Code, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bootstrap: seed tenant %s: %w", t.Code, err)
	}

	return rows > 0, nil
}

func backfillTenants(ctx context.Context, tx core.DBTX) (int64, error) {
	result, err := tx.ExecContext(ctx, backfillStatement())
	if err != nil {
		return 0, fmt.Errorf("bootstrap: backfill tenants: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bootstrap: backfill tenants: %w", err)
	}

	return rows, nil
}

// seedSuperAdmin inserts the super admin or forces its role, detailed role
// and tenant back to the configured values.
func (b *Bootstrapper) seedSuperAdmin(ctx context.Context, tx core.DBTX, hash string) (bool, error) {
	u := b.cfg.SuperAdmin

	var inserted bool
	err := tx.GetContext(ctx, &inserted, `
		INSERT INTO users (
			id, email, password_hash, full_name, tenant_id, role, detailed_role
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			role          = EXCLUDED.role,
			detailed_role = EXCLUDED.detailed_role,
			tenant_id     = EXCLUDED.tenant_id,
			updated_at    = NOW()
		RETURNING (xmax = 0)`,
		uuid.New().String(),
		u.Email,
		hash,
		u.Name,
		u.TenantID,
		u.Role,
		u.DetailedRole,
	)
	if err != nil {
		return false, fmt.Errorf("bootstrap: seed super admin: %w", err)
	}

	return inserted, nil
}

// seedRestrictedAdmin inserts the second tenant's admin. On later runs the
// tenant and roles are forced but an existing phase_limit is kept.
func (b *Bootstrapper) seedRestrictedAdmin(ctx context.Context, tx core.DBTX, hash string) (bool, error) {
	u := b.cfg.RestrictedAdmin

	tenantID := u.TenantID
	if tenantID == "" {
		tenantID = b.cfg.SecondTenant.Code
	}

	var phaseLimit *int
	if u.PhaseLimit > 0 {
		limit := u.PhaseLimit
		phaseLimit = &limit
	}

	var inserted bool
	err := tx.GetContext(ctx, &inserted, `
		INSERT INTO users (
			id, email, password_hash, full_name, tenant_id, role,
			detailed_role, phase_limit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET
			tenant_id     = EXCLUDED.tenant_id,
			role          = EXCLUDED.role,
			detailed_role = EXCLUDED.detailed_role,
			phase_limit   = COALESCE(users.phase_limit, EXCLUDED.phase_limit),
			updated_at    = NOW()
		RETURNING (xmax = 0)`,
		uuid.New().String(),
		u.Email,
		hash,
		u.Name,
		tenantID,
		u.Role,
		u.DetailedRole,
		phaseLimit,
	)
	if err != nil {
		return false, fmt.Errorf("bootstrap: seed restricted admin: %w", err)
	}

	return inserted, nil
}
