// AngelaMos | 2026
// bootstrap.go

// Package bootstrap brings the database schema and seed data up to date at
// process start. Every step is idempotent: running it against an empty,
// partially migrated or fully migrated database converges on the same state.
//
// The two seeded admin accounts are treated differently on purpose. The
// super admin's role, detailed role and tenant are forced back to their
// configured values on every run, so manual edits to that account do not
// survive a restart. The restricted admin has tenant and roles forced the
// same way, but its phase_limit is only filled when NULL.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/recims/backend/internal/config"
	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/metrics"
)

const DefaultTenantName = "Default Tenant"

type Report struct {
	ColumnsAdded      []string      `json:"columns_added"`
	DefaultTenant     bool          `json:"default_tenant_created"`
	SecondTenant      bool          `json:"second_tenant_created"`
	TenantsBackfilled int64         `json:"tenants_backfilled"`
	SuperAdmin        bool          `json:"super_admin_created"`
	RestrictedAdmin   bool          `json:"restricted_admin_created"`
	Duration          time.Duration `json:"duration"`
}

type Bootstrapper struct {
	db     *sqlx.DB
	cfg    config.BootstrapConfig
	logger *slog.Logger
	hash   func(string) (string, error)
}

func New(db *sqlx.DB, cfg config.BootstrapConfig, logger *slog.Logger) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrapper{
		db:     db,
		cfg:    cfg,
		logger: logger,
		hash:   core.HashPassword,
	}
}

// Run applies the schema and seed steps in one transaction, serialized
// across processes by a transaction-scoped advisory lock. Any failure rolls
// everything back and is returned; callers are expected to abort startup.
func (b *Bootstrapper) Run(ctx context.Context) (*Report, error) {
	ctx, span := core.StartSpan(ctx, "bootstrap.Run")
	defer span.End()

	start := time.Now()
	report := &Report{}

	err := b.run(ctx, report)
	report.Duration = time.Since(start)
	metrics.ObserveBootstrap(report.Duration, err)

	if err != nil {
		core.SetSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("bootstrap.columns_added", len(report.ColumnsAdded)),
		attribute.Int64("bootstrap.tenants_backfilled", report.TenantsBackfilled),
	)

	b.logger.Info("bootstrap complete",
		"columns_added", len(report.ColumnsAdded),
		"default_tenant_created", report.DefaultTenant,
		"second_tenant_created", report.SecondTenant,
		"tenants_backfilled", report.TenantsBackfilled,
		"super_admin_created", report.SuperAdmin,
		"restricted_admin_created", report.RestrictedAdmin,
		"duration", report.Duration,
	)

	return report, nil
}

func (b *Bootstrapper) run(ctx context.Context, report *Report) error {
	superHash, err := b.passwordHash(b.cfg.SuperAdmin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap: super admin password: %w", err)
	}

	restrictedHash, err := b.passwordHash(b.cfg.RestrictedAdmin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap: restricted admin password: %w", err)
	}

	return core.InTx(ctx, b.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, b.cfg.LockKey); err != nil {
			return fmt.Errorf("bootstrap: acquire lock: %w", err)
		}

		if err := b.migrate(ctx, tx, report); err != nil {
			return err
		}

		return b.seed(ctx, tx, report, superHash, restrictedHash)
	})
}

func (b *Bootstrapper) migrate(ctx context.Context, tx core.DBTX, report *Report) error {
	for _, stmt := range createTables {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap: create table: %w", err)
		}
	}

	added, err := ensureColumns(ctx, tx, "tenants", TenantColumns)
	if err != nil {
		return err
	}
	report.ColumnsAdded = append(report.ColumnsAdded, added...)

	added, err = ensureColumns(ctx, tx, "users", UserColumns)
	if err != nil {
		return err
	}
	report.ColumnsAdded = append(report.ColumnsAdded, added...)

	for _, stmt := range createIndexes {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap: create index: %w", err)
		}
	}

	return nil
}

// ensureColumns adds each missing column. Presence is read from
// information_schema instead of inferred from ALTER TABLE failures.
func ensureColumns(
	ctx context.Context,
	tx core.DBTX,
	table string,
	columns []Column,
) ([]string, error) {
	var added []string

	for _, col := range columns {
		exists, err := columnExists(ctx, tx, table, col.Name)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}

		stmt := fmt.Sprintf(
			"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
			table, col.Name, col.Type,
		)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return added, fmt.Errorf("bootstrap: add column %s.%s: %w", table, col.Name, err)
		}
		added = append(added, table+"."+col.Name)
	}

	return added, nil
}

func columnExists(ctx context.Context, tx core.DBTX, table, column string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema()
			  AND table_name = $1
			  AND column_name = $2
		)`

	var exists bool
	if err := tx.GetContext(ctx, &exists, query, table, column); err != nil {
		return false, fmt.Errorf("bootstrap: inspect column %s.%s: %w", table, column, err)
	}
	return exists, nil
}

func (b *Bootstrapper) passwordHash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("empty password: %w", core.ErrInvalidInput)
	}
	if core.IsArgonHash(password) {
		return password, nil
	}
	return b.hash(password)
}

// backfillStatement builds the single UPDATE that fills every NULL tenant
// column. Rows already complete are left untouched so the affected count
// reflects real work.
func backfillStatement() string {
	sets := make([]string, 0, len(tenantBackfills)+1)
	conds := make([]string, 0, len(tenantBackfills)+1)

	for _, bf := range tenantBackfills {
		sets = append(sets, fmt.Sprintf("%s = COALESCE(%s, %s)", bf.Column, bf.Column, bf.Default))
		conds = append(conds, bf.Column+" IS NULL")
	}

	sets = append(sets, "status = UPPER(COALESCE(status, 'ACTIVE'))")
	conds = append(conds, "status IS NULL", "status <> UPPER(status)")

	return fmt.Sprintf(
		"UPDATE tenants SET %s WHERE %s",
		strings.Join(sets, ", "),
		strings.Join(conds, " OR "),
	)
}
