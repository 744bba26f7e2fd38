// AngelaMos | 2026
// bootstrap_test.go

package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recims/backend/internal/config"
)

func testConfig() config.BootstrapConfig {
	return config.BootstrapConfig{
		Enabled: true,
		LockKey: 42,
		SuperAdmin: config.SeedUser{
			Email:        "admin@recims.com",
			Password:     "super-secret",
			Name:         "Super Admin",
			TenantID:     "TNT-001",
			Role:         "super_admin",
			DetailedRole: "superadmin",
		},
		RestrictedAdmin: config.SeedUser{
			Email:        "admin@connecticutmetals.com",
			Password:     "restricted-secret",
			Name:         "Connecticut Metals Admin",
			TenantID:     "connecticut_metals",
			Role:         "phase3_admin",
			DetailedRole: "admin",
			PhaseLimit:   3,
		},
		SecondTenant: config.SeedTenant{
			Code:           "connecticut_metals",
			Name:           "Connecticut Metals",
			Region:         "USA",
			PrimaryColor:   "#1E3A8A",
			SecondaryColor: "#F59E0B",
		},
	}
}

func newTestBootstrapper(t *testing.T) (*Bootstrapper, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	b := New(db, testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	b.hash = func(p string) (string, error) { return "hashed:" + p, nil }

	return b, mock
}

func expectSchema(mock sqlmock.Sqlmock, columnsPresent bool) {
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	for range createTables {
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS`).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	expectColumns := func(table string, cols []Column) {
		for _, col := range cols {
			mock.ExpectQuery(`information_schema.columns`).
				WithArgs(table, col.Name).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(columnsPresent))
			if !columnsPresent {
				mock.ExpectExec(`ALTER TABLE ` + table + ` ADD COLUMN IF NOT EXISTS ` + col.Name + ` `).
					WillReturnResult(sqlmock.NewResult(0, 0))
			}
		}
	}
	expectColumns("tenants", TenantColumns)
	expectColumns("users", UserColumns)

	for range createIndexes {
		mock.ExpectExec(`CREATE (UNIQUE )?INDEX IF NOT EXISTS`).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func expectSeed(mock sqlmock.Sqlmock, fresh bool) {
	var affected int64
	if fresh {
		affected = 1
	}

	mock.ExpectExec(`INSERT INTO tenants \(id, name\) VALUES \(1, \$1\) ON CONFLICT \(id\) DO NOTHING`).
		WithArgs(DefaultTenantName).
		WillReturnResult(sqlmock.NewResult(0, affected))
	mock.ExpectExec(`SELECT setval`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec(`ON CONFLICT \(tenant_id\) DO NOTHING`).
		WithArgs("connecticut_metals", "Connecticut Metals", "USA", "#1E3A8A", "#F59E0B").
		WillReturnResult(sqlmock.NewResult(0, affected))

	mock.ExpectExec(`UPDATE tenants SET`).
		WillReturnResult(sqlmock.NewResult(0, affected*2))

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(
			sqlmock.AnyArg(),
			"admin@recims.com",
			"hashed:super-secret",
			"Super Admin",
			"TNT-001",
			"super_admin",
			"superadmin",
		).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(fresh))

	mock.ExpectQuery(`phase_limit\s+= COALESCE\(users.phase_limit, EXCLUDED.phase_limit\)`).
		WithArgs(
			sqlmock.AnyArg(),
			"admin@connecticutmetals.com",
			"hashed:restricted-secret",
			"Connecticut Metals Admin",
			"connecticut_metals",
			"phase3_admin",
			"admin",
			sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(fresh))
}

func TestRun_EmptyDatabase(t *testing.T) {
	b, mock := newTestBootstrapper(t)

	mock.ExpectBegin()
	expectSchema(mock, false)
	expectSeed(mock, true)
	mock.ExpectCommit()

	report, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.ColumnsAdded, len(TenantColumns)+len(UserColumns))
	assert.Contains(t, report.ColumnsAdded, "tenants.features_json")
	assert.Contains(t, report.ColumnsAdded, "users.phase_limit")
	assert.True(t, report.DefaultTenant)
	assert.True(t, report.SecondTenant)
	assert.True(t, report.SuperAdmin)
	assert.True(t, report.RestrictedAdmin)
	assert.Equal(t, int64(2), report.TenantsBackfilled)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_LogsReportOnce(t *testing.T) {
	b, mock := newTestBootstrapper(t)

	var buf bytes.Buffer
	b.logger = slog.New(slog.NewTextHandler(&buf, nil))

	mock.ExpectBegin()
	expectSchema(mock, true)
	expectSeed(mock, true)
	mock.ExpectCommit()

	_, err := b.Run(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "bootstrap complete"))
	assert.Contains(t, out, "tenants_backfilled=2")
	assert.Contains(t, out, "default_tenant_created=true")
}

func TestRun_AlreadyMigrated(t *testing.T) {
	b, mock := newTestBootstrapper(t)

	mock.ExpectBegin()
	expectSchema(mock, true)
	expectSeed(mock, false)
	mock.ExpectCommit()

	report, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.ColumnsAdded)
	assert.False(t, report.DefaultTenant)
	assert.False(t, report.SecondTenant)
	assert.False(t, report.SuperAdmin)
	assert.False(t, report.RestrictedAdmin)
	assert.Zero(t, report.TenantsBackfilled)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ColumnFailureRollsBack(t *testing.T) {
	b, mock := newTestBootstrapper(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for range createTables {
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS`).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectQuery(`information_schema.columns`).
		WithArgs("tenants", "tenant_id").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`ALTER TABLE tenants ADD COLUMN IF NOT EXISTS tenant_id`).
		WillReturnError(errors.New("permission denied for table tenants"))
	mock.ExpectRollback()

	report, err := b.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "tenants.tenant_id")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_EmptyPasswordFailsBeforeTransaction(t *testing.T) {
	b, mock := newTestBootstrapper(t)
	b.cfg.SuperAdmin.Password = ""

	_, err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "super admin password")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordHash_KeepsExistingArgonHash(t *testing.T) {
	b, _ := newTestBootstrapper(t)

	encoded := "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
	got, err := b.passwordHash(encoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, got)

	got, err = b.passwordHash("plain")
	require.NoError(t, err)
	assert.Equal(t, "hashed:plain", got)
}

func TestBackfillStatement(t *testing.T) {
	stmt := backfillStatement()

	tests := []string{
		"tenant_id = COALESCE(tenant_id, 'TNT-' || CASE WHEN id < 1000 THEN LPAD(id::text, 3, '0') ELSE id::text END)",
		"display_name = COALESCE(display_name, name)",
		"region = COALESCE(region, 'Global')",
		"code = COALESCE(code, LOWER(REPLACE(name, ' ', '')))",
		"base_subdomain = COALESCE(base_subdomain, LOWER(REPLACE(name, ' ', '')))",
		"timezone = COALESCE(timezone, 'America/New_York')",
		"default_load_types_json = COALESCE(default_load_types_json, '[]')",
		"features_json = COALESCE(features_json, '{}')",
		"status = UPPER(COALESCE(status, 'ACTIVE'))",
	}
	for _, want := range tests {
		assert.Contains(t, stmt, want)
	}

	assert.True(t, strings.HasPrefix(stmt, "UPDATE tenants SET "))
	assert.Contains(t, stmt, "WHERE tenant_id IS NULL OR ")
	assert.Contains(t, stmt, "status <> UPPER(status)")
	assert.NotContains(t, stmt, "COALESCE(tenant_id, 'TNT-' || LPAD(id::text, 3, '0'))")
}
