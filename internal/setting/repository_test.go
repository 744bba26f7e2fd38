// AngelaMos | 2026
// repository_test.go

package setting

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recims/backend/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var settingColumns = []string{"id", "setting_key", "setting_value", "description", "updated_at"}

func TestRepositoryListByPrefix(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`WHERE starts_with\(setting_key, \$1\)`).
		WithArgs("enable_").
		WillReturnRows(sqlmock.NewRows(settingColumns).
			AddRow(1, "enable_po_module", "true", nil, now).
			AddRow(2, "enable_qc", "false", "QC gate", now))

	rows, err := repo.ListByPrefix(context.Background(), "enable_")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "enable_po_module", rows[0].SettingKey)
	assert.Nil(t, rows[0].Description)
	require.NotNil(t, rows[1].Description)
	assert.Equal(t, "QC gate", *rows[1].Description)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM app_settings`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(settingColumns))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`ON CONFLICT \(setting_key\) DO UPDATE`).
		WithArgs("enable_qc", "true", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "description", "updated_at"}).
			AddRow(9, "QC gate", now))

	s := &AppSetting{SettingKey: "enable_qc", SettingValue: "true"}
	require.NoError(t, repo.Upsert(context.Background(), s))
	assert.Equal(t, int64(9), s.ID)
	require.NotNil(t, s.Description)
	assert.Equal(t, "QC gate", *s.Description)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDeleteMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM app_settings`).
		WithArgs("enable_qc").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "enable_qc")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
