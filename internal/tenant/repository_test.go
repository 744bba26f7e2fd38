// AngelaMos | 2026
// repository_test.go

package tenant

import (
	"context"
	"testing"

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

func TestRepositoryGetByCode(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE tenant_id = \$1 OR code = \$1`).
		WithArgs("connecticut_metals").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "tenant_id", "features_json", "primary_color"}).
			AddRow(2, "Connecticut Metals", "connecticut_metals", `{"qc_enabled": true}`, nil))

	tn, err := repo.GetByCode(context.Background(), "connecticut_metals")
	require.NoError(t, err)
	assert.Equal(t, int64(2), tn.ID)
	assert.Equal(t, "connecticut_metals", tn.Key())
	require.NotNil(t, tn.FeaturesJSON)
	assert.Nil(t, tn.PrimaryColor)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByCodeNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM tenants`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByCode(context.Background(), "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateFeatures(t *testing.T) {
	repo, mock := newMockRepo(t)
	features := `{"po_module_enabled": true}`

	mock.ExpectExec(`UPDATE tenants\s+SET features_json = \$2`).
		WithArgs(int64(2), features).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tenants\s+SET features_json = \$2`).
		WithArgs(int64(99), nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateFeatures(context.Background(), 2, &features))

	err := repo.UpdateFeatures(context.Background(), 99, nil)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateBrandingKeepsUnsetColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	primary := "#00FF00"

	mock.ExpectExec(`primary_color\s+= COALESCE\(\$3, primary_color\)`).
		WithArgs(int64(2), nil, primary, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateBranding(context.Background(), 2, Branding{PrimaryColor: &primary})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
