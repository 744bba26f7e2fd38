// AngelaMos | 2026
// repository_test.go

package auth

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

var refreshTokenColumns = []string{
	"id", "user_id", "token_hash", "family_id", "tenant_id", "expires_at",
	"created_at", "is_used", "used_at", "revoked_at", "replaced_by_id",
	"user_agent", "ip_address",
}

func TestRepositoryFindByHash(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM refresh_tokens\s+WHERE token_hash = \$1`).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(refreshTokenColumns).AddRow(
			"rt-1", "u-1", "abc", "fam-1", "connecticut_metals",
			now.Add(time.Hour), now, false, nil, nil, nil, "agent", "10.0.0.1",
		))

	tok, err := repo.FindByHash(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "fam-1", tok.FamilyID)
	require.NotNil(t, tok.TenantID)
	assert.Equal(t, "connecticut_metals", *tok.TenantID)
	assert.Equal(t, TokenActive, tok.StateAt(now))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryFindByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(refreshTokenColumns))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryMarkAsUsedAlreadySpent(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE refresh_tokens\s+SET is_used = true`).
		WithArgs("rt-1", "rt-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkAsUsed(context.Background(), "rt-1", "rt-2")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateStoresTenant(t *testing.T) {
	repo, mock := newMockRepo(t)
	tenant := "TNT-001"
	expires := time.Now().Add(time.Hour)

	mock.ExpectQuery(`INSERT INTO refresh_tokens`).
		WithArgs("rt-1", "u-1", "hash", "fam-1", "TNT-001", expires, "agent", "10.0.0.1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	err := repo.Create(context.Background(), &RefreshToken{
		ID:        "rt-1",
		UserID:    "u-1",
		TokenHash: "hash",
		FamilyID:  "fam-1",
		TenantID:  &tenant,
		ExpiresAt: expires,
		UserAgent: "agent",
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDeleteExpired(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
