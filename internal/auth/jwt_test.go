// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recims/backend/internal/config"
	"github.com/recims/backend/internal/core"
)

func newTestJWTManager(t *testing.T, accessTTL time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(privPath, pubPath))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privPath,
		PublicKeyPath:      pubPath,
		AccessTokenExpire:  accessTTL,
		RefreshTokenExpire: time.Hour,
		Issuer:             "recims",
		Audience:           "recims-api",
	})
	require.NoError(t, err)
	return m
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestJWTManager(t, time.Minute)
	limit := 3

	token, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:       "u-1",
		Role:         "phase3_admin",
		DetailedRole: "admin",
		TenantID:     "connecticut_metals",
		PhaseLimit:   &limit,
		TokenVersion: 2,
	})
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "phase3_admin", claims.Role)
	assert.Equal(t, "admin", claims.DetailedRole)
	assert.Equal(t, "connecticut_metals", claims.TenantID)
	require.NotNil(t, claims.PhaseLimit)
	assert.Equal(t, 3, *claims.PhaseLimit)
	assert.Equal(t, 2, claims.TokenVersion)
	assert.Equal(t, 3.0, claims.MaxPhase())
}

func TestAccessToken_NoPhaseLimitIsUnlimited(t *testing.T) {
	m := newTestJWTManager(t, time.Minute)

	token, err := m.CreateAccessToken(AccessTokenClaims{
		UserID: "u-1",
		Role:   "super_admin",
	})
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, claims.PhaseLimit)
	assert.Empty(t, claims.DetailedRole)
}

func TestAccessToken_Expired(t *testing.T) {
	m := newTestJWTManager(t, -time.Minute)

	token, err := m.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: "user"})
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestAccessToken_ForeignKeyRejected(t *testing.T) {
	signer := newTestJWTManager(t, time.Minute)
	verifier := newTestJWTManager(t, time.Minute)

	token, err := signer.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: "user"})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestCreateRefreshToken_KeepsFamily(t *testing.T) {
	m := newTestJWTManager(t, time.Minute)

	first, err := m.CreateRefreshToken("u-1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, first.FamilyID)
	assert.Equal(t, core.HashToken(first.Token), first.Hash)

	next, err := m.CreateRefreshToken("u-1", first.FamilyID)
	require.NoError(t, err)
	assert.Equal(t, first.FamilyID, next.FamilyID)
	assert.NotEqual(t, first.Token, next.Token)
}
