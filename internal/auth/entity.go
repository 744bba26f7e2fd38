// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is one link in a rotation family. TenantID is the tenant
// the session was opened under; a refresh after the user moved tenants is
// refused.
type RefreshToken struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	TenantID     *string    `db:"tenant_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

type TokenState int

const (
	TokenActive TokenState = iota
	TokenSpent
	TokenRevoked
	TokenExpired
)

// StateAt orders the checks so that a spent token is reported as spent
// even after it expired or its family was revoked. Reuse detection
// depends on that.
func (t *RefreshToken) StateAt(now time.Time) TokenState {
	switch {
	case t.IsUsed:
		return TokenSpent
	case t.RevokedAt != nil:
		return TokenRevoked
	case !now.Before(t.ExpiresAt):
		return TokenExpired
	default:
		return TokenActive
	}
}

func (t *RefreshToken) Tenant() string {
	if t.TenantID == nil {
		return ""
	}
	return *t.TenantID
}

// BoundTo reports whether the token was issued for tenant.
func (t *RefreshToken) BoundTo(tenant string) bool {
	return t.Tenant() == tenant
}

func (t *RefreshToken) MarkAsUsed(replacedByID string) {
	now := time.Now()
	t.IsUsed = true
	t.UsedAt = &now
	t.ReplacedByID = &replacedByID
}

func (t *RefreshToken) Revoke() {
	now := time.Now()
	t.RevokedAt = &now
}

func (t *RefreshToken) Session() SessionInfo {
	return SessionInfo{
		ID:        t.ID,
		TenantID:  t.Tenant(),
		UserAgent: t.UserAgent,
		IPAddress: t.IPAddress,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}
