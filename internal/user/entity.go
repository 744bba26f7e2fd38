// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/recims/backend/internal/permission"
	"github.com/recims/backend/internal/phase"
)

// User is a row of users. TenantID holds the tenant's string code, not
// the tenants.id integer.
type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FullName     string     `db:"full_name"`
	TenantID     *string    `db:"tenant_id"`
	Role         string     `db:"role"`
	DetailedRole *string    `db:"detailed_role"`
	PhaseLimit   *int       `db:"phase_limit"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

const RoleUser = "user"

const selectColumns = `id, email, password_hash, full_name, tenant_id, role,
		       detailed_role, phase_limit, token_version,
		       created_at, updated_at, deleted_at`

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) Tenant() string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}

func (u *User) Subject() *permission.Subject {
	s := &permission.Subject{Role: u.Role}
	if u.DetailedRole != nil {
		s.DetailedRole = *u.DetailedRole
	}
	return s
}

func (u *User) Permissions() permission.Permissions {
	return permission.For(u.Subject())
}

func (u *User) MaxPhase() float64 {
	return phase.LimitFor(u.PhaseLimit)
}
