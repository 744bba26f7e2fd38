// AngelaMos | 2026
// access.go

package auth

import (
	"math"

	"github.com/recims/backend/internal/permission"
	"github.com/recims/backend/internal/phase"
)

// AccessProfile is everything the client needs to gate navigation: the
// resolved capabilities, the role badge and the pages open at the user's
// phase. MaxPhase is null when the user has no cap.
type AccessProfile struct {
	Permissions     permission.Permissions `json:"permissions"`
	DisplayName     string                 `json:"display_name"`
	BadgeColor      string                 `json:"badge_color"`
	MaxPhase        *int                   `json:"max_phase"`
	AccessiblePages []string               `json:"accessible_pages"`
}

func NewAccessProfile(subject *permission.Subject, maxPhase float64) AccessProfile {
	perms := permission.For(subject)

	profile := AccessProfile{
		Permissions:     perms,
		DisplayName:     permission.DisplayName(perms.Role),
		BadgeColor:      permission.BadgeColor(perms.Role),
		AccessiblePages: phase.AccessiblePages(maxPhase),
	}

	if !math.IsInf(maxPhase, 0) && !math.IsNaN(maxPhase) {
		limit := int(maxPhase)
		profile.MaxPhase = &limit
	}

	return profile
}

func (u *UserInfo) Subject() *permission.Subject {
	return &permission.Subject{Role: u.Role, DetailedRole: u.DetailedRole}
}

func (u *UserInfo) Access() AccessProfile {
	return NewAccessProfile(u.Subject(), phase.LimitFor(u.PhaseLimit))
}
