// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/recims/backend/internal/tenant"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UserResponse is the signed-in user as the client sees it. PhaseLimit is
// null for users without a cap.
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	DetailedRole string `json:"detailed_role,omitempty"`
	TenantID     string `json:"tenant_id,omitempty"`
	PhaseLimit   *int   `json:"phase_limit"`
}

// Session is what the client loads on startup: who the user is, what they
// may open, and how their tenant is configured. Tenant is omitted when no
// resolver is wired.
type Session struct {
	User   UserResponse   `json:"user"`
	Access AccessProfile  `json:"access"`
	Tenant *tenant.Config `json:"tenant,omitempty"`
}

type AuthResponse struct {
	Session
	Tokens TokenResponse `json:"tokens"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		DetailedRole: u.DetailedRole,
		TenantID:     u.TenantID,
		PhaseLimit:   u.PhaseLimit,
	}
}
