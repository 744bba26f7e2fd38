// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/recims/backend/internal/auth"
)

type CreateUserRequest struct {
	Email        string `json:"email"         validate:"required,email,max=255"`
	Password     string `json:"password"      validate:"required,min=8,max=128"`
	FullName     string `json:"full_name"     validate:"required,min=1,max=100"`
	TenantID     string `json:"tenant_id"     validate:"omitempty,max=64"`
	Role         string `json:"role"          validate:"omitempty,max=50"`
	DetailedRole string `json:"detailed_role" validate:"omitempty,max=50"`
	PhaseLimit   *int   `json:"phase_limit"   validate:"omitempty,min=1,max=6"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
}

type UpdateUserRoleRequest struct {
	Role         string  `json:"role"          validate:"required,max=50"`
	DetailedRole *string `json:"detailed_role" validate:"omitempty,max=50"`
}

// UpdatePhaseLimitRequest sets phase_limit. A null value removes the cap.
type UpdatePhaseLimitRequest struct {
	PhaseLimit *int `json:"phase_limit" validate:"omitempty,min=1,max=6"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	TenantID     string    `json:"tenant_id,omitempty"`
	Role         string    `json:"role"`
	DetailedRole string    `json:"detailed_role,omitempty"`
	PhaseLimit   *int      `json:"phase_limit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PermissionsResponse is the same profile login and /auth/me return, so
// the two never disagree.
type PermissionsResponse = auth.AccessProfile

type PageAccessResponse struct {
	Page          string `json:"page"`
	RequiredPhase int    `json:"required_phase"`
	Allowed       bool   `json:"allowed"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		TenantID:   u.Tenant(),
		Role:       u.Role,
		PhaseLimit: u.PhaseLimit,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if u.DetailedRole != nil {
		resp.DetailedRole = *u.DetailedRole
	}
	return resp
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
