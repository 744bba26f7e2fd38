// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/recims/backend/internal/auth"
	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/permission"
	"github.com/recims/backend/internal/phase"
)

// Scope limits admin operations to one tenant unless AllTenants is set.
// Users outside the scope are reported as not found.
type Scope struct {
	ActorID    string
	TenantID   string
	AllTenants bool
}

func (s Scope) allows(u *User) bool {
	return s.AllTenants || u.Tenant() == s.TenantID
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Permissions resolves the stored user, so role changes show up here
// before the caller's access token is refreshed.
func (s *Service) Permissions(
	ctx context.Context,
	userID string,
) (*PermissionsResponse, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	return BuildPermissions(user.Subject(), user.MaxPhase()), nil
}

func BuildPermissions(
	subject *permission.Subject,
	maxPhase float64,
) *PermissionsResponse {
	profile := auth.NewAccessProfile(subject, maxPhase)
	return &profile
}

func PageAccess(page string, maxPhase float64) PageAccessResponse {
	return PageAccessResponse{
		Page:          page,
		RequiredPhase: phase.RequiredPhase(page),
		Allowed:       phase.CanAccessPage(page, maxPhase),
	}
}

func (s *Service) ListUsers(
	ctx context.Context,
	scope Scope,
	params ListUsersParams,
) ([]User, int, error) {
	if !scope.AllTenants {
		params.TenantID = scope.TenantID
	}

	return s.repo.List(ctx, params)
}

func (s *Service) GetUser(
	ctx context.Context,
	scope Scope,
	id string,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !scope.allows(user) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}

	return user, nil
}

func (s *Service) CreateUser(
	ctx context.Context,
	scope Scope,
	req CreateUserRequest,
) (*User, error) {
	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = scope.TenantID
	}

	if !scope.AllTenants && tenantID != scope.TenantID {
		return nil, fmt.Errorf(
			"create user: tenant %q outside scope: %w",
			tenantID,
			core.ErrForbidden,
		)
	}

	if err := checkDetailedRole(scope, req.DetailedRole); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(req.Email),
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		TenantID:     optional(tenantID),
		Role:         role,
		DetailedRole: optional(req.DetailedRole),
		PhaseLimit:   req.PhaseLimit,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUserRole changes role and detailed_role and bumps the token
// version, since both are baked into issued access tokens.
func (s *Service) UpdateUserRole(
	ctx context.Context,
	scope Scope,
	id string,
	req UpdateUserRoleRequest,
) (*User, error) {
	user, err := s.GetUser(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if err := checkTarget(scope, user); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	user.Role = req.Role
	if req.DetailedRole != nil {
		if err := checkDetailedRole(scope, *req.DetailedRole); err != nil {
			return nil, fmt.Errorf("update role: %w", err)
		}
		user.DetailedRole = optional(*req.DetailedRole)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.repo.IncrementTokenVersion(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdatePhaseLimit(
	ctx context.Context,
	scope Scope,
	id string,
	limit *int,
) (*User, error) {
	if limit != nil && (*limit < phase.MinPhase || *limit > phase.MaxPhase) {
		return nil, fmt.Errorf(
			"update phase limit: %d out of range: %w",
			*limit,
			core.ErrInvalidInput,
		)
	}

	user, err := s.GetUser(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if err := checkTarget(scope, user); err != nil {
		return nil, fmt.Errorf("update phase limit: %w", err)
	}

	if err := s.repo.UpdatePhaseLimit(ctx, user.ID, limit); err != nil {
		return nil, err
	}

	if err := s.repo.IncrementTokenVersion(ctx, user.ID); err != nil {
		return nil, err
	}

	user.PhaseLimit = limit
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, scope Scope, id string) error {
	if id == scope.ActorID {
		return fmt.Errorf("delete user: cannot delete yourself: %w", core.ErrForbidden)
	}

	user, err := s.GetUser(ctx, scope, id)
	if err != nil {
		return err
	}

	if err := checkTarget(scope, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return s.repo.SoftDelete(ctx, user.ID)
}

// checkDetailedRole rejects unknown roles, and superadmin grants from
// callers confined to one tenant.
func checkDetailedRole(scope Scope, role string) error {
	if role == "" {
		return nil
	}

	if !permission.Known(role) {
		return fmt.Errorf("unknown role %q: %w", role, core.ErrInvalidInput)
	}

	if role == permission.RoleSuperAdmin && !scope.AllTenants {
		return fmt.Errorf("grant %s: %w", role, core.ErrForbidden)
	}

	return nil
}

// checkTarget stops tenant-scoped admins from editing cross-tenant admins.
func checkTarget(scope Scope, target *User) error {
	if scope.AllTenants {
		return nil
	}

	if target.Permissions().CanManageTenants {
		return core.ErrForbidden
	}

	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toUserInfo(u *User) *auth.UserInfo {
	info := &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		TenantID:     u.Tenant(),
		PhaseLimit:   u.PhaseLimit,
		TokenVersion: u.TokenVersion,
	}
	if u.DetailedRole != nil {
		info.DetailedRole = *u.DetailedRole
	}
	return info
}

var _ auth.UserProvider = (*Service)(nil)
