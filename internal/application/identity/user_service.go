package identity

import (
	"context"

	"github.com/dasbor/backend/internal/domain/business"
	"github.com/dasbor/backend/internal/domain/identity"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/dasbor/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles account administration. Every operation here is
// reserved for super-admins; the HTTP layer enforces that.
type UserService struct {
	userRepo     identity.UserRepository
	businessRepo business.BusinessRepository
	blacklist    auth.TokenBlacklist
	jwtService   *auth.JWTService
	logger       *zap.Logger
}

// NewUserService creates a new user administration service
func NewUserService(
	userRepo identity.UserRepository,
	businessRepo business.BusinessRepository,
	blacklist auth.TokenBlacklist,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		businessRepo: businessRepo,
		blacklist:    blacklist,
		jwtService:   jwtService,
		logger:       logger,
	}
}

// CreateAdmin creates an admin account scoped to a business
func (s *UserService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*UserResult, error) {
	biz, err := s.businessRepo.FindByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	}

	user, err := identity.NewUser(input.Username, input.Password, biz.ID)
	if err != nil {
		return nil, err
	}
	if err := user.SetEmail(input.Email); err != nil {
		return nil, err
	}
	if err := user.SetDisplayName(input.DisplayName); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("admin account created",
		zap.String("user_id", user.ID.String()),
		zap.String("business_id", biz.ID.String()))

	result := toUserResult(user)
	return &result, nil
}

// GetUser returns one account
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*UserResult, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toUserResult(user)
	return &result, nil
}

// ListUsers returns accounts matching the filter with pagination
func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) (*UserListResult, error) {
	filter := identity.NewUserFilter().WithKeyword(input.Keyword)
	if input.Status != "" {
		filter = filter.WithStatus(identity.UserStatus(input.Status))
	}
	if input.Role != "" {
		filter = filter.WithRole(identity.Role(input.Role))
	}
	if input.BusinessID != nil {
		filter = filter.WithBusinessID(*input.BusinessID)
	}
	if input.Page > 0 || input.PageSize > 0 {
		filter = filter.WithPagination(input.Page, input.PageSize)
	}
	if input.SortBy != "" {
		filter.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		filter.SortOrder = input.SortOrder
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]UserResult, len(users))
	for i, u := range users {
		results[i] = toUserResult(u)
	}

	return &UserListResult{
		Users:    results,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// UpdateUser edits an account. Nil input fields are left unchanged.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserResult, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.BusinessID != nil {
		if _, err := s.businessRepo.FindByID(ctx, *input.BusinessID); err != nil {
			return nil, err
		}
		if err := user.AssignBusiness(*input.BusinessID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	result := toUserResult(user)
	return &result, nil
}

// DeleteUser removes an account. Super-admin accounts cannot be deleted
// through this path.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsSuperAdmin() {
		return shared.NewDomainError("CANNOT_DELETE_SUPER_ADMIN", "Super-admin accounts cannot be deleted")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.revokeSessions(ctx, id)

	s.logger.Info("account deleted", zap.String("user_id", id.String()))
	return nil
}

// ActivateUser reactivates a deactivated or locked account
func (s *UserService) ActivateUser(ctx context.Context, id uuid.UUID) (*UserResult, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Activate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	result := toUserResult(user)
	return &result, nil
}

// DeactivateUser disables an account and revokes its sessions
func (s *UserService) DeactivateUser(ctx context.Context, id uuid.UUID) (*UserResult, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsSuperAdmin() {
		return nil, shared.NewDomainError("CANNOT_DEACTIVATE_SUPER_ADMIN", "Super-admin accounts cannot be deactivated")
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.revokeSessions(ctx, id)

	s.logger.Info("account deactivated", zap.String("user_id", id.String()))

	result := toUserResult(user)
	return &result, nil
}

// ResetPassword sets a new password on an account, forces a change on next
// login and revokes every outstanding session.
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, input ResetPasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}
	user.ForcePasswordChange()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.revokeSessions(ctx, id)

	s.logger.Info("password reset", zap.String("user_id", id.String()))
	return nil
}

// UnlockUser clears a lockout before it expires
func (s *UserService) UnlockUser(ctx context.Context, id uuid.UUID) (*UserResult, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Unlock(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	result := toUserResult(user)
	return &result, nil
}

func (s *UserService) revokeSessions(ctx context.Context, id uuid.UUID) {
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, id.String(),
		s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("failed to revoke sessions", zap.Error(err))
	}
}
