// Package identity implements authentication and account administration for
// the dashboard: super-admins manage every business, admins are scoped to one.
package identity

import (
	"context"
	"strings"
	"time"

	"github.com/dasbor/backend/internal/domain/identity"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/dasbor/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // failed attempts before the account locks
	LockDuration     time.Duration // how long the lock holds
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("login attempt for unknown user", zap.String("username", username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CanLogin() {
		if user.IsLocked() {
			s.logger.Warn("login attempt for locked account", zap.String("username", username))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
		}
		s.logger.Warn("login attempt for deactivated account", zap.String("username", username))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("failed to record login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("account locked after repeated failures",
				zap.String("username", username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	// an expired lock is cleared on the first successful login
	if user.Status == identity.UserStatusLocked {
		_ = user.Unlock()
	}
	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("failed to record login success", zap.Error(err))
	}

	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       string(user.Role),
		BusinessID: user.BusinessID,
	})
	if err != nil {
		s.logger.Error("failed to generate tokens", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate tokens")
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResult{User: toUserResult(user), Tokens: tokens}, nil
}

// RefreshToken rotates a refresh token into a new token pair. The used
// refresh token is blacklisted so it cannot be replayed.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired")
	}

	if revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID); err != nil {
		s.logger.Error("blacklist lookup failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate token")
	} else if revoked {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Refresh token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired")
	}

	if invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime()); err != nil {
		s.logger.Error("blacklist lookup failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate token")
	} else if invalidated {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Refresh token has been revoked")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired")
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       string(user.Role),
		BusinessID: user.BusinessID,
	})
	if err != nil {
		s.logger.Error("failed to generate tokens", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate tokens")
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("failed to revoke used refresh token", zap.Error(err))
	}

	return &RefreshTokenResult{Tokens: tokens}, nil
}

// Logout revokes the presented access token
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("failed to blacklist token on logout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}

	s.logger.Info("user logged out", zap.String("user_id", claims.UserID))
	return nil
}

// GetCurrentUser returns the account behind a validated token
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toUserResult(user)
	return &result, nil
}

// ChangePassword changes the caller's own password and revokes every
// outstanding token of the account.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(),
		s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("failed to revoke sessions after password change", zap.Error(err))
	}

	s.logger.Info("password changed", zap.String("user_id", user.ID.String()))
	return nil
}
