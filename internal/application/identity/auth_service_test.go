package identity

import (
	"context"
	"testing"
	"time"

	"github.com/dasbor/backend/internal/domain/business"
	"github.com/dasbor/backend/internal/domain/identity"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/dasbor/backend/internal/infrastructure/auth"
	"github.com/dasbor/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).(int64), args.Error(1)
}

// MockBusinessRepository is a mock implementation of business.BusinessRepository
type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) Create(ctx context.Context, b *business.Business) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBusinessRepository) Update(ctx context.Context, b *business.Business) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*business.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockBusinessRepository) FindBySlug(ctx context.Context, slug string) (*business.Business, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockBusinessRepository) FindAll(ctx context.Context, filter business.BusinessFilter) ([]*business.Business, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*business.Business), args.Get(1).(int64), args.Error(2)
}

func (m *MockBusinessRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-with-enough-length",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "dasbor-test",
	})
}

type authHarness struct {
	service   *AuthService
	userRepo  *MockUserRepository
	blacklist *auth.InMemoryTokenBlacklist
	jwt       *auth.JWTService
}

func newAuthHarness() *authHarness {
	userRepo := new(MockUserRepository)
	blacklist := auth.NewInMemoryTokenBlacklist()
	jwtService := newTestJWTService()
	return &authHarness{
		service:   NewAuthService(userRepo, jwtService, blacklist, DefaultAuthServiceConfig(), zap.NewNop()),
		userRepo:  userRepo,
		blacklist: blacklist,
		jwt:       jwtService,
	}
}

func newTestAdmin(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("budi.admin", "Password1", uuid.New())
	require.NoError(t, err)
	return user
}

func TestAuthService_Login(t *testing.T) {
	t.Run("successful login returns tokens", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		h.userRepo.On("FindByUsername", mock.Anything, "budi.admin").Return(user, nil)
		h.userRepo.On("Update", mock.Anything, user).Return(nil)

		result, err := h.service.Login(context.Background(), LoginInput{
			Username: " Budi.Admin ",
			Password: "Password1",
			IP:       "10.0.0.1",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.NotEmpty(t, result.Tokens.RefreshToken)
		assert.Equal(t, "budi.admin", result.User.Username)
		assert.Equal(t, "10.0.0.1", user.LastLoginIP)

		claims, err := h.jwt.ValidateAccessToken(result.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, string(identity.RoleAdmin), claims.Role)
		assert.Equal(t, user.BusinessID.String(), claims.BusinessID)
	})

	t.Run("unknown user", func(t *testing.T) {
		h := newAuthHarness()
		h.userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)

		_, err := h.service.Login(context.Background(), LoginInput{Username: "ghost", Password: "x"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("wrong password increments failures", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		h.userRepo.On("FindByUsername", mock.Anything, "budi.admin").Return(user, nil)
		h.userRepo.On("Update", mock.Anything, user).Return(nil)

		_, err := h.service.Login(context.Background(), LoginInput{
			Username: "budi.admin",
			Password: "wrong",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		assert.Equal(t, 1, user.FailedAttempts)
	})

	t.Run("account locks after max attempts", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		user.FailedAttempts = 4
		h.userRepo.On("FindByUsername", mock.Anything, "budi.admin").Return(user, nil)
		h.userRepo.On("Update", mock.Anything, user).Return(nil)

		_, err := h.service.Login(context.Background(), LoginInput{
			Username: "budi.admin",
			Password: "wrong",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
		assert.True(t, user.IsLocked())
	})

	t.Run("locked account is rejected", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		require.NoError(t, user.Lock(time.Hour))
		h.userRepo.On("FindByUsername", mock.Anything, "budi.admin").Return(user, nil)

		_, err := h.service.Login(context.Background(), LoginInput{
			Username: "budi.admin",
			Password: "Password1",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
	})

	t.Run("expired lock clears on successful login", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		require.NoError(t, user.Lock(time.Millisecond))
		time.Sleep(5 * time.Millisecond)
		h.userRepo.On("FindByUsername", mock.Anything, "budi.admin").Return(user, nil)
		h.userRepo.On("Update", mock.Anything, user).Return(nil)

		result, err := h.service.Login(context.Background(), LoginInput{
			Username: "budi.admin",
			Password: "Password1",
		})

		require.NoError(t, err)
		assert.Equal(t, string(identity.UserStatusActive), result.User.Status)
	})

	t.Run("deactivated account is rejected", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		require.NoError(t, user.Deactivate())
		h.userRepo.On("FindByUsername", mock.Anything, "budi.admin").Return(user, nil)

		_, err := h.service.Login(context.Background(), LoginInput{
			Username: "budi.admin",
			Password: "Password1",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	login := func(t *testing.T, h *authHarness, user *identity.User) *LoginResult {
		t.Helper()
		h.userRepo.On("FindByUsername", mock.Anything, user.Username).Return(user, nil)
		h.userRepo.On("Update", mock.Anything, user).Return(nil)
		result, err := h.service.Login(context.Background(), LoginInput{
			Username: user.Username,
			Password: "Password1",
		})
		require.NoError(t, err)
		return result
	}

	t.Run("rotates the pair and revokes the used token", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		result := login(t, h, user)
		h.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		refreshed, err := h.service.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: result.Tokens.RefreshToken,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.Tokens.AccessToken)

		// replaying the same refresh token must fail
		_, err = h.service.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: result.Tokens.RefreshToken,
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_REFRESH_TOKEN", domainErr.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		h := newAuthHarness()

		_, err := h.service.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: "not-a-jwt",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_REFRESH_TOKEN", domainErr.Code)
	})

	t.Run("deactivated account cannot refresh", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		result := login(t, h, user)
		require.NoError(t, user.Deactivate())
		h.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		_, err := h.service.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: result.Tokens.RefreshToken,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_INACTIVE", domainErr.Code)
	})
}

func TestAuthService_Logout(t *testing.T) {
	h := newAuthHarness()
	user := newTestAdmin(t)
	h.userRepo.On("FindByUsername", mock.Anything, user.Username).Return(user, nil)
	h.userRepo.On("Update", mock.Anything, user).Return(nil)

	result, err := h.service.Login(context.Background(), LoginInput{
		Username: user.Username,
		Password: "Password1",
	})
	require.NoError(t, err)

	claims, err := h.jwt.ValidateAccessToken(result.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, h.service.Logout(context.Background(), claims))

	revoked, err := h.blacklist.IsBlacklisted(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("changes password and revokes sessions", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		h.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		h.userRepo.On("Update", mock.Anything, user).Return(nil)

		err := h.service.ChangePassword(context.Background(), ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "Password1",
			NewPassword: "Password2",
		})

		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("Password2"))

		invalidated, err := h.blacklist.IsUserTokenInvalidated(
			context.Background(), user.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, invalidated)
	})

	t.Run("wrong current password", func(t *testing.T) {
		h := newAuthHarness()
		user := newTestAdmin(t)
		h.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		err := h.service.ChangePassword(context.Background(), ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "nope",
			NewPassword: "Password2",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
	})
}
