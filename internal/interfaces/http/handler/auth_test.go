package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	identityapp "github.com/dasbor/backend/internal/application/identity"
	"github.com/dasbor/backend/internal/domain/identity"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/dasbor/backend/internal/infrastructure/auth"
	"github.com/dasbor/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a testify mock of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
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

func newHandlerJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "dasbor-test",
	})
}

func newAuthTestRouter(t *testing.T) (*gin.Engine, *MockUserRepository) {
	t.Helper()
	userRepo := new(MockUserRepository)
	authService := identityapp.NewAuthService(
		userRepo,
		newHandlerJWTService(),
		auth.NewInMemoryTokenBlacklist(),
		identityapp.DefaultAuthServiceConfig(),
		zap.NewNop(),
	)

	router := gin.New()
	api := router.Group("/api/v1")
	NewAuthHandler(authService).RegisterRoutes(api)
	return router, userRepo
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns token pair and user", func(t *testing.T) {
		router, userRepo := newAuthTestRouter(t)

		businessID := uuid.New()
		user, err := identity.NewUser("budi.admin", "Password1", businessID)
		require.NoError(t, err)
		userRepo.On("FindByUsername", mock.Anything, "budi.admin").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		w := postJSON(t, router, "/api/v1/auth/login", gin.H{
			"username": "budi.admin",
			"password": "Password1",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Success bool          `json:"success"`
			Data    LoginResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data.Token.AccessToken)
		assert.NotEmpty(t, resp.Data.Token.RefreshToken)
		assert.Equal(t, "budi.admin", resp.Data.User.Username)
	})

	t.Run("wrong password answers 401", func(t *testing.T) {
		router, userRepo := newAuthTestRouter(t)

		user, err := identity.NewUser("budi.admin", "Password1", uuid.New())
		require.NoError(t, err)
		userRepo.On("FindByUsername", mock.Anything, "budi.admin").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		w := postJSON(t, router, "/api/v1/auth/login", gin.H{
			"username": "budi.admin",
			"password": "WrongPass1",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
	})

	t.Run("unknown user answers 401 with the same code", func(t *testing.T) {
		router, userRepo := newAuthTestRouter(t)
		userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)

		w := postJSON(t, router, "/api/v1/auth/login", gin.H{
			"username": "ghost",
			"password": "Password1",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
	})

	t.Run("short password fails validation before the service", func(t *testing.T) {
		router, userRepo := newAuthTestRouter(t)

		w := postJSON(t, router, "/api/v1/auth/login", gin.H{
			"username": "budi.admin",
			"password": "short",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		userRepo.AssertNotCalled(t, "FindByUsername")
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	router, userRepo := newAuthTestRouter(t)

	user, err := identity.NewUser("budi.admin", "Password1", uuid.New())
	require.NoError(t, err)
	userRepo.On("FindByUsername", mock.Anything, "budi.admin").Return(user, nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	login := postJSON(t, router, "/api/v1/auth/login", gin.H{
		"username": "budi.admin",
		"password": "Password1",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var loginResp struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &loginResp))

	w := postJSON(t, router, "/api/v1/auth/refresh", gin.H{
		"refresh_token": loginResp.Data.Token.RefreshToken,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var refreshResp struct {
		Data RefreshTokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshResp))
	assert.NotEmpty(t, refreshResp.Data.Token.AccessToken)

	// The used refresh token is rotated out
	replay := postJSON(t, router, "/api/v1/auth/refresh", gin.H{
		"refresh_token": loginResp.Data.Token.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}
