package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dasbor/backend/internal/infrastructure/auth"
	"github.com/dasbor/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	cfg := config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "dasbor-test",
	}
	return auth.NewJWTService(cfg)
}

func newTestTokenPair(t *testing.T, jwtService *auth.JWTService) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	businessID := uuid.New()
	input := auth.GenerateTokenInput{
		UserID:     uuid.New(),
		Username:   "budi.admin",
		Role:       "admin",
		BusinessID: &businessID,
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newTestTokenPair(t, jwtService)

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/test", func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, input.BusinessID.String(), claims.BusinessID)
		assert.Equal(t, "admin", GetJWTRole(c))
		assert.Equal(t, input.BusinessID.String(), GetJWTBusinessID(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	router := gin.New()
	router.Use(JWTAuthMiddleware(newTestJWTService()))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuthMiddleware_MalformedToken(t *testing.T) {
	router := gin.New()
	router.Use(JWTAuthMiddleware(newTestJWTService()))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newTestTokenPair(t, jwtService)

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// A refresh token must not pass as an access token
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := gin.New()
	router.Use(JWTAuthMiddleware(newTestJWTService()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_BlacklistedToken(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newTestTokenPair(t, jwtService)
	blacklist := auth.NewInMemoryTokenBlacklist()

	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

	cfg := DefaultJWTConfig(jwtService)
	cfg.TokenBlacklist = blacklist

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
}

func TestJWTAuthMiddleware_InvalidatedUserSession(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newTestTokenPair(t, jwtService)
	blacklist := auth.NewInMemoryTokenBlacklist()

	// Simulate a password change after the token was issued
	require.NoError(t, blacklist.AddUserTokensToBlacklist(
		context.Background(), input.UserID.String(), 24*time.Hour))

	cfg := DefaultJWTConfig(jwtService)
	cfg.TokenBlacklist = blacklist

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
