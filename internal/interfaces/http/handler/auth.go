package handler

import (
	identityapp "github.com/dasbor/backend/internal/application/identity"
	"github.com/dasbor/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the auth endpoints. Login and refresh are public;
// the rest require a valid access token.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/auth")
	{
		public.POST("/login", h.Login)
		public.POST("/refresh", h.RefreshToken)
	}

	protected := rg.Group("/identity/auth")
	{
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.GetCurrentUser)
		protected.PUT("/password", h.ChangePassword)
	}
}

// Login authenticates with username and password and returns a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		Token: result.Tokens,
		User:  result.User,
	})
}

// RefreshToken rotates a refresh token into a new token pair
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), identityapp.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RefreshTokenResponse{Token: result.Tokens})
}

// Logout revokes the current access token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

// GetCurrentUser returns the authenticated account
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ChangePassword changes the authenticated account's password and revokes
// existing sessions
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), identityapp.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Password changed successfully"})
}
