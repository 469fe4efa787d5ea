package handler

import (
	identityapp "github.com/dasbor/backend/internal/application/identity"
	"github.com/dasbor/backend/internal/infrastructure/auth"
)

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// LoginResponse represents the response body for successful login
type LoginResponse struct {
	Token *auth.TokenPair        `json:"token"`
	User  identityapp.UserResult `json:"user"`
}

// RefreshTokenResponse represents the response body for successful token refresh
type RefreshTokenResponse struct {
	Token *auth.TokenPair `json:"token"`
}

// LogoutResponse represents the response body for logout
type LogoutResponse struct {
	Message string `json:"message"`
}
