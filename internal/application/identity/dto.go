package identity

import (
	"time"

	"github.com/dasbor/backend/internal/domain/identity"
	"github.com/dasbor/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// LoginInput contains the input for the login operation
type LoginInput struct {
	Username string
	Password string
	IP       string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	User   UserResult      `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the rotated token pair
type RefreshTokenResult struct {
	Tokens *auth.TokenPair `json:"tokens"`
}

// ChangePasswordInput contains the input for a self-service password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateAdminInput contains the input for creating a business admin account
type CreateAdminInput struct {
	Username    string
	Password    string
	Email       string
	DisplayName string
	BusinessID  uuid.UUID
}

// UpdateUserInput contains the input for editing an account.
// Nil fields are left unchanged.
type UpdateUserInput struct {
	Email       *string
	DisplayName *string
	BusinessID  *uuid.UUID
}

// ResetPasswordInput contains the input for an admin-initiated password reset
type ResetPasswordInput struct {
	NewPassword string
}

// ListUsersInput contains the filter input for listing accounts
type ListUsersInput struct {
	Keyword    string
	Status     string
	Role       string
	BusinessID *uuid.UUID
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// UserResult is the client-facing account representation
type UserResult struct {
	ID                 uuid.UUID  `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email,omitempty"`
	DisplayName        string     `json:"displayName,omitempty"`
	Role               string     `json:"role"`
	Status             string     `json:"status"`
	BusinessID         *uuid.UUID `json:"businessId,omitempty"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
	MustChangePassword bool       `json:"mustChangePassword"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// UserListResult is the paginated account listing
type UserListResult struct {
	Users    []UserResult `json:"users"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

// toUserResult maps a domain user to its result DTO
func toUserResult(u *identity.User) UserResult {
	return UserResult{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		DisplayName:        u.DisplayName,
		Role:               string(u.Role),
		Status:             string(u.Status),
		BusinessID:         u.BusinessID,
		LastLoginAt:        u.LastLoginAt,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
