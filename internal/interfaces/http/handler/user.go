package handler

import (
	"context"

	identityapp "github.com/dasbor/backend/internal/application/identity"
	"github.com/dasbor/backend/internal/interfaces/http/dto"
	"github.com/dasbor/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles admin account management. All routes are super-admin
// only: scoped admins have no say over accounts, including their own.
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterRoutes registers the account management endpoints
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/identity/users")
	users.Use(middleware.RequireSuperAdmin())
	{
		users.POST("", h.CreateAdmin)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.POST("/:id/activate", h.ActivateUser)
		users.POST("/:id/deactivate", h.DeactivateUser)
		users.POST("/:id/unlock", h.UnlockUser)
		users.POST("/:id/reset-password", h.ResetPassword)
	}
}

// CreateAdminRequest represents the request body for creating an admin account
type CreateAdminRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	Email       string `json:"email" binding:"omitempty,email"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
	BusinessID  string `json:"business_id" binding:"required,uuid"`
}

// UpdateUserRequest represents the request body for editing an account.
// Omitted fields are left unchanged.
type UpdateUserRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	BusinessID  *string `json:"business_id" binding:"omitempty,uuid"`
}

// ResetPasswordRequest represents the request body for an admin-initiated
// password reset
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// CreateAdmin creates a business-scoped admin account
func (h *UserHandler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		h.BadRequest(c, "Invalid business ID")
		return
	}

	result, err := h.userService.CreateAdmin(c.Request.Context(), identityapp.CreateAdminInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		BusinessID:  businessID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListUsers returns accounts matching the filter
func (h *UserHandler) ListUsers(c *gin.Context) {
	list := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&list); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	input := identityapp.ListUsersInput{
		Keyword:   list.Search,
		Status:    c.Query("status"),
		Role:      c.Query("role"),
		Page:      list.Page,
		PageSize:  list.PageSize,
		SortBy:    list.SortBy,
		SortOrder: list.SortDir,
	}
	if businessParam := c.Query("business_id"); businessParam != "" {
		businessID, err := uuid.Parse(businessParam)
		if err != nil {
			h.BadRequest(c, "Invalid business ID")
			return
		}
		input.BusinessID = &businessID
	}

	result, err := h.userService.ListUsers(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Users, result.Total, result.Page, result.PageSize)
}

// GetUser returns one account
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	result, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateUser edits an account
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	input := identityapp.UpdateUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}
	if req.BusinessID != nil {
		businessID, err := uuid.Parse(*req.BusinessID)
		if err != nil {
			h.BadRequest(c, "Invalid business ID")
			return
		}
		input.BusinessID = &businessID
	}

	result, err := h.userService.UpdateUser(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteUser removes an account and revokes its sessions
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ActivateUser re-enables a deactivated account
func (h *UserHandler) ActivateUser(c *gin.Context) {
	h.userStateChange(c, h.userService.ActivateUser)
}

// DeactivateUser disables an account and revokes its sessions
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	h.userStateChange(c, h.userService.DeactivateUser)
}

// UnlockUser clears a login-failure lockout
func (h *UserHandler) UnlockUser(c *gin.Context) {
	h.userStateChange(c, h.userService.UnlockUser)
}

// ResetPassword sets a temporary password and forces a change at next login
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err = h.userService.ResetPassword(c.Request.Context(), id, identityapp.ResetPasswordInput{
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Password reset. The user must change it at next login"})
}

func (h *UserHandler) userStateChange(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*identityapp.UserResult, error)) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	result, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
