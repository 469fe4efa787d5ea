package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role determines what a user may administer. Super-admins manage every
// business and its admin accounts; admins are scoped to exactly one business.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"      // Locked due to failed attempts
	UserStatusDeactivated UserStatus = "deactivated" // Manually deactivated
)

// Password cost for bcrypt
const bcryptCost = 12

// User is the aggregate root for dashboard accounts.
type User struct {
	shared.BaseAggregateRoot
	Username           string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email              string     `gorm:"type:varchar(200);index"`
	PasswordHash       string     `gorm:"type:varchar(200);not null"`
	DisplayName        string     `gorm:"type:varchar(200)"`
	Role               Role       `gorm:"type:varchar(20);not null;default:'admin'"`
	Status             UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	BusinessID         *uuid.UUID `gorm:"type:uuid;index"` // nil for super-admins
	LastLoginAt        *time.Time
	LastLoginIP        string `gorm:"type:varchar(45)"`
	FailedAttempts     int    `gorm:"not null;default:0"`
	LockedUntil        *time.Time
	PasswordChangedAt  *time.Time
	MustChangePassword bool `gorm:"not null;default:false"`
}

// TableName sets the database table name
func (User) TableName() string {
	return "users"
}

// NewUser creates an admin account scoped to a business.
func NewUser(username, password string, businessID uuid.UUID) (*User, error) {
	user, err := newUser(username, password)
	if err != nil {
		return nil, err
	}
	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS_ID", "Admin accounts must belong to a business")
	}
	user.Role = RoleAdmin
	user.BusinessID = &businessID
	return user, nil
}

// NewSuperAdmin creates a globally-scoped super-admin account.
func NewSuperAdmin(username, password string) (*User, error) {
	user, err := newUser(username, password)
	if err != nil {
		return nil, err
	}
	user.Role = RoleSuperAdmin
	return user, nil
}

func newUser(username, password string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:      passwordHash,
		Status:            UserStatusActive,
		PasswordChangedAt: &now,
	}, nil
}

// IsSuperAdmin returns true for globally-scoped accounts
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// CanAccessBusiness reports whether the user may act on the given business.
func (u *User) CanAccessBusiness(businessID uuid.UUID) bool {
	if u.IsSuperAdmin() {
		return true
	}
	return u.BusinessID != nil && *u.BusinessID == businessID
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}

	u.Email = email
	u.Touch()
	u.IncrementVersion()

	return nil
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(displayName string) error {
	if displayName != "" && len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	u.DisplayName = strings.TrimSpace(displayName)
	u.Touch()
	u.IncrementVersion()

	return nil
}

// AssignBusiness moves an admin account to a business. Super-admins are
// global and cannot be scoped.
func (u *User) AssignBusiness(businessID uuid.UUID) error {
	if u.IsSuperAdmin() {
		return shared.NewDomainError("INVALID_ROLE", "Super-admins cannot be scoped to a business")
	}
	if businessID == uuid.Nil {
		return shared.NewDomainError("INVALID_BUSINESS_ID", "Business ID cannot be empty")
	}

	u.BusinessID = &businessID
	u.Touch()
	u.IncrementVersion()

	return nil
}

// ChangePassword changes the user's password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	return u.SetPassword(newPassword)
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	now := time.Now()
	u.PasswordChangedAt = &now
	u.MustChangePassword = false
	u.Touch()
	u.IncrementVersion()

	return nil
}

// ForcePasswordChange marks that user must change password on next login
func (u *User) ForcePasswordChange() {
	u.MustChangePassword = true
	u.Touch()
	u.IncrementVersion()
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Activate activates the user
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()
	u.IncrementVersion()

	return nil
}

// Deactivate deactivates the user
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}

	u.Status = UserStatusDeactivated
	u.Touch()
	u.IncrementVersion()

	return nil
}

// Lock locks the user account
func (u *User) Lock(duration time.Duration) error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("USER_DEACTIVATED", "Cannot lock a deactivated user")
	}

	u.Status = UserStatusLocked
	lockedUntil := time.Now().Add(duration)
	u.LockedUntil = &lockedUntil
	u.Touch()
	u.IncrementVersion()

	return nil
}

// Unlock unlocks the user account
func (u *User) Unlock() error {
	if u.Status != UserStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "User is not locked")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()
	u.IncrementVersion()

	return nil
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.Touch()
	u.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account got locked.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.Touch()
	u.IncrementVersion()

	if u.FailedAttempts >= maxAttempts {
		_ = u.Lock(lockDuration)
		return true
	}

	return false
}

// IsLocked returns true if user is locked and the lock has not expired
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}

	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}

	return true
}

// CanLogin returns true if user can login
func (u *User) CanLogin() bool {
	if u.Status == UserStatusDeactivated {
		return false
	}
	if u.IsLocked() {
		return false
	}
	return true
}

// GetDisplayNameOrUsername returns display name if set, otherwise username
func (u *User) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Validation functions

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
