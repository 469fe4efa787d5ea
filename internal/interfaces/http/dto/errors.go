package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain packages emit their
// own codes (shared.DomainError); the map below gives every code its status.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request body validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeRequestTooLarge is used when a request body exceeds the limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General
	ErrCodeInternal: http.StatusInternalServerError,
	"UPLOAD_FAILED": http.StatusInternalServerError,

	// Request shape -> 400 Bad Request
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	"INVALID_INPUT":   http.StatusBadRequest,

	// Authentication -> 401 Unauthorized
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	"INVALID_CREDENTIALS":   http.StatusUnauthorized,
	"INVALID_REFRESH_TOKEN": http.StatusUnauthorized,
	"INVALID_TOKEN":         http.StatusUnauthorized,
	"INVALID_TOKEN_TYPE":    http.StatusUnauthorized,
	"TOKEN_EXPIRED":         http.StatusUnauthorized,
	"TOKEN_REVOKED":         http.StatusUnauthorized,
	"INVALID_PASSWORD":      http.StatusBadRequest,

	// Account state
	"ACCOUNT_LOCKED":      http.StatusLocked,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,
	ErrCodeForbidden:      http.StatusForbidden,

	// Resources
	ErrCodeNotFound:     http.StatusNotFound,
	"FAQ_ROW_NOT_FOUND": http.StatusNotFound,
	"NO_LOGO":           http.StatusNotFound,

	// Uniqueness -> 409 Conflict
	ErrCodeConflict:         http.StatusConflict,
	"ALREADY_EXISTS":        http.StatusConflict,
	"SLUG_TAKEN":            http.StatusConflict,
	"USERNAME_TAKEN":        http.StatusConflict,
	"OPTIMISTIC_LOCK_FAILED": http.StatusConflict,

	// Business rules -> 422 Unprocessable Entity
	"INVALID_STATE":                 http.StatusUnprocessableEntity,
	"ALREADY_ACTIVE":                http.StatusUnprocessableEntity,
	"ALREADY_ARCHIVED":              http.StatusUnprocessableEntity,
	"ALREADY_DEACTIVATED":           http.StatusUnprocessableEntity,
	"NOT_LOCKED":                    http.StatusUnprocessableEntity,
	"BUSINESS_ARCHIVED":             http.StatusUnprocessableEntity,
	"BUSINESS_HAS_ADMINS":           http.StatusUnprocessableEntity,
	"CANNOT_DELETE_SUPER_ADMIN":     http.StatusUnprocessableEntity,
	"CANNOT_DEACTIVATE_SUPER_ADMIN": http.StatusUnprocessableEntity,
	"NOT_DRAFT":                     http.StatusUnprocessableEntity,
	"CAMPAIGN_DISPATCHED":           http.StatusUnprocessableEntity,
	"EMPTY_AUDIENCE":                http.StatusUnprocessableEntity,
	"DISPATCH_NOT_CONFIGURED":       http.StatusUnprocessableEntity,
	"MISSING_REQUIRED_COLUMN":       http.StatusUnprocessableEntity,

	// Sheet configuration. Fetch failures are configuration problems
	// (sharing settings), not transient upstream faults, so they answer 400
	// with remediation instructions rather than 502.
	"SHEET_NOT_CONFIGURED":    http.StatusBadRequest,
	"SHEET_FETCH_FAILED":      http.StatusBadRequest,
	"INVALID_SPREADSHEET_URL": http.StatusBadRequest,
	"WRITE_NOT_CONFIGURED":    http.StatusUnprocessableEntity,

	// Dispatch talks to the workflow webhook; its failure is an upstream one
	"DISPATCH_FAILED": http.StatusBadGateway,

	// Misc
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code. Validation
// codes follow the INVALID_ prefix convention; anything unknown is treated as
// an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
