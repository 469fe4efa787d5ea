package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"status":        true,
	"last_login_at": true,
}

// BusinessSortFields contains allowed sort fields for businesses
var BusinessSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"slug":       true,
	"status":     true,
}

// CampaignSortFields contains allowed sort fields for campaigns
var CampaignSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"name":             true,
	"status":           true,
	"reservation_date": true,
	"dispatched_at":    true,
	"recipient_count":  true,
}
