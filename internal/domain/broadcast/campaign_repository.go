package broadcast

import (
	"context"

	"github.com/google/uuid"
)

// CampaignRepository defines the interface for campaign persistence
type CampaignRepository interface {
	// Create creates a new campaign
	Create(ctx context.Context, c *Campaign) error

	// Update updates an existing campaign
	Update(ctx context.Context, c *Campaign) error

	// Delete deletes a campaign by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a campaign by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// FindAll returns campaigns matching the filter with pagination
	FindAll(ctx context.Context, filter CampaignFilter) ([]*Campaign, int64, error)

	// CountByBusiness returns the number of campaigns for a business
	CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error)
}

// CampaignFilter contains filter options for querying campaigns
type CampaignFilter struct {
	// Scope to one business
	BusinessID *uuid.UUID

	// Filter by status
	Status *CampaignStatus

	// Search keyword for name
	Keyword string

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewCampaignFilter creates a new CampaignFilter with default values
func NewCampaignFilter() CampaignFilter {
	return CampaignFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithBusinessID scopes the query to one business
func (f CampaignFilter) WithBusinessID(businessID uuid.UUID) CampaignFilter {
	f.BusinessID = &businessID
	return f
}

// WithStatus sets the status filter
func (f CampaignFilter) WithStatus(status CampaignStatus) CampaignFilter {
	f.Status = &status
	return f
}

// WithKeyword sets the search keyword
func (f CampaignFilter) WithKeyword(keyword string) CampaignFilter {
	f.Keyword = keyword
	return f
}

// WithPagination sets pagination parameters
func (f CampaignFilter) WithPagination(page, pageSize int) CampaignFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f CampaignFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f CampaignFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
