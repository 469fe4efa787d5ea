package business

import (
	"context"

	"github.com/google/uuid"
)

// BusinessRepository defines the interface for business persistence
type BusinessRepository interface {
	// Create creates a new business
	Create(ctx context.Context, b *Business) error

	// Update updates an existing business
	Update(ctx context.Context, b *Business) error

	// Delete deletes a business by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a business by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Business, error)

	// FindBySlug finds a business by slug
	FindBySlug(ctx context.Context, slug string) (*Business, error)

	// FindAll returns businesses matching the filter with pagination
	FindAll(ctx context.Context, filter BusinessFilter) ([]*Business, int64, error)

	// ExistsBySlug checks if a slug already exists
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// BusinessFilter contains filter options for querying businesses
type BusinessFilter struct {
	// Search keyword for name or slug
	Keyword string

	// Filter by status
	Status *BusinessStatus

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewBusinessFilter creates a new BusinessFilter with default values
func NewBusinessFilter() BusinessFilter {
	return BusinessFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithKeyword sets the search keyword
func (f BusinessFilter) WithKeyword(keyword string) BusinessFilter {
	f.Keyword = keyword
	return f
}

// WithStatus sets the status filter
func (f BusinessFilter) WithStatus(status BusinessStatus) BusinessFilter {
	f.Status = &status
	return f
}

// WithPagination sets pagination parameters
func (f BusinessFilter) WithPagination(page, pageSize int) BusinessFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f BusinessFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f BusinessFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
