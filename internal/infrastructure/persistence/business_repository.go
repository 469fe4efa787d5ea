package persistence

import (
	"context"
	"errors"

	"github.com/dasbor/backend/internal/domain/business"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBusinessRepository implements BusinessRepository using GORM
type GormBusinessRepository struct {
	db *gorm.DB
}

// NewGormBusinessRepository creates a new GormBusinessRepository
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// Create creates a new business
func (r *GormBusinessRepository) Create(ctx context.Context, b *business.Business) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// Update updates an existing business
func (r *GormBusinessRepository) Update(ctx context.Context, b *business.Business) error {
	result := r.db.WithContext(ctx).
		Model(&business.Business{}).
		Where("id = ?", b.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(b)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a business by ID
func (r *GormBusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&business.Business{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a business by ID
func (r *GormBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*business.Business, error) {
	var b business.Business
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindBySlug finds a business by slug
func (r *GormBusinessRepository) FindBySlug(ctx context.Context, slug string) (*business.Business, error) {
	var b business.Business
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindAll finds businesses matching the filter and returns the unpaginated total
func (r *GormBusinessRepository) FindAll(ctx context.Context, filter business.BusinessFilter) ([]*business.Business, int64, error) {
	var total int64
	countQuery := r.applyFilter(r.db.WithContext(ctx).Model(&business.Business{}), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.SortBy, BusinessSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)

	var businesses []*business.Business
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&business.Business{}), filter).
		Order(sortField + " " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&businesses).Error; err != nil {
		return nil, 0, err
	}
	return businesses, total, nil
}

// ExistsBySlug checks if a slug already exists
func (r *GormBusinessRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&business.Business{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormBusinessRepository) applyFilter(query *gorm.DB, filter business.BusinessFilter) *gorm.DB {
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("name ILIKE ? OR slug ILIKE ?", pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// Ensure GormBusinessRepository implements BusinessRepository
var _ business.BusinessRepository = (*GormBusinessRepository)(nil)
