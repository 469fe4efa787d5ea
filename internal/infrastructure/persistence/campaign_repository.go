package persistence

import (
	"context"
	"errors"

	"github.com/dasbor/backend/internal/domain/broadcast"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCampaignRepository implements CampaignRepository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// Create creates a new campaign
func (r *GormCampaignRepository) Create(ctx context.Context, c *broadcast.Campaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Update updates an existing campaign with optimistic locking
func (r *GormCampaignRepository) Update(ctx context.Context, c *broadcast.Campaign) error {
	result := r.db.WithContext(ctx).
		Model(&broadcast.Campaign{}).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Select("*").
		Omit("id", "created_at", "business_id").
		Updates(c)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		r.db.WithContext(ctx).Model(&broadcast.Campaign{}).Where("id = ?", c.ID).Count(&count)
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED",
			"Campaign was modified by another transaction")
	}
	return nil
}

// Delete deletes a campaign by ID
func (r *GormCampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&broadcast.Campaign{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a campaign by ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*broadcast.Campaign, error) {
	var c broadcast.Campaign
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll finds campaigns matching the filter and returns the unpaginated total
func (r *GormCampaignRepository) FindAll(ctx context.Context, filter broadcast.CampaignFilter) ([]*broadcast.Campaign, int64, error) {
	var total int64
	countQuery := r.applyFilter(r.db.WithContext(ctx).Model(&broadcast.Campaign{}), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.SortBy, CampaignSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)

	var campaigns []*broadcast.Campaign
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&broadcast.Campaign{}), filter).
		Order(sortField + " " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// CountByBusiness returns the number of campaigns for a business
func (r *GormCampaignRepository) CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&broadcast.Campaign{}).
		Where("business_id = ?", businessID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCampaignRepository) applyFilter(query *gorm.DB, filter broadcast.CampaignFilter) *gorm.DB {
	if filter.BusinessID != nil {
		query = query.Where("business_id = ?", *filter.BusinessID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Keyword != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Keyword+"%")
	}
	return query
}

// Ensure GormCampaignRepository implements CampaignRepository
var _ broadcast.CampaignRepository = (*GormCampaignRepository)(nil)
