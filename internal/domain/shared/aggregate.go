package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// BusinessAggregateRoot extends BaseAggregateRoot with business (tenant) scoping
type BusinessAggregateRoot struct {
	BaseAggregateRoot
	BusinessID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index"` // Admin who created this record
}

// NewBusinessAggregateRoot creates a new business-scoped aggregate root
func NewBusinessAggregateRoot(businessID uuid.UUID) BusinessAggregateRoot {
	return BusinessAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		BusinessID:        businessID,
	}
}

// SetCreatedBy sets the creator admin ID
func (b *BusinessAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	b.CreatedBy = &userID
}
