package broadcast

import (
	"time"

	"github.com/dasbor/backend/internal/domain/broadcast"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCampaignInput contains the input for creating a draft campaign
type CreateCampaignInput struct {
	BusinessID      uuid.UUID
	Name            string
	Message         string
	ReservationDate string
	CreatedBy       *uuid.UUID
}

// UpdateCampaignInput contains the input for editing a draft campaign.
// Nil fields are left unchanged.
type UpdateCampaignInput struct {
	Name            *string
	Message         *string
	ReservationDate *string
}

// ListCampaignsInput contains the filter input for listing campaigns
type ListCampaignsInput struct {
	BusinessID uuid.UUID
	Status     string
	Keyword    string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// CampaignResult is the client-facing campaign representation
type CampaignResult struct {
	ID              uuid.UUID       `json:"id"`
	BusinessID      uuid.UUID       `json:"businessId"`
	Name            string          `json:"name"`
	Message         string          `json:"message"`
	ReservationDate string          `json:"reservationDate,omitempty"`
	Status          string          `json:"status"`
	DispatchedAt    *time.Time      `json:"dispatchedAt,omitempty"`
	RecipientCount  int             `json:"recipientCount"`
	EstimatedCost   decimal.Decimal `json:"estimatedCost"`
	FailureReason   string          `json:"failureReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CampaignListResult is the paginated campaign listing
type CampaignListResult struct {
	Campaigns []CampaignResult `json:"campaigns"`
	Total     int64            `json:"total"`
	Page      int              `json:"page"`
	PageSize  int              `json:"pageSize"`
}

// DispatchResult reports the outcome of a successful dispatch
type DispatchResult struct {
	Campaign       CampaignResult  `json:"campaign"`
	RecipientCount int             `json:"recipientCount"`
	EstimatedCost  decimal.Decimal `json:"estimatedCost"`
}

// toCampaignResult maps a domain campaign to its result DTO
func toCampaignResult(c *broadcast.Campaign) CampaignResult {
	return CampaignResult{
		ID:              c.ID,
		BusinessID:      c.BusinessID,
		Name:            c.Name,
		Message:         c.Message,
		ReservationDate: c.ReservationDate,
		Status:          string(c.Status),
		DispatchedAt:    c.DispatchedAt,
		RecipientCount:  c.RecipientCount,
		EstimatedCost:   c.EstimatedCost,
		FailureReason:   c.FailureReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
