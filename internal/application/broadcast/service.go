// Package broadcast implements campaign management and WhatsApp broadcast
// dispatch through the business's workflow webhook.
package broadcast

import (
	"context"
	"fmt"

	"github.com/dasbor/backend/internal/domain/broadcast"
	"github.com/dasbor/backend/internal/domain/business"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AudienceSource resolves the recipient list for a business at dispatch
// time. An empty reservationDate means every customer with a phone number;
// a YYYY-MM-DD date narrows to customers holding a reservation on that date.
type AudienceSource interface {
	Recipients(ctx context.Context, businessID uuid.UUID, reservationDate string) ([]broadcast.Recipient, error)
}

// Service exposes campaign CRUD and dispatch
type Service struct {
	campaignRepo   broadcast.CampaignRepository
	businessRepo   business.BusinessRepository
	audience       AudienceSource
	dispatcher     broadcast.Dispatcher
	costPerMessage decimal.Decimal
	logger         *zap.Logger
}

// NewService creates a broadcast service. costPerMessage is the per-recipient
// cost estimate recorded on dispatched campaigns.
func NewService(
	campaignRepo broadcast.CampaignRepository,
	businessRepo business.BusinessRepository,
	audience AudienceSource,
	dispatcher broadcast.Dispatcher,
	costPerMessage decimal.Decimal,
	logger *zap.Logger,
) *Service {
	return &Service{
		campaignRepo:   campaignRepo,
		businessRepo:   businessRepo,
		audience:       audience,
		dispatcher:     dispatcher,
		costPerMessage: costPerMessage,
		logger:         logger,
	}
}

// CreateCampaign creates a draft campaign for a business
func (s *Service) CreateCampaign(ctx context.Context, input CreateCampaignInput) (*CampaignResult, error) {
	biz, err := s.businessRepo.FindByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if !biz.IsActive() {
		return nil, shared.NewDomainError("BUSINESS_ARCHIVED", "Business is archived")
	}

	campaign, err := broadcast.NewCampaign(input.BusinessID, input.Name, input.Message)
	if err != nil {
		return nil, err
	}
	if err := campaign.SetReservationDate(input.ReservationDate); err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		campaign.SetCreatedBy(*input.CreatedBy)
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("campaign created",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("business_id", input.BusinessID.String()))

	result := toCampaignResult(campaign)
	return &result, nil
}

// findScoped loads a campaign and verifies it belongs to the business.
// Campaigns of other tenants are indistinguishable from missing ones.
func (s *Service) findScoped(ctx context.Context, businessID, campaignID uuid.UUID) (*broadcast.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.BusinessID != businessID {
		return nil, shared.ErrNotFound
	}
	return campaign, nil
}

// GetCampaign returns one campaign of a business
func (s *Service) GetCampaign(ctx context.Context, businessID, campaignID uuid.UUID) (*CampaignResult, error) {
	campaign, err := s.findScoped(ctx, businessID, campaignID)
	if err != nil {
		return nil, err
	}
	result := toCampaignResult(campaign)
	return &result, nil
}

// UpdateCampaign edits a draft campaign. Nil input fields are left unchanged.
func (s *Service) UpdateCampaign(ctx context.Context, businessID, campaignID uuid.UUID, input UpdateCampaignInput) (*CampaignResult, error) {
	campaign, err := s.findScoped(ctx, businessID, campaignID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := campaign.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Message != nil {
		if err := campaign.SetMessage(*input.Message); err != nil {
			return nil, err
		}
	}
	if input.ReservationDate != nil {
		if err := campaign.SetReservationDate(*input.ReservationDate); err != nil {
			return nil, err
		}
	}

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	result := toCampaignResult(campaign)
	return &result, nil
}

// DeleteCampaign removes a campaign. Dispatched campaigns are part of the
// business's history and cannot be deleted.
func (s *Service) DeleteCampaign(ctx context.Context, businessID, campaignID uuid.UUID) error {
	campaign, err := s.findScoped(ctx, businessID, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status == broadcast.CampaignStatusDispatched {
		return shared.NewDomainError("CAMPAIGN_DISPATCHED", "Dispatched campaigns cannot be deleted")
	}

	if err := s.campaignRepo.Delete(ctx, campaignID); err != nil {
		return err
	}

	s.logger.Info("campaign deleted",
		zap.String("campaign_id", campaignID.String()),
		zap.String("business_id", businessID.String()))

	return nil
}

// ListCampaigns returns the campaigns of a business with pagination
func (s *Service) ListCampaigns(ctx context.Context, input ListCampaignsInput) (*CampaignListResult, error) {
	filter := broadcast.NewCampaignFilter().
		WithBusinessID(input.BusinessID).
		WithKeyword(input.Keyword)
	if input.Status != "" {
		filter = filter.WithStatus(broadcast.CampaignStatus(input.Status))
	}
	if input.Page > 0 || input.PageSize > 0 {
		filter = filter.WithPagination(input.Page, input.PageSize)
	}
	if input.SortBy != "" {
		filter.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		filter.SortOrder = input.SortOrder
	}

	campaigns, total, err := s.campaignRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]CampaignResult, len(campaigns))
	for i, c := range campaigns {
		results[i] = toCampaignResult(c)
	}

	return &CampaignListResult{
		Campaigns: results,
		Total:     total,
		Page:      filter.Page,
		PageSize:  filter.Limit(),
	}, nil
}

// Dispatch resolves the audience and posts the campaign to the business's
// workflow webhook. The flow is one-shot: a failed dispatch marks the
// campaign failed and a retry means creating a new campaign.
func (s *Service) Dispatch(ctx context.Context, businessID, campaignID uuid.UUID) (*DispatchResult, error) {
	campaign, err := s.findScoped(ctx, businessID, campaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.IsDraft() {
		return nil, shared.NewDomainError("NOT_DRAFT", "Campaign has already been dispatched")
	}

	biz, err := s.businessRepo.FindByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !biz.IsActive() {
		return nil, shared.NewDomainError("BUSINESS_ARCHIVED", "Business is archived")
	}
	if !biz.CanDispatch() {
		return nil, shared.NewDomainErrorWithInstructions("DISPATCH_NOT_CONFIGURED",
			"Broadcast dispatch is not configured for this business",
			[]string{
				"Set the WhatsApp sender number in business settings",
				"Set the workflow webhook URL in business settings",
			})
	}

	recipients, err := s.audience.Recipients(ctx, businessID, campaign.ReservationDate)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, shared.NewDomainError("EMPTY_AUDIENCE",
			"No customers match this campaign's audience filter")
	}

	req := broadcast.DispatchRequest{
		CampaignID: campaign.ID.String(),
		Sender:     biz.WhatsAppSender,
		Message:    campaign.Message,
		Recipients: recipients,
	}
	if err := s.dispatcher.Dispatch(ctx, biz.WebhookURL, req); err != nil {
		s.logger.Error("campaign dispatch failed",
			zap.String("campaign_id", campaignID.String()),
			zap.String("business_id", businessID.String()),
			zap.Error(err))

		if markErr := campaign.MarkFailed(err.Error()); markErr == nil {
			if updateErr := s.campaignRepo.Update(ctx, campaign); updateErr != nil {
				s.logger.Error("failed to record dispatch failure",
					zap.String("campaign_id", campaignID.String()),
					zap.Error(updateErr))
			}
		}
		return nil, shared.NewDomainError("DISPATCH_FAILED",
			fmt.Sprintf("Broadcast dispatch failed: %v", err))
	}

	if err := campaign.MarkDispatched(len(recipients), s.costPerMessage); err != nil {
		return nil, err
	}
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("campaign dispatched",
		zap.String("campaign_id", campaignID.String()),
		zap.String("business_id", businessID.String()),
		zap.Int("recipients", len(recipients)))

	result := toCampaignResult(campaign)
	return &DispatchResult{
		Campaign:       result,
		RecipientCount: campaign.RecipientCount,
		EstimatedCost:  campaign.EstimatedCost,
	}, nil
}
