// Package business implements tenant administration: business CRUD, the
// integration settings (spreadsheet link, WhatsApp sender, workflow webhook)
// and logo storage.
package business

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dasbor/backend/internal/domain/business"
	"github.com/dasbor/backend/internal/domain/identity"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/dasbor/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// logo upload constraints
const (
	maxLogoSize       = 2 << 20 // 2MB
	logoURLExpiration = time.Hour
)

var allowedLogoTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/svg+xml": ".svg",
}

// Service exposes business administration operations
type Service struct {
	businessRepo business.BusinessRepository
	userRepo     identity.UserRepository
	logoStorage  storage.LogoStorage
	logger       *zap.Logger
}

// NewService creates a business service
func NewService(
	businessRepo business.BusinessRepository,
	userRepo identity.UserRepository,
	logoStorage storage.LogoStorage,
	logger *zap.Logger,
) *Service {
	return &Service{
		businessRepo: businessRepo,
		userRepo:     userRepo,
		logoStorage:  logoStorage,
		logger:       logger,
	}
}

// result resolves the logo URL before mapping to the DTO
func (s *Service) result(ctx context.Context, b *business.Business) BusinessResult {
	logoURL := ""
	if b.LogoKey != "" {
		url, _, err := s.logoStorage.DownloadURL(ctx, b.LogoKey, logoURLExpiration)
		if err != nil {
			s.logger.Warn("failed to resolve logo URL",
				zap.String("business_id", b.ID.String()),
				zap.Error(err))
		} else {
			logoURL = url
		}
	}
	return toBusinessResult(b, logoURL)
}

// CreateBusiness creates a business with a unique slug
func (s *Service) CreateBusiness(ctx context.Context, input CreateBusinessInput) (*BusinessResult, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	exists, err := s.businessRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("SLUG_TAKEN", "A business with this slug already exists")
	}

	biz, err := business.NewBusiness(input.Name, slug)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		biz.SetDescription(input.Description)
	}

	if err := s.businessRepo.Create(ctx, biz); err != nil {
		return nil, err
	}

	s.logger.Info("business created",
		zap.String("business_id", biz.ID.String()),
		zap.String("slug", biz.Slug))

	result := s.result(ctx, biz)
	return &result, nil
}

// GetBusiness returns one business by ID
func (s *Service) GetBusiness(ctx context.Context, id uuid.UUID) (*BusinessResult, error) {
	biz, err := s.businessRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := s.result(ctx, biz)
	return &result, nil
}

// GetBusinessBySlug returns one business by slug
func (s *Service) GetBusinessBySlug(ctx context.Context, slug string) (*BusinessResult, error) {
	biz, err := s.businessRepo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	result := s.result(ctx, biz)
	return &result, nil
}

// ListBusinesses returns businesses matching the filter with pagination
func (s *Service) ListBusinesses(ctx context.Context, input ListBusinessesInput) (*BusinessListResult, error) {
	filter := business.NewBusinessFilter().WithKeyword(input.Keyword)
	if input.Status != "" {
		filter = filter.WithStatus(business.BusinessStatus(input.Status))
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

	businesses, total, err := s.businessRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]BusinessResult, len(businesses))
	for i, b := range businesses {
		results[i] = s.result(ctx, b)
	}

	return &BusinessListResult{
		Businesses: results,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.Limit(),
	}, nil
}

// UpdateBusiness edits the display fields. Nil input fields are left
// unchanged.
func (s *Service) UpdateBusiness(ctx context.Context, id uuid.UUID, input UpdateBusinessInput) (*BusinessResult, error) {
	biz, err := s.businessRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := biz.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		biz.SetDescription(*input.Description)
	}

	if err := s.businessRepo.Update(ctx, biz); err != nil {
		return nil, err
	}

	result := s.result(ctx, biz)
	return &result, nil
}

// UpdateSettings stores the integration settings: spreadsheet link, WhatsApp
// sender and workflow webhook. Each is validated by the domain; empty strings
// clear a setting.
func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, input UpdateSettingsInput) (*BusinessResult, error) {
	biz, err := s.businessRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SheetURL != nil {
		if err := biz.SetSheetLink(*input.SheetURL); err != nil {
			return nil, err
		}
	}
	if input.WhatsAppSender != nil {
		if err := biz.SetWhatsAppSender(*input.WhatsAppSender); err != nil {
			return nil, err
		}
	}
	if input.WebhookURL != nil {
		if err := biz.SetWebhookURL(*input.WebhookURL); err != nil {
			return nil, err
		}
	}

	if err := s.businessRepo.Update(ctx, biz); err != nil {
		return nil, err
	}

	s.logger.Info("business settings updated",
		zap.String("business_id", biz.ID.String()),
		zap.Bool("has_sheet_link", biz.HasSheetLink()),
		zap.Bool("can_dispatch", biz.CanDispatch()))

	result := s.result(ctx, biz)
	return &result, nil
}

// UploadLogo validates and stores a logo image, replacing any previous one
func (s *Service) UploadLogo(ctx context.Context, id uuid.UUID, input UploadLogoInput) (*BusinessResult, error) {
	biz, err := s.businessRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(input.Data) == 0 {
		return nil, shared.NewDomainError("INVALID_LOGO", "Logo file is empty")
	}
	if len(input.Data) > maxLogoSize {
		return nil, shared.NewDomainError("INVALID_LOGO", "Logo must be 2MB or smaller")
	}
	ext, ok := allowedLogoTypes[input.ContentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_LOGO", "Logo must be a PNG, JPEG, WebP or SVG image")
	}

	filename := strings.TrimSuffix(filepath.Base(input.Filename), filepath.Ext(input.Filename))
	if filename == "" || filename == "." {
		filename = "logo"
	}
	key := storage.LogoKey(biz.ID.String(), fmt.Sprintf("%s-%d%s", filename, time.Now().Unix(), ext))

	if err := s.logoStorage.Upload(ctx, key, input.Data, input.ContentType); err != nil {
		s.logger.Error("logo upload failed",
			zap.String("business_id", biz.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to store the logo")
	}

	oldKey := biz.LogoKey
	biz.SetLogoKey(key)
	if err := s.businessRepo.Update(ctx, biz); err != nil {
		return nil, err
	}

	if oldKey != "" && oldKey != key {
		if err := s.logoStorage.Delete(ctx, oldKey); err != nil {
			s.logger.Warn("failed to delete previous logo",
				zap.String("key", oldKey),
				zap.Error(err))
		}
	}

	result := s.result(ctx, biz)
	return &result, nil
}

// DeleteLogo removes the stored logo
func (s *Service) DeleteLogo(ctx context.Context, id uuid.UUID) (*BusinessResult, error) {
	biz, err := s.businessRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if biz.LogoKey == "" {
		return nil, shared.NewDomainError("NO_LOGO", "Business has no logo")
	}

	if err := s.logoStorage.Delete(ctx, biz.LogoKey); err != nil {
		s.logger.Warn("failed to delete logo object",
			zap.String("key", biz.LogoKey),
			zap.Error(err))
	}
	biz.SetLogoKey("")
	if err := s.businessRepo.Update(ctx, biz); err != nil {
		return nil, err
	}

	result := s.result(ctx, biz)
	return &result, nil
}

// ArchiveBusiness retires a business. Its data stays but sheet and broadcast
// operations are rejected until it is restored.
func (s *Service) ArchiveBusiness(ctx context.Context, id uuid.UUID) (*BusinessResult, error) {
	biz, err := s.businessRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := biz.Archive(); err != nil {
		return nil, err
	}
	if err := s.businessRepo.Update(ctx, biz); err != nil {
		return nil, err
	}

	s.logger.Info("business archived", zap.String("business_id", id.String()))

	result := s.result(ctx, biz)
	return &result, nil
}

// RestoreBusiness reactivates an archived business
func (s *Service) RestoreBusiness(ctx context.Context, id uuid.UUID) (*BusinessResult, error) {
	biz, err := s.businessRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := biz.Restore(); err != nil {
		return nil, err
	}
	if err := s.businessRepo.Update(ctx, biz); err != nil {
		return nil, err
	}

	result := s.result(ctx, biz)
	return &result, nil
}

// DeleteBusiness removes a business permanently. Businesses with admin
// accounts still attached cannot be deleted.
func (s *Service) DeleteBusiness(ctx context.Context, id uuid.UUID) error {
	biz, err := s.businessRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	admins, err := s.userRepo.CountByBusiness(ctx, id)
	if err != nil {
		return err
	}
	if admins > 0 {
		return shared.NewDomainError("BUSINESS_HAS_ADMINS",
			fmt.Sprintf("Business still has %d admin account(s). Delete or reassign them first", admins))
	}

	if biz.LogoKey != "" {
		if err := s.logoStorage.Delete(ctx, biz.LogoKey); err != nil {
			s.logger.Warn("failed to delete logo during business deletion",
				zap.String("key", biz.LogoKey),
				zap.Error(err))
		}
	}

	if err := s.businessRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("business deleted", zap.String("business_id", id.String()))
	return nil
}
