package business

import (
	"time"

	"github.com/dasbor/backend/internal/domain/business"
	"github.com/google/uuid"
)

// CreateBusinessInput contains the input for creating a business
type CreateBusinessInput struct {
	Name        string
	Slug        string
	Description string
}

// UpdateBusinessInput contains the input for editing a business.
// Nil fields are left unchanged.
type UpdateBusinessInput struct {
	Name        *string
	Description *string
}

// UpdateSettingsInput contains the integration settings of a business.
// Nil fields are left unchanged; empty strings clear a setting.
type UpdateSettingsInput struct {
	SheetURL       *string
	WhatsAppSender *string
	WebhookURL     *string
}

// UploadLogoInput contains the input for a logo upload
type UploadLogoInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ListBusinessesInput contains the filter input for listing businesses
type ListBusinessesInput struct {
	Keyword   string
	Status    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// BusinessResult is the client-facing business representation
type BusinessResult struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description,omitempty"`
	SheetURL       string    `json:"sheetUrl,omitempty"`
	WhatsAppSender string    `json:"whatsAppSender,omitempty"`
	WebhookURL     string    `json:"webhookUrl,omitempty"`
	LogoURL        string    `json:"logoUrl,omitempty"`
	Status         string    `json:"status"`
	HasSheetLink   bool      `json:"hasSheetLink"`
	CanDispatch    bool      `json:"canDispatch"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BusinessListResult is the paginated business listing
type BusinessListResult struct {
	Businesses []BusinessResult `json:"businesses"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
}

// toBusinessResult maps a domain business to its result DTO. logoURL is
// resolved by the service because it depends on the storage backend.
func toBusinessResult(b *business.Business, logoURL string) BusinessResult {
	return BusinessResult{
		ID:             b.ID,
		Name:           b.Name,
		Slug:           b.Slug,
		Description:    b.Description,
		SheetURL:       b.SheetURL,
		WhatsAppSender: b.WhatsAppSender,
		WebhookURL:     b.WebhookURL,
		LogoURL:        logoURL,
		Status:         string(b.Status),
		HasSheetLink:   b.HasSheetLink(),
		CanDispatch:    b.CanDispatch(),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
