package business

import (
	"regexp"
	"strings"

	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/dasbor/backend/internal/domain/sheet"
)

// BusinessStatus represents the lifecycle state of a business
type BusinessStatus string

const (
	BusinessStatusActive   BusinessStatus = "active"
	BusinessStatusArchived BusinessStatus = "archived"
)

// Business is the tenant aggregate. Each business owns one spreadsheet
// "database" link, one WhatsApp sender identity and one workflow webhook
// endpoint for broadcast dispatch. All of those are optional: a freshly
// created business has none of them configured and the sheet endpoints
// report that state instead of failing hard.
type Business struct {
	shared.BaseAggregateRoot
	Name           string         `gorm:"type:varchar(200);not null"`
	Slug           string         `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description    string         `gorm:"type:text"`
	SheetURL       string         `gorm:"type:varchar(500)"` // Google Sheets database link
	WhatsAppSender string         `gorm:"type:varchar(50)"`  // sender number, digits only
	WebhookURL     string         `gorm:"type:varchar(500)"` // workflow-engine dispatch endpoint
	LogoKey        string         `gorm:"type:varchar(300)"` // object storage key
	Status         BusinessStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName sets the database table name
func (Business) TableName() string {
	return "businesses"
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NewBusiness creates a business with the required fields
func NewBusiness(name, slug string) (*Business, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	return &Business{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Slug:              slug,
		Status:            BusinessStatusActive,
	}, nil
}

// Rename changes the display name
func (b *Business) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	b.Name = strings.TrimSpace(name)
	b.Touch()
	b.IncrementVersion()

	return nil
}

// SetDescription sets the free-text description
func (b *Business) SetDescription(description string) {
	b.Description = strings.TrimSpace(description)
	b.Touch()
	b.IncrementVersion()
}

// SetSheetLink stores the spreadsheet database URL. The URL must contain a
// parseable spreadsheet ID; gid fragments are kept verbatim because every
// sheet kind resolves its own tab key at read time.
func (b *Business) SetSheetLink(url string) error {
	url = strings.TrimSpace(url)
	if url != "" {
		if _, err := sheet.ParseReference(url, sheet.KindMenu); err != nil {
			return err
		}
	}

	b.SheetURL = url
	b.Touch()
	b.IncrementVersion()

	return nil
}

// HasSheetLink reports whether a spreadsheet database is configured
func (b *Business) HasSheetLink() bool {
	return b.SheetURL != ""
}

// SheetReference resolves the stored link for one sheet kind.
func (b *Business) SheetReference(kind sheet.Kind) (sheet.Reference, error) {
	if !b.HasSheetLink() {
		return sheet.Reference{}, sheet.ErrSheetNotConfigured
	}
	return sheet.ParseReference(b.SheetURL, kind)
}

var senderPattern = regexp.MustCompile(`^[0-9]{6,20}$`)

// SetWhatsAppSender stores the broadcast sender number (digits only,
// international format without the plus sign).
func (b *Business) SetWhatsAppSender(sender string) error {
	sender = strings.TrimSpace(sender)
	if sender != "" && !senderPattern.MatchString(sender) {
		return shared.NewDomainError("INVALID_SENDER", "Sender must be 6-20 digits")
	}

	b.WhatsAppSender = sender
	b.Touch()
	b.IncrementVersion()

	return nil
}

// SetWebhookURL stores the workflow-engine dispatch endpoint
func (b *Business) SetWebhookURL(url string) error {
	url = strings.TrimSpace(url)
	if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return shared.NewDomainError("INVALID_WEBHOOK_URL", "Webhook URL must be an http(s) endpoint")
	}

	b.WebhookURL = url
	b.Touch()
	b.IncrementVersion()

	return nil
}

// CanDispatch reports whether broadcast dispatch is configured
func (b *Business) CanDispatch() bool {
	return b.WebhookURL != "" && b.WhatsAppSender != ""
}

// SetLogoKey stores the object storage key of the uploaded logo
func (b *Business) SetLogoKey(key string) {
	b.LogoKey = strings.TrimSpace(key)
	b.Touch()
	b.IncrementVersion()
}

// Archive retires the business. Archived businesses keep their data but
// reject sheet and broadcast operations.
func (b *Business) Archive() error {
	if b.Status == BusinessStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Business is already archived")
	}

	b.Status = BusinessStatusArchived
	b.Touch()
	b.IncrementVersion()

	return nil
}

// Restore reactivates an archived business
func (b *Business) Restore() error {
	if b.Status == BusinessStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Business is already active")
	}

	b.Status = BusinessStatusActive
	b.Touch()
	b.IncrementVersion()

	return nil
}

// IsActive returns true if the business is active
func (b *Business) IsActive() bool {
	return b.Status == BusinessStatusActive
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot be empty")
	}
	if len(slug) > 100 {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot exceed 100 characters")
	}
	if !slugPattern.MatchString(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Slug can only contain lowercase letters, numbers and hyphens")
	}
	return nil
}
