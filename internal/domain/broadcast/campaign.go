package broadcast

import (
	"strings"
	"time"

	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CampaignStatus represents the dispatch state of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft      CampaignStatus = "draft"
	CampaignStatusDispatched CampaignStatus = "dispatched"
	CampaignStatusFailed     CampaignStatus = "failed"
)

const maxMessageLength = 4096

// Campaign is a WhatsApp broadcast owned by one business. The audience is
// resolved from the customer sheet at dispatch time, optionally narrowed to
// customers with a reservation on one date, so the campaign itself only
// stores the filter, never the recipient list.
type Campaign struct {
	shared.BusinessAggregateRoot
	Name            string          `gorm:"type:varchar(200);not null"`
	Message         string          `gorm:"type:text;not null"`
	ReservationDate string          `gorm:"type:varchar(10)"` // YYYY-MM-DD audience filter, empty = all customers
	Status          CampaignStatus  `gorm:"type:varchar(20);not null;default:'draft'"`
	DispatchedAt    *time.Time
	RecipientCount  int             `gorm:"not null;default:0"`
	EstimatedCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FailureReason   string          `gorm:"type:text"`
}

// TableName sets the database table name
func (Campaign) TableName() string {
	return "campaigns"
}

// NewCampaign creates a draft campaign for a business
func NewCampaign(businessID uuid.UUID, name, message string) (*Campaign, error) {
	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS_ID", "Campaign must belong to a business")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateMessage(message); err != nil {
		return nil, err
	}

	return &Campaign{
		BusinessAggregateRoot: shared.NewBusinessAggregateRoot(businessID),
		Name:                  strings.TrimSpace(name),
		Message:               message,
		Status:                CampaignStatusDraft,
		EstimatedCost:         decimal.Zero,
	}, nil
}

// SetMessage updates the message text. Only drafts can be edited.
func (c *Campaign) SetMessage(message string) error {
	if err := c.ensureDraft(); err != nil {
		return err
	}
	if err := validateMessage(message); err != nil {
		return err
	}

	c.Message = message
	c.Touch()
	c.IncrementVersion()

	return nil
}

// Rename updates the campaign name. Only drafts can be edited.
func (c *Campaign) Rename(name string) error {
	if err := c.ensureDraft(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(name)
	c.Touch()
	c.IncrementVersion()

	return nil
}

// SetReservationDate narrows the audience to customers holding a reservation
// on the given date (YYYY-MM-DD). Empty clears the filter.
func (c *Campaign) SetReservationDate(date string) error {
	if err := c.ensureDraft(); err != nil {
		return err
	}
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return shared.NewDomainError("INVALID_DATE", "Reservation date must be YYYY-MM-DD")
		}
	}

	c.ReservationDate = date
	c.Touch()
	c.IncrementVersion()

	return nil
}

// MarkDispatched records a successful dispatch
func (c *Campaign) MarkDispatched(recipients int, costPerMessage decimal.Decimal) error {
	if err := c.ensureDraft(); err != nil {
		return err
	}
	if recipients < 0 {
		return shared.NewDomainError("INVALID_RECIPIENTS", "Recipient count cannot be negative")
	}

	now := time.Now()
	c.Status = CampaignStatusDispatched
	c.DispatchedAt = &now
	c.RecipientCount = recipients
	c.EstimatedCost = costPerMessage.Mul(decimal.NewFromInt(int64(recipients)))
	c.FailureReason = ""
	c.Touch()
	c.IncrementVersion()

	return nil
}

// MarkFailed records a failed dispatch attempt. Failed campaigns are not
// editable; the dispatch flow is one-shot and a retry means a new campaign.
func (c *Campaign) MarkFailed(reason string) error {
	if err := c.ensureDraft(); err != nil {
		return err
	}

	c.Status = CampaignStatusFailed
	c.FailureReason = strings.TrimSpace(reason)
	c.Touch()
	c.IncrementVersion()

	return nil
}

// IsDraft returns true while the campaign has not been dispatched
func (c *Campaign) IsDraft() bool {
	return c.Status == CampaignStatusDraft
}

func (c *Campaign) ensureDraft() error {
	if c.Status != CampaignStatusDraft {
		return shared.NewDomainError("NOT_DRAFT", "Campaign has already been dispatched")
	}
	return nil
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

func validateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return shared.NewDomainError("INVALID_MESSAGE", "Message cannot be empty")
	}
	if len(message) > maxMessageLength {
		return shared.NewDomainError("INVALID_MESSAGE", "Message is too long")
	}
	return nil
}
