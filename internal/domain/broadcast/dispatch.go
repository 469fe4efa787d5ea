package broadcast

import "context"

// Recipient is one broadcast target resolved from the customer sheet
type Recipient struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// DispatchRequest is the payload posted to a business's workflow engine. The
// engine owns delivery; we hand it the sender identity, the message and the
// resolved audience in one shot.
type DispatchRequest struct {
	CampaignID string      `json:"campaignId"`
	Sender     string      `json:"sender"`
	Message    string      `json:"message"`
	Recipients []Recipient `json:"recipients"`
}

// Dispatcher posts broadcast payloads to per-business webhook URLs
type Dispatcher interface {
	Dispatch(ctx context.Context, webhookURL string, req DispatchRequest) error
}
