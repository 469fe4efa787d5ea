package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dasbor/backend/internal/domain/broadcast"
)

// HTTPDispatcher delivers payloads with a plain POST. No retries and no
// queueing: a failed dispatch marks the campaign failed and the operator
// decides whether to send a new one.
type HTTPDispatcher struct {
	httpClient *http.Client
}

// NewHTTPDispatcher creates a dispatcher with the given per-dispatch timeout
func NewHTTPDispatcher(timeout time.Duration) *HTTPDispatcher {
	return &HTTPDispatcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Dispatch posts the payload and treats any non-2xx response as failure
func (d *HTTPDispatcher) Dispatch(ctx context.Context, webhookURL string, req broadcast.DispatchRequest) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode dispatch payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build dispatch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post to workflow webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("workflow webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

var _ broadcast.Dispatcher = (*HTTPDispatcher)(nil)
