/**
 * @description
 * Client for the external audit sink. Renewal outcomes are pushed
 * fire-and-forget; a short timeout bounds the call and errors are reported to
 * the caller only so they can be logged, never acted on.
 */
package auditclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/protonmedicare/enrollment-service/internal/domain"
)

// Record is the payload sent for each renewal outcome.
type Record struct {
	WorkItemID       string          `json:"work_item_id"`
	UserID           string          `json:"user_id"`
	PolicyID         string          `json:"policy_id"`
	PaymentReference string          `json:"payment_reference"`
	Outcome          string          `json:"outcome"`
	ProviderResponse json.RawMessage `json:"provider_response,omitempty"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

// Client is a client for the audit sink.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new audit sink client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// PushRenewalOutcome maps a renewal outcome to the sink's wire format and
// sends it.
func (c *Client) PushRenewalOutcome(ctx context.Context, rec domain.RenewalAuditRecord) error {
	return c.Push(ctx, Record{
		WorkItemID:       rec.WorkItemID.String(),
		UserID:           rec.UserID.String(),
		PolicyID:         rec.PolicyID.String(),
		PaymentReference: rec.PaymentReference,
		Outcome:          string(rec.Outcome),
		ProviderResponse: rec.ProviderResponse,
		RecordedAt:       rec.RecordedAt,
	})
}

// Push sends one audit record. No response body is awaited beyond the status.
func (c *Client) Push(ctx context.Context, rec Record) error {
	if c.BaseURL == "" {
		return fmt.Errorf("audit sink base URL is not configured")
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/renewals", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create audit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach audit sink: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("audit sink returned status %d", resp.StatusCode)
	}
	return nil
}
