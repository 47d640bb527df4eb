/**
 * @description
 * Client for the external insurance provider's policy renewal API. One call
 * renews one policy; a non-success HTTP or application response is an error
 * for that policy only. The provider may return a new expiry date; when it is
 * absent or unparseable the caller leaves the local policy end date alone.
 */
package renewalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/protonmedicare/enrollment-service/internal/domain"
)

// Client is a client for the provider renewal API.
type Client struct {
	BaseURL    string
	APIToken   string
	HTTPClient *http.Client
}

// NewClient creates a new renewal API client.
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		APIToken: apiToken,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type renewalRequest struct {
	PolicyID    string `json:"policy_id"`
	PaymentPlan int    `json:"payment_plan"`
}

type renewalResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		NewExpiryDate string `json:"new_expiry_date"`
	} `json:"data"`
}

// RenewPolicy asks the provider to extend coverage for the given policy over
// the enrollment's payment plan (months). The raw response body is preserved
// for the audit sink.
func (c *Client) RenewPolicy(ctx context.Context, providerPolicyID string, paymentPlanMonths int) (*domain.ProviderRenewal, error) {
	body, err := json.Marshal(renewalRequest{
		PolicyID:    providerPolicyID,
		PaymentPlan: paymentPlanMonths,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal renewal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/policies/renew", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create renewal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute renewal request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read renewal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("renewal api returned status %d", resp.StatusCode)
	}

	var parsed renewalResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode renewal response: %w", err)
	}
	if !parsed.Status {
		return nil, fmt.Errorf("renewal api reported failure: %s", parsed.Message)
	}

	return &domain.ProviderRenewal{
		NewExpiryDate: parseExpiryDate(parsed.Data.NewExpiryDate),
		RawResponse:   bodyBytes,
	}, nil
}

// parseExpiryDate accepts the provider's ISO date, with or without a time
// component. A missing or malformed value yields nil so the caller neither
// truncates coverage nor fabricates a date.
func parseExpiryDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}
