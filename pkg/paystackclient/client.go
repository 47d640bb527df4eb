/**
 * @description
 * Client for the Paystack payment gateway. It covers the two operations the
 * enrollment flow needs: initializing a transaction to obtain an
 * authorization URL, and verifying a transaction reference after the member
 * completes checkout. The client performs no persistence; callers apply the
 * returned data transactionally.
 */
package paystackclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrGatewayUnavailable wraps transport-level failures reaching the gateway.
// Callers must not mark an enrollment paid when they see it.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Client is a client for the Paystack API.
type Client struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

// NewClient creates a new Paystack client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		SecretKey: secretKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	CallbackURL string `json:"callback_url,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Customer struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// InitializeTransaction starts a checkout for the given email and amount
// (minor units) and returns the authorization URL the member is redirected to.
func (c *Client) InitializeTransaction(ctx context.Context, email string, amountMinor int64, callbackURL, reference string) (string, error) {
	body, err := json.Marshal(initializeRequest{
		Email:       email,
		Amount:      amountMinor,
		CallbackURL: callbackURL,
		Reference:   reference,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create initialize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read initialize response: %w", err)
	}

	var parsed initializeResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode initialize response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.Status {
		return "", fmt.Errorf("gateway rejected initialize (status %d): %s", resp.StatusCode, parsed.Message)
	}

	return parsed.Data.AuthorizationURL, nil
}

// VerifyTransaction checks the state of a transaction reference with the
// gateway. It is read-only and safe to call repeatedly for the same
// reference; the consuming code guards against double-applying state.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (status string, customerEmail string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read verify response: %w", err)
	}

	var parsed verifyResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", "", fmt.Errorf("failed to decode verify response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.Status {
		return "", "", fmt.Errorf("gateway rejected verify (status %d): %s", resp.StatusCode, parsed.Message)
	}

	return parsed.Data.Status, parsed.Data.Customer.Email, nil
}
