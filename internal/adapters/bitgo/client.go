package bitgo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paydail/paydail-service/pkg/logger"
)

// Config represents BitGo API configuration
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// Client represents a BitGo API client
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new BitGo API client
func NewClient(config Config, logger *logger.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://app.bitgo-test.com"
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// GetTransfer fetches the full transfer record for a wallet. The raw JSON is
// returned untouched so the caller can normalize it the same way it
// normalizes webhook payloads.
func (c *Client) GetTransfer(ctx context.Context, coin, walletID, transferID string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("/api/v2/%s/wallet/%s/transfer/%s", coin, walletID, transferID)

	raw, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("get transfer failed: %w", err)
	}
	return raw, nil
}

// CreateAddress generates a new receive address on a wallet
func (c *Client) CreateAddress(ctx context.Context, coin, walletID, label string) (*Address, error) {
	endpoint := fmt.Sprintf("/api/v2/%s/wallet/%s/address", coin, walletID)

	var body interface{}
	if label != "" {
		body = map[string]string{"label": label}
	}

	raw, err := c.doRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create address failed: %w", err)
	}

	var address Address
	if err := json.Unmarshal(raw, &address); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address response: %w", err)
	}
	if address.Address == "" {
		return nil, fmt.Errorf("address response missing address field")
	}

	return &address, nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) (json.RawMessage, error) {
	fullURL := c.config.BaseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)

	c.logger.Debug("Sending BitGo API request", "method", method, "url", fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Received BitGo API response", "status_code", resp.StatusCode, "body_size", len(respBody))

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			errResp.StatusCode = resp.StatusCode
			return nil, &errResp
		}
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}
