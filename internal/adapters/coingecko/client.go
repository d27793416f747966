package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paydail/paydail-service/pkg/logger"
)

// Config represents CoinGecko API configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client represents a CoinGecko API client
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger
}

// MarketCoin is one row of the coins/markets endpoint
type MarketCoin struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	PriceChange24h           float64 `json:"price_change_24h"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	TotalVolume              float64 `json:"total_volume"`
	LastUpdated              string  `json:"last_updated"`
}

// NewClient creates a new CoinGecko API client
func NewClient(config Config, logger *logger.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.coingecko.com"
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// SimplePrice returns the USD spot price for each of the given coin IDs.
// Coins missing from the response are absent from the map.
func (c *Client) SimplePrice(ctx context.Context, coinIDs []string) (map[string]float64, error) {
	endpoint := fmt.Sprintf("/api/v3/simple/price?ids=%s&vs_currencies=usd",
		url.QueryEscape(strings.Join(coinIDs, ",")))

	raw, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("simple price failed: %w", err)
	}

	var parsed map[string]map[string]float64
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price response: %w", err)
	}

	prices := make(map[string]float64, len(parsed))
	for id, quote := range parsed {
		if usd, ok := quote["usd"]; ok {
			prices[id] = usd
		}
	}

	return prices, nil
}

// Markets returns market data for the given coin IDs
func (c *Client) Markets(ctx context.Context, coinIDs []string) ([]MarketCoin, error) {
	endpoint := fmt.Sprintf("/api/v3/coins/markets?vs_currency=usd&ids=%s",
		url.QueryEscape(strings.Join(coinIDs, ",")))

	raw, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("markets failed: %w", err)
	}

	var coins []MarketCoin
	if err := json.Unmarshal(raw, &coins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal markets response: %w", err)
	}

	return coins, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string) (json.RawMessage, error) {
	fullURL := c.config.BaseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.config.APIKey)
	}

	c.logger.Debug("Sending CoinGecko API request", "url", fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}
