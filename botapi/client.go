// Package botapi is a read-only client for the trading framework's
// REST API, used by the dry-run checker and the daily report. The
// framework owns trading; this client only observes it.
package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultBaseURL is the framework API server on its stock local port.
const DefaultBaseURL = "http://127.0.0.1:8081"

const maxRetries = 3

// Config holds the client connection settings.
type Config struct {
	BaseURL  string
	Username string
	// Password empty means no auth (works on localhost).
	Password string
	Timeout  time.Duration
}

// ConfigFromEnv reads FT_API_URL, FT_API_USERNAME and FT_API_PASSWORD,
// falling back to localhost defaults for any missing variable.
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL:  DefaultBaseURL,
		Username: "freqtrader",
		Timeout:  10 * time.Second,
	}
	if v := os.Getenv("FT_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("FT_API_USERNAME"); v != "" {
		cfg.Username = v
	}
	cfg.Password = os.Getenv("FT_API_PASSWORD")
	return cfg
}

// Client talks to the framework API server.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// NewClient creates a new API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Ping checks API health.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	return c.get(ctx, "/api/v1/ping", nil, &resp)
}

// Trades fetches the trade history.
func (c *Client) Trades(ctx context.Context) ([]Trade, error) {
	var resp struct {
		Trades []Trade `json:"trades"`
	}
	if err := c.get(ctx, "/api/v1/trades", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trades, nil
}

// Status fetches the currently open trades.
func (c *Client) Status(ctx context.Context) ([]Trade, error) {
	var open []Trade
	if err := c.get(ctx, "/api/v1/status", nil, &open); err != nil {
		return nil, err
	}
	return open, nil
}

// Profit fetches the profit summary.
func (c *Client) Profit(ctx context.Context) (ProfitSummary, error) {
	var p ProfitSummary
	err := c.get(ctx, "/api/v1/profit", nil, &p)
	return p, err
}

// Balance fetches the wallet balance summary.
func (c *Client) Balance(ctx context.Context) (BalanceSummary, error) {
	var b BalanceSummary
	err := c.get(ctx, "/api/v1/balance", nil, &b)
	return b, err
}

// Logs fetches up to limit recent log entries.
func (c *Client) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	var resp struct {
		Logs []LogEntry `json:"logs"`
	}
	if err := c.get(ctx, "/api/v1/logs", params, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

// login obtains a JWT via basic auth and caches it. Skipped entirely
// when no password is configured.
func (c *Client) login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/v1/token/login", nil)
	if err != nil {
		return "", fmt.Errorf("botapi: create login request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("botapi: login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("botapi: login failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("botapi: decode login response: %w", err)
	}
	c.token = tok.AccessToken
	return c.token, nil
}

// get performs an authenticated GET with retry on transient failures.
// Server errors (5xx) and network errors are retried with exponential
// backoff; client errors are permanent.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v interface{}) error {
	apiURL := c.cfg.BaseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("botapi: create request: %w", err))
		}

		if c.cfg.Password != "" {
			token, err := c.login(ctx)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("botapi: execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("botapi: server error (status %d)", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("botapi: API error (status %d): %s", resp.StatusCode, string(body)))
		}

		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return backoff.Permanent(fmt.Errorf("botapi: decode response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(operation, policy)
}
