// Package telegram provides a minimal Telegram Bot API client used to relay
// new contact messages. Uses raw HTTP calls (no SDK).
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Telegram Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// ErrNotConfigured is returned when the bot token or chat ID is missing.
var ErrNotConfigured = errors.New("telegram: not configured")

// Client sends plain-text messages to one chat.
type Client struct {
	Token   string
	ChatID  string
	BaseURL string // overridable for tests

	httpClient *http.Client
}

// NewClient creates a Client for the given bot token and chat.
func NewClient(token, chatID string) *Client {
	return &Client{
		Token:      token,
		ChatID:     chatID,
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether both token and chat ID are set.
func (c *Client) Configured() bool {
	return c.Token != "" && c.ChatID != ""
}

// Send posts text to the configured chat via sendMessage.
func (c *Client) Send(ctx context.Context, text string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	jsonBody, err := json.Marshal(map[string]any{
		"chat_id":                  c.ChatID,
		"text":                     text,
		"disable_web_page_preview": true,
	})
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/bot" + c.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("telegram send: %w", urlErr.Err)
		}
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("telegram send: status %d: decode response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !result.OK {
		return fmt.Errorf("telegram send: status %d: %s", resp.StatusCode, result.Description)
	}
	return nil
}
