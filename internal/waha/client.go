package waha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a WAHA (WhatsApp HTTP API) gateway. There is no Go
// SDK for WAHA, so this wraps the two endpoints the tracker needs.
type Client struct {
	baseURL string
	apiKey  string
	session string
	http    *http.Client
}

// NewClient creates a gateway client. session names the WAHA session
// messages are sent through, usually "default".
func NewClient(baseURL, apiKey, session string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		session: session,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SendText sends a plain text message to chatID.
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(map[string]string{
		"session": c.session,
		"chatId":  chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("waha: marshal sendText body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sendText", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("waha: build sendText request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("waha: sendText: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("waha: sendText returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// Ping checks that the gateway answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return fmt.Errorf("waha: build ping request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("waha: ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("waha: ping returned %d", resp.StatusCode)
	}
	return nil
}
