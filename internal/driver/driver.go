// Package driver is a minimal WebDriver client for the Android UI
// automation server the scraper drives. It covers only the commands the
// crawl needs: session lifecycle, page source capture, element lookup,
// taps, swipes and the hardware back key.
package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

// Element lookup strategies understood by the automation server.
const (
	ByAccessibilityID = "accessibility id"
	ByUIAutomator     = "-android uiautomator"
	ByXPath           = "xpath"
)

// Config holds the connection settings for the automation server.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	RetryAttempts  uint
	RetryDelay     time.Duration
}

// Client talks to one automation server session. It is not safe for
// concurrent use; the crawl is strictly sequential by design.
type Client struct {
	cfg       Config
	http      *http.Client
	sessionID string
	log       zerolog.Logger
}

// New creates a client. No connection is made until StartSession.
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 1 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
		log:  log.With().Str("component", "driver").Logger(),
	}
}

// SessionID returns the active session identifier, empty before StartSession.
func (c *Client) SessionID() string {
	return c.sessionID
}

// StartSession opens an automation session with the given capabilities.
// Session creation is retried: the server is typically still warming up
// when the crawl starts.
func (c *Client) StartSession(ctx context.Context, capabilities map[string]any) error {
	body := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": capabilities,
		},
	}

	var resp struct {
		Value struct {
			SessionID string `json:"sessionId"`
		} `json:"value"`
	}

	err := retry.Do(
		func() error {
			return c.do(ctx, http.MethodPost, "/session", body, &resp)
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.RetryAttempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to start automation session: %w", err)
	}
	if resp.Value.SessionID == "" {
		return fmt.Errorf("automation server returned an empty session id")
	}

	c.sessionID = resp.Value.SessionID
	c.log.Info().Str("session_id", c.sessionID).Msg("Automation session started")
	return nil
}

// EndSession closes the session. Safe to call when none is open.
func (c *Client) EndSession(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	err := c.do(ctx, http.MethodDelete, "/session/"+c.sessionID, nil, nil)
	c.sessionID = ""
	if err != nil {
		return fmt.Errorf("failed to end automation session: %w", err)
	}
	return nil
}

// Source captures the current UI hierarchy XML. Retried: source dumps fail
// transiently while the app is mid-transition.
func (c *Client) Source(ctx context.Context) (string, error) {
	var resp struct {
		Value string `json:"value"`
	}

	err := retry.Do(
		func() error {
			return c.do(ctx, http.MethodGet, c.sessionPath("/source"), nil, &resp)
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.RetryAttempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("failed to get page source: %w", err)
	}
	return resp.Value, nil
}

// FindElement resolves a locator to an element id.
func (c *Client) FindElement(ctx context.Context, using, value string) (string, error) {
	body := map[string]string{"using": using, "value": value}

	var resp struct {
		Value map[string]string `json:"value"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/element"), body, &resp); err != nil {
		return "", fmt.Errorf("failed to find element (%s %q): %w", using, value, err)
	}
	for _, id := range resp.Value {
		if id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("element lookup (%s %q) returned no id", using, value)
}

// Click taps an element. Never retried: a tap that landed but timed out on
// the response would otherwise fire twice.
func (c *Client) Click(ctx context.Context, elementID string) error {
	path := c.sessionPath("/element/" + elementID + "/click")
	if err := c.do(ctx, http.MethodPost, path, map[string]any{}, nil); err != nil {
		return fmt.Errorf("failed to click element %s: %w", elementID, err)
	}
	return nil
}

// ElementText reads an element's visible text.
func (c *Client) ElementText(ctx context.Context, elementID string) (string, error) {
	var resp struct {
		Value string `json:"value"`
	}
	path := c.sessionPath("/element/" + elementID + "/text")
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to read element text: %w", err)
	}
	return strings.TrimSpace(resp.Value), nil
}

// Swipe performs a single-finger swipe between two points.
func (c *Client) Swipe(ctx context.Context, fromX, fromY, toX, toY int, duration time.Duration) error {
	body := map[string]any{
		"actions": []map[string]any{
			{
				"type": "pointer",
				"id":   "finger1",
				"parameters": map[string]string{
					"pointerType": "touch",
				},
				"actions": []map[string]any{
					{"type": "pointerMove", "duration": 0, "x": fromX, "y": fromY},
					{"type": "pointerDown", "button": 0},
					{"type": "pointerMove", "duration": duration.Milliseconds(), "x": toX, "y": toY},
					{"type": "pointerUp", "button": 0},
				},
			},
		},
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/actions"), body, nil); err != nil {
		return fmt.Errorf("failed to swipe: %w", err)
	}
	return nil
}

// Back presses the Android back key.
func (c *Client) Back(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/back"), map[string]any{}, nil); err != nil {
		return fmt.Errorf("failed to press back: %w", err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/session/" + c.sessionID + suffix
}

// do executes one WebDriver request and decodes the response envelope into
// out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("automation server request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("automation server returned %d: %s", resp.StatusCode, driverError(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// driverError pulls the error/message pair out of a WebDriver error
// envelope, falling back to the raw body.
func driverError(data []byte) string {
	var envelope struct {
		Value struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Value.Error != "" {
		return envelope.Value.Error + ": " + envelope.Value.Message
	}
	return string(data)
}
