package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Client talks to a running game server over its REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client plays
func (c *Client) SessionID() string {
	return c.sessionID
}

// UseSession resumes an existing session
func (c *Client) UseSession(id string) {
	c.sessionID = id
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

// CreateSession starts a session on theme configID for playerID
func (c *Client) CreateSession(ctx context.Context, configID, playerID string) (*service.SessionInfo, error) {
	req := map[string]string{}
	if configID != "" {
		req["config_id"] = configID
	}
	if playerID != "" {
		req["player_id"] = playerID
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return &info, nil
}

func (c *Client) State(ctx context.Context) (*engine.GameView, error) {
	var view engine.GameView
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) Flip(ctx context.Context, cardID int) (*service.FlipResponse, error) {
	var resp service.FlipResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/flip"), map[string]int{"card_id": cardID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Restart(ctx context.Context) (*engine.GameView, error) {
	var resp struct {
		Message string          `json:"message"`
		State   engine.GameView `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/restart"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.State, nil
}

func (c *Client) BestScore(ctx context.Context) (*service.BestScoreInfo, error) {
	var info service.BestScoreInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/best-score"), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
