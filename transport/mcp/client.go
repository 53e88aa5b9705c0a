package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// Tool inputs
type sessionInput struct {
	SessionID string `json:"session_id"`
}

type createSessionInput struct {
	ConfigID string `json:"config_id"`
	PlayerID string `json:"player_id"`
}

type flipInput struct {
	SessionID string `json:"session_id"`
	CardID    *int   `json:"card_id"`
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Memory Match",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every pair of matching cards in as few moves as possible.

AVAILABLE TOOLS:
- create_session: Start a new game session (optional theme and player)
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Show the board
- flip_card: Turn a card face up
- restart_game: Shuffle and start a new round
- best_score: Fewest moves recorded for the session's player and theme
- list_configs: List available themes
- game_instructions: Get the full rules

Two mismatched cards stay face up for one second before turning back.
Flips made during that second are ignored.`),
	)

	c.registerTools()
}

func sessionTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID"),
		),
	)
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session and deal the first round"),
		mcp.WithString("config_id",
			mcp.Description("Theme to play (see list_configs). Defaults to cosmic"),
		),
		mcp.WithString("player_id",
			mcp.Description("Player name; best scores are kept per player and theme"),
		),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(sessionTool("get_session", "Get details of a specific session"), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(sessionTool("game_state", "Show the board: face-down cards as ??, face-up cards with their symbol"), c.handleGameState)

	c.mcpServer.AddTool(mcp.NewTool("flip_card",
		mcp.WithDescription("Turn a card face up. The second card of a pair completes a move"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID"),
		),
		mcp.WithNumber("card_id",
			mcp.Required(),
			mcp.Description("Card position on the board, starting at 0"),
			mcp.Min(0),
		),
	), c.handleFlip)

	c.mcpServer.AddTool(sessionTool("restart_game", "Shuffle a new deck and start over"), c.handleRestart)

	c.mcpServer.AddTool(sessionTool("best_score", "Get the fewest moves recorded for this session's player and theme"), c.handleBestScore)

	// Configuration
	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available card themes"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get comprehensive game instructions and rules"),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func bindSession(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	var input sessionInput
	if err := request.BindArguments(&input); err != nil {
		return "", mcp.NewToolResultErrorFromErr("invalid arguments", err)
	}
	if input.SessionID == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return input.SessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input createSessionInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	body := map[string]string{}
	if input.ConfigID != "" {
		body["config_id"] = input.ConfigID
	}
	if input.PlayerID != "" {
		body["player_id"] = input.PlayerID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPlayer: %s\nTheme: %s\n\n%s",
		session.ID, session.PlayerID, session.ConfigName, formatGameState(&session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", response.Count))
	for _, s := range response.Sessions {
		result.WriteString(fmt.Sprintf("- %s (Player: %s, Theme: %s, Pairs: %d/%d, Moves: %d, Created: %s)\n",
			s.ID, s.PlayerID, s.ConfigName, s.GameState.MatchedPairs, s.GameState.TotalPairs,
			s.GameState.Moves, s.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := bindSession(request)
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := bindSession(request)
	if errResult != nil {
		return errResult, nil
	}

	var view engine.GameView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&view)), nil
}

func (c *Client) handleFlip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input flipInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if input.SessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	if input.CardID == nil {
		return mcp.NewToolResultError("card_id is required"), nil
	}

	body := map[string]int{"card_id": *input.CardID}

	var result service.FlipResponse
	if err := c.apiCall(ctx, "POST", sessionPath(input.SessionID, "/flip"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFlipResponse(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := bindSession(request)
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string           `json:"message"`
		State   *engine.GameView `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleBestScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := bindSession(request)
	if errResult != nil {
		return errResult, nil
	}

	var info service.BestScoreInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/best-score"), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if info.BestScore == nil {
		return mcp.NewToolResultText(fmt.Sprintf("No best score yet for %s on %s", info.PlayerID, info.ConfigName)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Best score for %s on %s: %d moves",
		info.PlayerID, info.ConfigName, *info.BestScore)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Themes:\n\n")
	for _, config := range configs {
		result.WriteString(fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Pairs: %d  %s\n\n",
			config.Name, config.ConfigID, config.Description, config.Pairs, strings.Join(config.Symbols, " ")))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🃏 Memory Match - Complete Instructions

GAME OBJECTIVE:
Every symbol appears on exactly two cards. Turn all pairs face up using as
few moves as possible.

GAME MECHANICS:
• Flip: Turn one face-down card face up (flip_card with its card_id)
• Move: Every second card you flip completes one move
• Match: Two equal symbols stay face up for the rest of the round
• Mismatch: Two different symbols turn back face down after one second
• Timer: Starts with the round and shows MM:SS; it stops when you win
• Victory: The round ends when every pair is matched

IGNORED FLIPS:
• A card that is already face up or matched
• Any card while a mismatched pair is still turning back
• Any card after the round is over
Ignored flips do not count as moves.

BEST SCORE:
The fewest moves for your player on each theme is remembered. A round only
replaces it when it uses strictly fewer moves.

STRATEGY TIPS:
• Remember every symbol you have seen and where it was
• When the first card of a move shows a symbol you saw before, flip its twin
• Otherwise flip a card you have never seen, never a known mismatch
• A perfect memory needs at most about 1.5 moves per pair on average

BOARD NOTATION (game_state):
• ?? - face down
• 🪐 - face up, waiting for its partner
• [🪐] - matched`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	best := "none yet"
	if session.Stats.BestScore != nil {
		best = fmt.Sprintf("%d moves", *session.Stats.BestScore)
	}
	return fmt.Sprintf("Session: %s\nPlayer: %s\nTheme: %s\nCreated: %s\nBest score: %s\n\n%s",
		session.ID, session.PlayerID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"), best,
		formatGameState(&session.GameState))
}

// boardColumns picks a near-square layout for n cards
func boardColumns(n int) int {
	if n <= 0 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

func formatGameState(view *engine.GameView) string {
	if view == nil {
		return "No game state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Moves: %d | Time: %s | Pairs: %d/%d\n\n",
		view.Moves, view.Elapsed, view.MatchedPairs, view.TotalPairs))

	columns := boardColumns(len(view.Cards))
	for i, card := range view.Cards {
		var cell string
		switch card.State {
		case engine.Matched:
			cell = "[" + card.Symbol + "]"
		case engine.Flipped:
			cell = " " + card.Symbol + " "
		default:
			cell = " ?? "
		}
		result.WriteString(fmt.Sprintf("%2d:%s ", card.ID, cell))
		if (i+1)%columns == 0 {
			result.WriteString("\n")
		}
	}
	if len(view.Cards)%columns != 0 {
		result.WriteString("\n")
	}

	if view.Pending {
		result.WriteString("\n⏳ Mismatch turning back, flips are ignored for a moment")
	}
	if view.Victory {
		result.WriteString("\n🎉 VICTORY!")
	}

	if view.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", view.Message))
	}

	return result.String()
}

func formatFlipResponse(resp *service.FlipResponse) string {
	var result strings.Builder
	r := resp.Result

	switch r.Outcome {
	case engine.OutcomeRejected:
		result.WriteString(fmt.Sprintf("✗ Flip of card %d ignored (%s)\n", r.CardID, r.Reason))
	case engine.OutcomeFlipped:
		result.WriteString(fmt.Sprintf("✓ Card %d is face up, pick its partner\n", r.CardID))
	case engine.OutcomeMatch:
		result.WriteString(fmt.Sprintf("✓ Match! Cards %v stay face up\n", r.Pair))
	case engine.OutcomeMismatch:
		result.WriteString(fmt.Sprintf("✗ No match: cards %v turn back in 1s\n", r.Pair))
	case engine.OutcomeVictory:
		result.WriteString(fmt.Sprintf("🎉 Final pair %v matched!\n", r.Pair))
	}

	if resp.Message != "" {
		result.WriteString(resp.Message + "\n")
	}
	if resp.Summary != nil {
		result.WriteString(fmt.Sprintf("Finished in %d moves, %s\n", resp.Summary.Moves, resp.Summary.Elapsed))
	}
	if resp.Stats.BestScore != nil {
		result.WriteString(fmt.Sprintf("Best score: %d moves\n", *resp.Stats.BestScore))
	}

	result.WriteString("\n")
	result.WriteString(formatGameState(&resp.GameState))
	return result.String()
}
