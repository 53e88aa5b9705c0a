package service

import (
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/controller"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	PlayerID       string             `json:"player_id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      engine.GameView    `json:"game_state"`
	Stats          controller.Stats   `json:"stats"`
	GameConfig     *engine.GameConfig `json:"game_config"`
	Victory        *engine.Summary    `json:"victory,omitempty"` // set while the summary is on display
}

// FlipResponse contains the result of a card flip
type FlipResponse struct {
	Result    engine.FlipResult `json:"result"`
	GameState engine.GameView   `json:"game_state"`
	Stats     controller.Stats  `json:"stats"`
	Summary   *engine.Summary   `json:"summary,omitempty"`
	Message   string            `json:"message"`
}

// BestScoreInfo reports the best score recorded for a session's player and theme
type BestScoreInfo struct {
	SessionID  string `json:"session_id"`
	PlayerID   string `json:"player_id"`
	ConfigName string `json:"config_name"`
	BestScore  *int   `json:"best_score"` // nil when no round has been finished
}

// ConfigInfo provides information about a theme
type ConfigInfo struct {
	Filename    string   `json:"filename"`
	ConfigID    string   `json:"config_id"` // The identifier to use for session creation
	Name        string   `json:"name"`      // Display name
	Description string   `json:"description"`
	Pairs       int      `json:"pairs"`
	Symbols     []string `json:"symbols"`
}
