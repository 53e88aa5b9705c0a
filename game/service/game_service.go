package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/controller"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName, playerID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Flip(ctx context.Context, sessionID string, cardID int) (*FlipResponse, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameView, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameView, error)
	GetBestScore(ctx context.Context, sessionID string) (*BestScoreInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// NewSession describes a session to create. An empty ID is generated and
// an empty PlayerID defaults to the session ID.
type NewSession struct {
	ID       string
	PlayerID string
	ConfigID string
	Config   *engine.GameConfig
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(req NewSession) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(req NewSession) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles theme loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	DefaultID() string
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session. Values handed out by a
// SessionManager are snapshots; the Controller is shared.
type Session struct {
	ID             string
	PlayerID       string
	ConfigID       string
	Config         *engine.GameConfig
	Controller     *controller.Controller
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
