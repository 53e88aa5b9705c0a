package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/wricardo/mcp-training/memorygame/game/controller"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session and starts its first round
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName, playerID string) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	configID := configName

	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				return nil, s.configNotFound(configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configs.DefaultID()
	}

	session, err := s.sessions.Create(NewSession{
		PlayerID: playerID,
		ConfigID: configID,
		Config:   config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(session), nil
}

// configNotFound lists the available theme IDs in the error
func (s *gameServiceImpl) configNotFound(configName string) error {
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		var configIDs []string
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
	}
	return fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session and stops its timers
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// Flip clicks a card in the session's current round
func (s *gameServiceImpl) Flip(ctx context.Context, sessionID string, cardID int) (*FlipResponse, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	ctrl := session.Controller
	result, err := ctrl.Click(cardID)
	if err != nil {
		if errors.Is(err, controller.ErrClosed) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to flip card: %w", err)
	}

	view := ctrl.View()
	response := &FlipResponse{
		Result:    result,
		GameState: view,
		Stats:     ctrl.Stats(),
		Message:   flipMessage(result, view),
	}
	if summary, ok := ctrl.Summary(); ok {
		response.Summary = summary
	}
	return response, nil
}

// Restart deals a new round for the session
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameView, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	view, err := session.Controller.Restart()
	if err != nil {
		if errors.Is(err, controller.ErrClosed) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to restart: %w", err)
	}
	return &view, nil
}

// GetGameState retrieves the current round as the player sees it
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameView, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	view := session.Controller.View()
	return &view, nil
}

// GetBestScore returns the best score for the session's player and theme
func (s *gameServiceImpl) GetBestScore(ctx context.Context, sessionID string) (*BestScoreInfo, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	info := &BestScoreInfo{
		SessionID:  session.ID,
		PlayerID:   session.PlayerID,
		ConfigName: session.ConfigID,
	}
	if best, ok := session.Controller.BestScore(); ok {
		info.BestScore = &best
	}
	return info, nil
}

// ListConfigs returns available themes
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific theme
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a theme to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// touch looks a session up and marks it as used
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.Printf("Warning: failed to update last access for session %s: %v", sessionID, err)
	}
	return session, nil
}

func sessionInfo(session *Session) *SessionInfo {
	info := &SessionInfo{
		ID:             session.ID,
		PlayerID:       session.PlayerID,
		ConfigName:     session.ConfigID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Controller.View(),
		Stats:          session.Controller.Stats(),
		GameConfig:     session.Config,
	}
	if summary, ok := session.Controller.ShownSummary(); ok {
		info.Victory = summary
	}
	return info
}

// flipMessage explains the outcome to the player
func flipMessage(result engine.FlipResult, view engine.GameView) string {
	switch result.Outcome {
	case engine.OutcomeRejected:
		return rejectMessages[result.Reason]
	case engine.OutcomeFlipped:
		return "Pick a second card."
	}
	return view.Message
}

var rejectMessages = map[string]string{
	engine.RejectInactive:          "The round is over. Restart to play again.",
	engine.RejectUnknownCard:       "There is no card with that id.",
	engine.RejectAlreadyFlipped:    "That card is already face up.",
	engine.RejectAlreadyMatched:    "That card is already matched.",
	engine.RejectResolutionPending: "Wait for the cards to turn back.",
}
