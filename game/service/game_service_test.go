package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/clock"
	"github.com/wricardo/mcp-training/memorygame/game/controller"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/score"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	sched    *clock.Manual
	store    score.Store
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
		sched:    clock.NewManual(),
		store:    score.NewMemoryStore(),
	}
}

func (m *MockSessionManager) Create(req service.NewSession) (*service.Session, error) {
	id := req.ID
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	// Pairs sit next to each other: (0,1), (2,3), ...
	var deck engine.FixedDeck
	for _, symbol := range req.Config.Symbols {
		deck = append(deck, symbol, symbol)
	}
	eng, err := engine.NewEngine(req.Config, deck)
	if err != nil {
		return nil, err
	}

	player := req.PlayerID
	if player == "" {
		player = id
	}
	ctrl := controller.New(score.Key(player, req.ConfigID), eng,
		controller.WithScheduler(m.sched),
		controller.WithStore(m.store),
	)
	ctrl.Start()

	session := &service.Session{
		ID:             id,
		PlayerID:       player,
		ConfigID:       req.ConfigID,
		Config:         req.Config,
		Controller:     ctrl,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(req service.NewSession) (*service.Session, error) {
	if session, exists := m.sessions[req.ID]; exists {
		return session, nil
	}
	return m.Create(req)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	session, exists := m.sessions[id]
	if !exists {
		return service.ErrSessionNotFound
	}
	session.Controller.Close()
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

func testTheme(name string, symbols ...string) *engine.GameConfig {
	return &engine.GameConfig{
		Name:        name,
		Description: "Test theme " + name,
		Symbols:     symbols,
		Messages: engine.GameMessages{
			Welcome:  "Welcome to " + name + "!",
			Match:    "Match!",
			Mismatch: "Miss!",
			Victory:  "Won in %d moves (%s)",
		},
	}
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"cosmic": testTheme("Cosmic", "🪐", "🛸", "👽"),
			"fruit":  testTheme("Fruit", "🍎", "🍌"),
		},
		saved: make(map[string]*engine.GameConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", service.ErrConfigNotFound, name)
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for id, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    id + ".json",
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Pairs:       len(config.Symbols),
			Symbols:     config.Symbols,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ConfigID < result[j].ConfigID })
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["cosmic"]
}

func (m *MockConfigManager) DefaultID() string {
	return "cosmic"
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.saved[name] = config
	m.configs[name] = config
	return nil
}

func newTestService() (service.GameService, *MockSessionManager) {
	sessions := NewMockSessionManager()
	return service.NewGameService(sessions, NewMockConfigManager()), sessions
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	tests := []struct {
		name       string
		configName string
		playerID   string
		wantConfig string
		wantPlayer string
		wantPairs  int
		wantErr    bool
	}{
		{
			name:       "create with default config",
			wantConfig: "cosmic",
			wantPairs:  3,
		},
		{
			name:       "create with specific config",
			configName: "fruit",
			playerID:   "alice",
			wantConfig: "fruit",
			wantPlayer: "alice",
			wantPairs:  2,
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.configName, tt.playerID)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if info.ConfigName != tt.wantConfig {
				t.Errorf("Expected config %s, got %s", tt.wantConfig, info.ConfigName)
			}
			if tt.wantPlayer != "" && info.PlayerID != tt.wantPlayer {
				t.Errorf("Expected player %s, got %s", tt.wantPlayer, info.PlayerID)
			}
			if tt.wantPlayer == "" && info.PlayerID != info.ID {
				t.Errorf("Expected player to default to session ID, got %s", info.PlayerID)
			}
			if info.GameState.TotalPairs != tt.wantPairs {
				t.Errorf("Expected %d pairs, got %d", tt.wantPairs, info.GameState.TotalPairs)
			}
			if !info.GameState.Active {
				t.Error("Expected new round to be active")
			}
			if info.Stats.BestScore != nil {
				t.Error("Expected no best score yet")
			}
		})
	}
}

func TestGameService_CreateSession_ListsAvailableConfigs(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateSession(context.Background(), "nonexistent", "")
	if !errors.Is(err, service.ErrConfigNotFound) {
		t.Fatalf("Expected ErrConfigNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "cosmic") || !strings.Contains(err.Error(), "fruit") {
		t.Errorf("Expected available configs in error, got %q", err.Error())
	}
}

func TestGameService_GetSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	created, _ := svc.CreateSession(ctx, "fruit", "")

	info, err := svc.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if info.ID != created.ID {
		t.Errorf("Expected session %s, got %s", created.ID, info.ID)
	}
	if info.GameConfig == nil || info.GameConfig.Name != "Fruit" {
		t.Errorf("Expected Fruit theme, got %+v", info.GameConfig)
	}

	_, err = svc.GetSession(ctx, "missing")
	if !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	for i := 0; i < 3; i++ {
		svc.CreateSession(ctx, "", "")
	}

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(sessions))
	}
}

func TestGameService_DeleteSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	created, _ := svc.CreateSession(ctx, "", "")
	if err := svc.DeleteSession(ctx, created.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := svc.GetSession(ctx, created.ID); err == nil {
		t.Error("Expected deleted session to be gone")
	}
	if err := svc.DeleteSession(ctx, created.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_FlipMismatchAndMatch(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService()
	info, _ := svc.CreateSession(ctx, "cosmic", "")

	// Cards 1 and 2 hold different symbols
	resp, err := svc.Flip(ctx, info.ID, 1)
	if err != nil {
		t.Fatalf("Flip failed: %v", err)
	}
	if resp.Result.Outcome != engine.OutcomeFlipped {
		t.Errorf("Expected flipped, got %s", resp.Result.Outcome)
	}
	if resp.Message != "Pick a second card." {
		t.Errorf("Unexpected message %q", resp.Message)
	}

	resp, _ = svc.Flip(ctx, info.ID, 2)
	if resp.Result.Outcome != engine.OutcomeMismatch {
		t.Fatalf("Expected mismatch, got %s", resp.Result.Outcome)
	}
	if !resp.GameState.Pending {
		t.Error("Expected pending resolution")
	}
	if resp.Stats.Moves != 1 {
		t.Errorf("Expected 1 move, got %d", resp.Stats.Moves)
	}

	resp, _ = svc.Flip(ctx, info.ID, 4)
	if resp.Result.Reason != engine.RejectResolutionPending {
		t.Errorf("Expected resolution_pending, got %q", resp.Result.Reason)
	}
	if resp.Message != "Wait for the cards to turn back." {
		t.Errorf("Unexpected message %q", resp.Message)
	}

	sessions.sched.Advance(engine.MismatchDelay)

	state, _ := svc.GetGameState(ctx, info.ID)
	if state.Cards[1].State != engine.Hidden || state.Cards[2].State != engine.Hidden {
		t.Error("Expected mismatched cards to be hidden again")
	}

	svc.Flip(ctx, info.ID, 0)
	resp, _ = svc.Flip(ctx, info.ID, 1)
	if resp.Result.Outcome != engine.OutcomeMatch {
		t.Fatalf("Expected match, got %s", resp.Result.Outcome)
	}
	if resp.Message != "Match!" {
		t.Errorf("Expected theme match message, got %q", resp.Message)
	}
}

func TestGameService_FlipToVictory(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService()
	info, _ := svc.CreateSession(ctx, "fruit", "bob")

	sessions.sched.Advance(65 * time.Second)

	svc.Flip(ctx, info.ID, 0)
	svc.Flip(ctx, info.ID, 1)
	svc.Flip(ctx, info.ID, 2)
	resp, err := svc.Flip(ctx, info.ID, 3)
	if err != nil {
		t.Fatalf("Flip failed: %v", err)
	}

	if resp.Result.Outcome != engine.OutcomeVictory {
		t.Fatalf("Expected victory, got %s", resp.Result.Outcome)
	}
	if resp.Summary == nil {
		t.Fatal("Expected summary")
	}
	if resp.Summary.Moves != 2 || resp.Summary.Elapsed != "01:05" {
		t.Errorf("Unexpected summary %+v", resp.Summary)
	}
	if resp.Message != "Won in 2 moves (01:05)" {
		t.Errorf("Unexpected victory message %q", resp.Message)
	}

	best, err := svc.GetBestScore(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetBestScore failed: %v", err)
	}
	if best.BestScore == nil || *best.BestScore != 2 {
		t.Errorf("Expected best score 2, got %v", best.BestScore)
	}
	if best.PlayerID != "bob" || best.ConfigName != "fruit" {
		t.Errorf("Unexpected best score owner %s/%s", best.PlayerID, best.ConfigName)
	}

	current, _ := svc.GetSession(ctx, info.ID)
	if current.Victory != nil {
		t.Error("Expected no summary before the display delay")
	}
	sessions.sched.Advance(engine.VictoryDelay)
	current, _ = svc.GetSession(ctx, info.ID)
	if current.Victory == nil || current.Victory.Moves != 2 {
		t.Errorf("Expected the displayed summary on the session, got %+v", current.Victory)
	}

	resp, _ = svc.Flip(ctx, info.ID, 0)
	if resp.Result.Reason != engine.RejectInactive {
		t.Errorf("Expected inactive rejection, got %q", resp.Result.Reason)
	}
}

func TestGameService_BestScoreSharedByPlayer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	first, _ := svc.CreateSession(ctx, "fruit", "carol")
	for _, id := range []int{0, 1, 2, 3} {
		svc.Flip(ctx, first.ID, id)
	}

	second, _ := svc.CreateSession(ctx, "fruit", "carol")
	best, _ := svc.GetBestScore(ctx, second.ID)
	if best.BestScore == nil || *best.BestScore != 2 {
		t.Errorf("Expected carol's best score to carry over, got %v", best.BestScore)
	}

	other, _ := svc.CreateSession(ctx, "cosmic", "carol")
	best, _ = svc.GetBestScore(ctx, other.ID)
	if best.BestScore != nil {
		t.Errorf("Expected no best score on another theme, got %d", *best.BestScore)
	}
}

func TestGameService_Restart(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService()
	info, _ := svc.CreateSession(ctx, "cosmic", "")

	svc.Flip(ctx, info.ID, 0)
	svc.Flip(ctx, info.ID, 2)
	sessions.sched.Advance(500 * time.Millisecond)

	view, err := svc.Restart(ctx, info.ID)
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if view.GameID == info.GameState.GameID {
		t.Error("Expected a new round")
	}
	if view.Moves != 0 || view.ElapsedSeconds != 0 {
		t.Errorf("Expected fresh counters, got moves=%d elapsed=%d", view.Moves, view.ElapsedSeconds)
	}

	svc.Flip(ctx, info.ID, 5)
	sessions.sched.Advance(time.Second)

	state, _ := svc.GetGameState(ctx, info.ID)
	if state.Cards[5].State != engine.Flipped {
		t.Error("Stale mismatch resolution changed the new round")
	}

	if _, err := svc.Restart(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_GetGameStateHidesSymbols(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	info, _ := svc.CreateSession(ctx, "cosmic", "")

	svc.Flip(ctx, info.ID, 3)
	state, err := svc.GetGameState(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetGameState failed: %v", err)
	}
	for _, card := range state.Cards {
		if card.ID == 3 && card.Symbol == "" {
			t.Error("Flipped card should show its symbol")
		}
		if card.ID != 3 && card.Symbol != "" {
			t.Errorf("Hidden card %d leaked %q", card.ID, card.Symbol)
		}
	}
}

func TestGameService_FlipClosedSession(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService()
	info, _ := svc.CreateSession(ctx, "cosmic", "")

	sessions.sessions[info.ID].Controller.Close()

	if _, err := svc.Flip(ctx, info.ID, 0); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Flip(ctx, "missing", 0); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 || configs[0].ConfigID != "cosmic" {
		t.Errorf("Unexpected configs %+v", configs)
	}

	config, err := svc.LoadConfig(ctx, "fruit")
	if err != nil || config.Name != "Fruit" {
		t.Errorf("LoadConfig failed: %v %+v", err, config)
	}

	theme := testTheme("Shapes", "■", "●", "▲")
	if err := svc.SaveConfig(ctx, "shapes", theme); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if _, err := svc.CreateSession(ctx, "shapes", ""); err != nil {
		t.Errorf("Expected saved theme to be usable, got %v", err)
	}

	if err := svc.SaveConfig(ctx, "bad", testTheme("Bad", "x")); err == nil {
		t.Error("Expected error for invalid theme")
	}
}
