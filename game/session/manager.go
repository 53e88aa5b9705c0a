package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/clock"
	"github.com/wricardo/mcp-training/memorygame/game/controller"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/score"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// PresenterFactory returns the display target for a session's controller
type PresenterFactory func(sessionID string) controller.Presenter

// Option configures a Manager
type Option func(*Manager)

// WithStore sets the best score store shared by all sessions
func WithStore(store score.Store) Option {
	return func(m *Manager) { m.store = store }
}

// WithScheduler sets the clock every controller runs on
func WithScheduler(s clock.Scheduler) Option {
	return func(m *Manager) { m.scheduler = s }
}

// WithPresenterFactory sets how each session's display target is built
func WithPresenterFactory(f PresenterFactory) Option {
	return func(m *Manager) { m.presenters = f }
}

// WithDeckBuilder sets how each new session lays out its cards
func WithDeckBuilder(f func() engine.DeckBuilder) Option {
	return func(m *Manager) { m.decks = f }
}

// Manager handles game session lifecycle
type Manager struct {
	sessions   map[string]*service.Session
	store      score.Store
	scheduler  clock.Scheduler
	presenters PresenterFactory
	decks      func() engine.DeckBuilder
	mu         sync.RWMutex
}

// NewManager creates a new session manager. Without options sessions keep
// best scores in memory and run on the wall clock.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions:  make(map[string]*service.Session),
		store:     score.NewMemoryStore(),
		scheduler: clock.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session and starts its first round
func (m *Manager) Create(req service.NewSession) (*service.Session, error) {
	id := req.ID
	if id == "" {
		id = m.generateSessionID()
	} else if strings.TrimSpace(id) != id || strings.ContainsAny(id, "/ ") {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	var deck engine.DeckBuilder
	if m.decks != nil {
		deck = m.decks()
	}
	eng, err := engine.NewEngine(req.Config, deck)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	playerID := req.PlayerID
	if playerID == "" {
		playerID = id
	}
	configID := req.ConfigID
	if configID == "" {
		configID = req.Config.Name
	}

	opts := []controller.Option{
		controller.WithStore(m.store),
		controller.WithScheduler(m.scheduler),
	}
	if m.presenters != nil {
		opts = append(opts, controller.WithPresenter(m.presenters(id)))
	}
	ctrl := controller.New(score.Key(playerID, configID), eng, opts...)

	now := time.Now()
	session := &service.Session{
		ID:             id,
		PlayerID:       playerID,
		ConfigID:       configID,
		Config:         req.Config,
		Controller:     ctrl,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	if _, err := ctrl.Start(); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	m.sessions[strings.ToLower(id)] = session
	copied := *session
	return &copied, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(req service.NewSession) (*service.Session, error) {
	session, err := m.Get(req.ID)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(req)
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		copied := *session
		result = append(result, &copied)
	}

	return result
}

// Delete removes a session and stops its controller
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	session, exists := m.sessions[key]
	if !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, key)
	session.Controller.Close()
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for key, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, key)
			session.Controller.Close()
			removed++
		}
	}

	return removed
}

// CloseAll stops every session, used on shutdown
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, session := range m.sessions {
		session.Controller.Close()
		delete(m.sessions, key)
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for {
		bytes := make([]byte, 2)
		if _, err := rand.Read(bytes); err != nil {
			log.Printf("Warning: crypto/rand failed: %v", err)
		}
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) {
			return id
		}
	}
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
