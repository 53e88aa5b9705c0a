package controller

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/clock"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/score"
)

// ErrClosed is returned for input sent to a closed controller
var ErrClosed = errors.New("controller closed")

const storeTimeout = 2 * time.Second

// Controller runs one player's game: it feeds clicks into the engine,
// drives the clock, records the best score and tells the presenter what
// to show. It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	key       string
	engine    engine.Engine
	scheduler clock.Scheduler
	store     score.Store
	presenter Presenter

	ticker  clock.Handle
	resolve clock.Handle
	victory clock.Handle

	summary      *engine.Summary
	victoryShown bool
	best         int
	hasBest      bool
	started      bool
	closed       bool
}

// Option configures a Controller
type Option func(*Controller)

// WithScheduler sets the clock used for ticks and delays
func WithScheduler(s clock.Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithStore sets where best scores are kept
func WithStore(s score.Store) Option {
	return func(c *Controller) {
		if s != nil {
			c.store = s
		}
	}
}

// WithPresenter sets the display target
func WithPresenter(p Presenter) Option {
	return func(c *Controller) {
		if p != nil {
			c.presenter = p
		}
	}
}

// New creates a controller for eng. key identifies whose best score is
// read and written. Nothing runs until Start or the first Click.
func New(key string, eng engine.Engine, opts ...Option) *Controller {
	c := &Controller{
		key:       key,
		engine:    eng,
		scheduler: clock.New(),
		store:     score.NewMemoryStore(),
		presenter: NopPresenter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the best score key
func (c *Controller) Key() string {
	return c.key
}

// Start shows the current round and starts its timer. Calling it again
// only re-renders.
func (c *Controller) Start() (engine.GameView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return engine.GameView{}, ErrClosed
	}
	if !c.started {
		c.begin()
	} else {
		c.render()
	}
	return c.engine.View(), nil
}

// Restart throws away the current round, cancelling its pending tick,
// mismatch and victory callbacks, and deals a new one.
func (c *Controller) Restart() (engine.GameView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return engine.GameView{}, ErrClosed
	}
	c.stopAll()
	c.engine.Reset()
	c.begin()
	return c.engine.View(), nil
}

// Click handles a click on cardID. Ignored clicks are reported through
// the result's outcome, not as an error.
func (c *Controller) Click(cardID int) (engine.FlipResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return engine.FlipResult{Outcome: engine.OutcomeRejected, Reason: engine.RejectInactive, CardID: cardID}, ErrClosed
	}
	if !c.started {
		c.begin()
	}

	result := c.engine.Flip(cardID)
	if !result.Accepted() {
		return result, nil
	}

	if n := len(c.engine.GetState().Selection); n > engine.SelectionSize {
		log.Printf("Warning: game %s has %d cards selected", result.GameID, n)
	}

	c.presenter.RenderBoard(c.engine.View())

	switch result.Outcome {
	case engine.OutcomeMismatch:
		gameID := result.GameID
		c.resolve = c.scheduler.AfterFunc(engine.MismatchDelay, func() {
			c.resolveMismatch(gameID)
		})
		c.presenter.UpdateStats(c.stats())
	case engine.OutcomeMatch:
		c.presenter.UpdateStats(c.stats())
	case engine.OutcomeVictory:
		c.finish(result.GameID)
	}

	return result, nil
}

// View returns the current round as the player sees it
func (c *Controller) View() engine.GameView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.View()
}

// Stats returns the current scoreboard
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats()
}

// BestScore returns the player's best score, if one is recorded. It reads
// the store, so a best set by another session with the same key shows up.
func (c *Controller) BestScore() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadBest()
	return c.best, c.hasBest
}

// Summary returns the end-of-game report once the round is won
func (c *Controller) Summary() (*engine.Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return nil, false
	}
	s := *c.summary
	return &s, true
}

// ShownSummary returns the end-of-game report while it is on display,
// that is after the victory delay and before a restart
func (c *Controller) ShownSummary() (*engine.Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.victoryShown || c.summary == nil {
		return nil, false
	}
	s := *c.summary
	return &s, true
}

// Config returns the theme being played
func (c *Controller) Config() *engine.GameConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.GetConfig()
}

// Close cancels every pending callback. Later input returns ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopAll()
}

// begin presents the current round and starts its ticker
func (c *Controller) begin() {
	c.started = true
	c.summary = nil
	c.victoryShown = false
	c.presenter.HideVictory()
	c.render()

	gameID := c.engine.GetState().GameID
	c.ticker = c.scheduler.Every(engine.TickInterval, func() {
		c.tick(gameID)
	})
}

func (c *Controller) render() {
	c.presenter.RenderBoard(c.engine.View())
	c.presenter.UpdateStats(c.stats())
}

func (c *Controller) tick(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.engine.Tick(gameID) {
		c.presenter.UpdateStats(c.stats())
	}
}

func (c *Controller) resolveMismatch(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.engine.ResolveMismatch(gameID) {
		c.resolve = nil
		c.presenter.RenderBoard(c.engine.View())
	}
}

// finish runs once per round, when the last pair is matched
func (c *Controller) finish(gameID string) {
	stop(&c.ticker)

	moves := c.engine.GetState().Moves
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	_, _, err := score.Record(ctx, c.store, c.key, moves)
	cancel()
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	c.presenter.UpdateStats(c.stats())

	summary := c.engine.Summary()
	c.summary = &summary

	c.victory = c.scheduler.AfterFunc(engine.VictoryDelay, func() {
		c.showVictory(gameID)
	})
}

func (c *Controller) showVictory(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.summary == nil || c.summary.GameID != gameID {
		return
	}
	if c.engine.GetState().GameID != gameID {
		return
	}
	c.victory = nil
	c.victoryShown = true
	c.presenter.ShowVictory(*c.summary)
}

func (c *Controller) loadBest() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	c.best, c.hasBest = c.store.Get(ctx, c.key)
}

// stats refreshes the best score from the store; sessions sharing a key
// see each other's records
func (c *Controller) stats() Stats {
	c.loadBest()
	gs := c.engine.GetState()
	stats := Stats{
		GameID:         gs.GameID,
		Moves:          gs.Moves,
		ElapsedSeconds: gs.ElapsedSeconds,
		Elapsed:        engine.FormatElapsed(gs.ElapsedSeconds),
	}
	if c.hasBest {
		best := c.best
		stats.BestScore = &best
	}
	return stats
}

func (c *Controller) stopAll() {
	stop(&c.ticker)
	stop(&c.resolve)
	stop(&c.victory)
}

func stop(h *clock.Handle) {
	if *h != nil {
		(*h).Stop()
		*h = nil
	}
}
