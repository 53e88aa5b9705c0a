package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Round management
	GetState() *GameState
	Reset() *GameState
	IsActive() bool
	IsVictory() bool

	// Input
	Flip(cardID int) FlipResult
	ResolveMismatch(gameID string) bool
	Tick(gameID string) bool

	// Views
	View() GameView
	Summary() Summary

	// Configuration
	GetConfig() *GameConfig
}

// GameEngine implements the Engine interface. It holds no timers; the
// caller decides when a mismatch is resolved and when a second has passed.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	deck   DeckBuilder
}

// NewEngine creates a new game engine with the provided theme and deck builder.
// A nil deck builder shuffles with an unseeded random source.
func NewEngine(config *GameConfig, deck DeckBuilder) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if deck == nil {
		deck = NewShuffledDeck(nil)
	}

	engine := &GameEngine{
		config: config,
		deck:   deck,
	}
	engine.state = InitGameStateFromConfig(config, deck)

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the cosmic theme
func NewEngineWithDefaults() *GameEngine {
	config := DefaultGameConfig()
	deck := NewShuffledDeck(nil)
	return &GameEngine{
		config: config,
		deck:   deck,
		state:  InitGameStateFromConfig(config, deck),
	}
}

// GetState returns the current round
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// GetConfig returns the current theme
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Reset deals a brand new round. The previous GameState is left untouched.
func (e *GameEngine) Reset() *GameState {
	e.state = InitGameStateFromConfig(e.config, e.deck)
	return e.state
}

// IsActive reports whether the round still accepts flips
func (e *GameEngine) IsActive() bool {
	return e.state.Active
}

// IsVictory reports whether every pair has been found
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// Pending reports whether two unmatched cards are waiting to be turned back
func (e *GameEngine) Pending() bool {
	return len(e.state.Selection) == SelectionSize
}

// Flip turns the card face up and resolves the pair once two are showing.
// Invalid clicks leave the round untouched and report OutcomeRejected.
func (e *GameEngine) Flip(cardID int) FlipResult {
	gs := e.state
	result := FlipResult{CardID: cardID, Moves: gs.Moves, GameID: gs.GameID}

	if reason := gs.rejectReason(cardID); reason != "" {
		result.Outcome = OutcomeRejected
		result.Reason = reason
		return result
	}

	gs.Cards[cardID].State = Flipped
	gs.Selection = append(gs.Selection, cardID)

	if len(gs.Selection) < SelectionSize {
		result.Outcome = OutcomeFlipped
		return result
	}

	gs.Moves++
	first, second := gs.Selection[0], gs.Selection[1]
	result.Moves = gs.Moves
	result.Pair = []int{first, second}

	if gs.Cards[first].Symbol != gs.Cards[second].Symbol {
		// Both stay face up until ResolveMismatch; the full selection blocks input.
		gs.Message = e.config.Messages.Mismatch
		result.Outcome = OutcomeMismatch
		return result
	}

	gs.Cards[first].State = Matched
	gs.Cards[second].State = Matched
	gs.MatchedPairs++
	gs.Selection = gs.Selection[:0]
	gs.Message = e.config.Messages.Match
	result.Outcome = OutcomeMatch

	if gs.MatchedPairs == gs.TotalPairs {
		gs.Active = false
		gs.Victory = true
		gs.Message = fmt.Sprintf(e.config.Messages.Victory, gs.Moves, FormatElapsed(gs.ElapsedSeconds))
		result.Outcome = OutcomeVictory
	}

	return result
}

// rejectReason returns why a click on cardID must be ignored, or "" if it is valid
func (gs *GameState) rejectReason(cardID int) string {
	switch {
	case !gs.Active:
		return RejectInactive
	case cardID < 0 || cardID >= len(gs.Cards):
		return RejectUnknownCard
	case len(gs.Selection) >= SelectionSize:
		return RejectResolutionPending
	case gs.Cards[cardID].State == Matched:
		return RejectAlreadyMatched
	case gs.Cards[cardID].State == Flipped:
		return RejectAlreadyFlipped
	}
	return ""
}

// ResolveMismatch turns a mismatched pair face down again. It only acts on
// the round identified by gameID, so a late call for an old round is a no-op.
func (e *GameEngine) ResolveMismatch(gameID string) bool {
	gs := e.state
	if gs.GameID != gameID || len(gs.Selection) != SelectionSize {
		return false
	}

	for _, id := range gs.Selection {
		if gs.Cards[id].State == Flipped {
			gs.Cards[id].State = Hidden
		}
	}
	gs.Selection = gs.Selection[:0]
	return true
}

// Tick adds one second to the round identified by gameID while it is active
func (e *GameEngine) Tick(gameID string) bool {
	gs := e.state
	if gs.GameID != gameID || !gs.Active {
		return false
	}
	gs.ElapsedSeconds++
	return true
}

// View returns the round as the player may see it: hidden cards keep their
// symbol secret.
func (e *GameEngine) View() GameView {
	gs := e.state
	cards := make([]CardView, len(gs.Cards))
	for i, card := range gs.Cards {
		cards[i] = CardView{ID: card.ID, State: card.State}
		if card.State != Hidden {
			cards[i].Symbol = card.Symbol
		}
	}

	return GameView{
		GameID:         gs.GameID,
		ConfigName:     gs.ConfigName,
		Cards:          cards,
		MatchedPairs:   gs.MatchedPairs,
		TotalPairs:     gs.TotalPairs,
		Moves:          gs.Moves,
		ElapsedSeconds: gs.ElapsedSeconds,
		Elapsed:        FormatElapsed(gs.ElapsedSeconds),
		Active:         gs.Active,
		Victory:        gs.Victory,
		Pending:        len(gs.Selection) == SelectionSize,
		Message:        gs.Message,
	}
}

// Summary returns the final moves and time of the round
func (e *GameEngine) Summary() Summary {
	gs := e.state
	return Summary{
		GameID:         gs.GameID,
		Moves:          gs.Moves,
		ElapsedSeconds: gs.ElapsedSeconds,
		Elapsed:        FormatElapsed(gs.ElapsedSeconds),
		Message:        gs.Message,
	}
}
