package engine

import "time"

// CardState represents the visibility of a single card
type CardState string

const (
	Hidden  CardState = "hidden"
	Flipped CardState = "flipped"
	Matched CardState = "matched"

	// Validation constants
	MinSymbols    = 2
	MaxSymbols    = 32
	SelectionSize = 2

	// Timing constants
	TickInterval  = time.Second
	MismatchDelay = time.Second
	VictoryDelay  = 500 * time.Millisecond
)

// FlipOutcome describes what a single click did to the round
type FlipOutcome string

const (
	OutcomeRejected FlipOutcome = "rejected"
	OutcomeFlipped  FlipOutcome = "flipped"
	OutcomeMatch    FlipOutcome = "match"
	OutcomeMismatch FlipOutcome = "mismatch"
	OutcomeVictory  FlipOutcome = "victory"
)

// Reject reasons reported with OutcomeRejected
const (
	RejectInactive          = "inactive"
	RejectUnknownCard       = "unknown_card"
	RejectAlreadyFlipped    = "already_flipped"
	RejectAlreadyMatched    = "already_matched"
	RejectResolutionPending = "resolution_pending"
)

// Card is one face-down/face-up tile on the board
type Card struct {
	ID     int       `json:"id"`
	Symbol string    `json:"symbol"`
	State  CardState `json:"state"`
}

// GameMessages holds the player-facing texts of a theme
type GameMessages struct {
	Welcome  string `json:"welcome"`
	Match    string `json:"match"`
	Mismatch string `json:"mismatch"`
	Victory  string `json:"victory" validate:"required"` // %d moves, %s elapsed
}

// GameConfig represents a theme loaded from JSON
type GameConfig struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Symbols     []string     `json:"symbols" validate:"min=2,max=32,unique,dive,required"`
	Messages    GameMessages `json:"messages"`
}

// GameState is a single round of play. A restart replaces it with a new value.
type GameState struct {
	GameID         string `json:"game_id"`
	ConfigName     string `json:"config_name"`
	Cards          []Card `json:"cards"`
	Selection      []int  `json:"selection"`
	MatchedPairs   int    `json:"matched_pairs"`
	TotalPairs     int    `json:"total_pairs"`
	Moves          int    `json:"moves"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Active         bool   `json:"active"`
	Victory        bool   `json:"victory"`
	Message        string `json:"message"`
}

// CardView is a card as the player is allowed to see it
type CardView struct {
	ID     int       `json:"id"`
	State  CardState `json:"state"`
	Symbol string    `json:"symbol,omitempty"` // empty while hidden
}

// GameView is the presentation projection of a round
type GameView struct {
	GameID         string     `json:"game_id"`
	ConfigName     string     `json:"config_name"`
	Cards          []CardView `json:"cards"`
	MatchedPairs   int        `json:"matched_pairs"`
	TotalPairs     int        `json:"total_pairs"`
	Moves          int        `json:"moves"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	Elapsed        string     `json:"elapsed"`
	Active         bool       `json:"active"`
	Victory        bool       `json:"victory"`
	Pending        bool       `json:"pending"`
	Message        string     `json:"message"`
}

// Summary is the end-of-game report shown to the player
type Summary struct {
	GameID         string `json:"game_id"`
	Moves          int    `json:"moves"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Elapsed        string `json:"elapsed"`
	Message        string `json:"message"`
}

// FlipResult reports the effect of one click
type FlipResult struct {
	Outcome FlipOutcome `json:"outcome"`
	Reason  string      `json:"reason,omitempty"`
	CardID  int         `json:"card_id"`
	Pair    []int       `json:"pair,omitempty"` // both cards once a move completes
	Moves   int         `json:"moves"`
	GameID  string      `json:"game_id"`
}

// Accepted reports whether the click changed the round
func (r FlipResult) Accepted() bool {
	return r.Outcome != OutcomeRejected
}
