package controller

import "github.com/wricardo/mcp-training/memorygame/game/engine"

// Stats is the scoreboard shown next to the board
type Stats struct {
	GameID         string `json:"game_id"`
	Moves          int    `json:"moves"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Elapsed        string `json:"elapsed"`
	BestScore      *int   `json:"best_score"` // nil until a round has been finished
}

// Presenter receives display commands from a Controller. Calls are made
// while the controller lock is held, so implementations must not call
// back into the controller and should not block.
type Presenter interface {
	RenderBoard(view engine.GameView)
	UpdateStats(stats Stats)
	ShowVictory(summary engine.Summary)
	HideVictory()
}

// NopPresenter discards every display command
type NopPresenter struct{}

func (NopPresenter) RenderBoard(engine.GameView) {}
func (NopPresenter) UpdateStats(Stats)           {}
func (NopPresenter) ShowVictory(engine.Summary)  {}
func (NopPresenter) HideVictory()                {}

// MultiPresenter fans display commands out to several presenters
type MultiPresenter []Presenter

func (m MultiPresenter) RenderBoard(view engine.GameView) {
	for _, p := range m {
		p.RenderBoard(view)
	}
}

func (m MultiPresenter) UpdateStats(stats Stats) {
	for _, p := range m {
		p.UpdateStats(stats)
	}
}

func (m MultiPresenter) ShowVictory(summary engine.Summary) {
	for _, p := range m {
		p.ShowVictory(summary)
	}
}

func (m MultiPresenter) HideVictory() {
	for _, p := range m {
		p.HideVictory()
	}
}
