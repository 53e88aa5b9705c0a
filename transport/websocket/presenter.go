package websocket

import (
	"github.com/wricardo/mcp-training/memorygame/game/controller"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// SessionPresenter forwards a controller's display commands to every
// client watching one session
type SessionPresenter struct {
	hub       *Hub
	sessionID string
}

var _ controller.Presenter = (*SessionPresenter)(nil)

// PresenterFor returns the presenter for sessionID
func (h *Hub) PresenterFor(sessionID string) controller.Presenter {
	return &SessionPresenter{hub: h, sessionID: sessionID}
}

func (p *SessionPresenter) RenderBoard(view engine.GameView) {
	p.hub.BroadcastEvent(p.sessionID, EventBoard, view)
}

func (p *SessionPresenter) UpdateStats(stats controller.Stats) {
	p.hub.BroadcastEvent(p.sessionID, EventStats, stats)
}

func (p *SessionPresenter) ShowVictory(summary engine.Summary) {
	p.hub.BroadcastEvent(p.sessionID, EventVictory, summary)
}

func (p *SessionPresenter) HideVictory() {
	p.hub.BroadcastEvent(p.sessionID, EventVictoryHidden, nil)
}
