// Package websocket provides WebSocket transport for the memory game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - A controller.Presenter that broadcasts display commands
//   - Card clicks and restarts sent by the browser
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine. Outbound events are queued on a buffered channel so that
// a controller holding its lock never waits on the network.
//
// Message Protocol:
//
// Messages are JSON-encoded, one per frame:
//   - Incoming: {"action": "flip", "card_id": 3} or {"action": "restart"}
//   - Outgoing: {"session_id": "ab12", "event": "board", "data": {...}}
//
// Outgoing events are board, stats, victory and victory_hidden, which mirror
// the presenter calls, plus rejected and error, which are sent only to the
// client whose message caused them.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetInputHandler(gameService)
//	go hub.Run()
//
//	sessions := session.NewManager(session.WithPresenterFactory(hub.PresenterFor))
package websocket
