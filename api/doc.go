// Package api provides HTTP REST API handlers for the memory game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session {config_id, player_id}
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/{id} - Get a session with its board and stats
//   - DELETE /api/sessions/{id} - End a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board, hidden symbols omitted
//   - POST /api/sessions/{id}/flip - Click a card {card_id}
//   - POST /api/sessions/{id}/restart - Start a new round
//   - GET /api/sessions/{id}/best-score - Best score for the player and theme
//
// Configuration:
//   - GET /api/configs - List themes
//   - POST /api/configs - Save a theme
//   - GET /api/configs/{name} - Get one theme
//
// Other:
//   - GET /api/health - Liveness
//   - GET /ws?session={id} - WebSocket feed, see package websocket
//   - / - Static UI from ./static/
//
// A click the game ignores (second card still turning back, card already
// face up, round over) is answered with 200 and a rejected outcome carrying
// a reason code. Board and stats updates are pushed to WebSocket watchers by
// the session's presenter, not by the handlers.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status code: 404 for unknown
// sessions and themes, 400 for malformed bodies and invalid themes, 500
// otherwise.
//
//	{"error": "session not found: ab12"}
package api
