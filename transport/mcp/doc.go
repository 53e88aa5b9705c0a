// Package mcp exposes the memory game to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool calls the REST API of a running
// server and renders the JSON answer as text an agent can read.
//
// MCP Tools:
//   - create_session: Create a session with optional theme and player
//   - list_sessions: List all active sessions
//   - get_session: Session details, board and best score
//   - game_state: Board as a grid of ?? / symbol / [symbol]
//   - flip_card: Turn a card face up
//   - restart_game: Shuffle and start a new round
//   - best_score: Fewest moves for the session's player and theme
//   - list_configs: List available themes
//   - game_instructions: Rules and strategy hints
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp handled by GetMCPServer().HandleMessage in server mode
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
