// Package service provides the business logic layer for the memory game.
//
// The service package implements:
//   - Multi-session game management
//   - Theme lookup with helpful errors
//   - Card flips and restarts through each session's controller
//   - Best score lookup per player and theme
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages theme loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the game controllers. Each session owns one controller.Controller, which
// serializes its own input and timers, so the service needs no lock of its
// own.
//
// Usage:
//
//	sessionMgr := session.NewManager(session.WithStore(scores))
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "ocean", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := gameService.Flip(ctx, info.ID, 0)
package service
