// Package engine provides the core game logic for the memory-matching game.
//
// The engine package implements the game mechanics including:
//   - Deck construction and Fisher-Yates shuffling
//   - Flip sequencing with the two-card selection gate
//   - Match and mismatch resolution
//   - Move and elapsed-time bookkeeping
//   - Theme loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents one round of play,
// GameView is what a player may see of it (hidden symbols stay secret),
// and GameConfig is a theme: a set of distinct symbols plus messages.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/cosmic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result := gameEngine.Flip(0)
//	if result.Outcome == engine.OutcomeMismatch {
//		// one second later
//		gameEngine.ResolveMismatch(result.GameID)
//	}
//
// Timing:
//
// The engine owns no timers. Tick, ResolveMismatch and the victory display
// are driven from outside (see the controller package) and every timed call
// carries the GameID of the round it was scheduled for, so a call that
// arrives after a restart changes nothing.
package engine
