// Package config provides theme and server settings management for the
// memory game.
//
// Themes:
//
// A theme is a JSON file in the configs directory. Its file name without
// the .json extension is the theme ID used when creating a session:
//
//	{
//	  "name": "Cosmic",
//	  "description": "Planets, rockets and friends",
//	  "symbols": ["🪐", "🛸", "🌌", "👽", "☄️", "🚀", "🔭", "🛰️"],
//	  "messages": {
//	    "welcome": "Find all the matching pairs!",
//	    "match": "It's a match!",
//	    "mismatch": "No match, try again.",
//	    "victory": "Mission complete in %d moves (%s)!"
//	  }
//	}
//
// Each symbol appears twice on the board, so a theme with K symbols deals
// 2K cards. The Manager caches loaded themes and prefers cosmic as the
// default, falling back to the built-in cosmic set when the directory holds
// no valid theme.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	theme, err := manager.LoadConfig("ocean")
//	themes, err := manager.ListConfigs()
//
// Settings:
//
// LoadSettings reads PORT, HOST, CONFIG_DIR, SCORE_STORE, SCORE_PATH, DEBUG,
// SESSION_MAX_AGE, SESSION_CLEANUP_INTERVAL and the NGROK_* variables.
package config
