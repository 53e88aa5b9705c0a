package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CosmicSymbols is the built-in symbol set used when no theme is available
var CosmicSymbols = []string{"🪐", "🛸", "🌌", "👽", "☄️", "🚀", "🔭", "🛰️"}

// ValidateGameConfig validates a theme for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return fmt.Errorf("config validation: %w", err)
		}
		return fmt.Errorf("config validation: %s", describeFieldError(verrs[0], config))
	}

	for i, symbol := range config.Symbols {
		if strings.TrimSpace(symbol) != symbol {
			return fmt.Errorf("config validation: symbol %d (%q) must not have surrounding whitespace", i+1, symbol)
		}
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for the move count")
	}
	if !strings.Contains(config.Messages.Victory, "%s") {
		return fmt.Errorf("config validation: messages.victory must contain %%s for the elapsed time")
	}

	return nil
}

// describeFieldError turns the first validator failure into a readable message
func describeFieldError(fe validator.FieldError, config *GameConfig) string {
	switch fe.Namespace() {
	case "GameConfig.Name":
		return "name is required"
	case "GameConfig.Description":
		return "description is required"
	case "GameConfig.Symbols":
		switch fe.Tag() {
		case "min", "max":
			return fmt.Sprintf("symbols must contain between %d and %d entries, got %d",
				MinSymbols, MaxSymbols, len(config.Symbols))
		case "unique":
			return "symbols must be unique"
		}
	case "GameConfig.Messages.Victory":
		return "messages.victory is required"
	}
	if strings.HasPrefix(fe.Namespace(), "GameConfig.Symbols[") {
		return fmt.Sprintf("%s must not be empty", strings.TrimPrefix(fe.Namespace(), "GameConfig."))
	}
	return fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
}

// LoadGameConfig loads a theme from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultGameConfig returns the built-in cosmic theme
func DefaultGameConfig() *GameConfig {
	symbols := make([]string, len(CosmicSymbols))
	copy(symbols, CosmicSymbols)

	return &GameConfig{
		Name:        "cosmic",
		Description: "Eight pairs of space-themed cards",
		Symbols:     symbols,
		Messages: GameMessages{
			Welcome:  "Find all the matching pairs!",
			Match:    "It's a match!",
			Mismatch: "No match, try again.",
			Victory:  "Mission complete in %d moves (%s)!",
		},
	}
}

// InitGameStateFromConfig deals a fresh round for the theme
func InitGameStateFromConfig(config *GameConfig, deck DeckBuilder) *GameState {
	if config == nil {
		config = DefaultGameConfig()
	}
	if deck == nil {
		deck = NewShuffledDeck(nil)
	}

	cards := deck.Build(config.Symbols)

	return &GameState{
		GameID:         uuid.NewString(),
		ConfigName:     config.Name,
		Cards:          cards,
		Selection:      make([]int, 0, SelectionSize),
		MatchedPairs:   0,
		TotalPairs:     len(cards) / 2,
		Moves:          0,
		ElapsedSeconds: 0,
		Active:         true,
		Victory:        false,
		Message:        config.Messages.Welcome,
	}
}
