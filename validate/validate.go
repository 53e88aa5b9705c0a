// Command validate provides a small CLI that validates theme JSON files in
// the ../configs directory (or the directory given as first argument). It
// checks:
//   - JSON structure and unknown keys
//   - The rules enforced when a theme is loaded (name, description, 2..32
//     distinct non-empty symbols, victory message with %d and %s)
//   - Presence of the welcome, match and mismatch messages
//   - That a dealt deck holds every symbol exactly twice
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single theme file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
	}

	requiredMessages := map[string]string{
		"welcome":  config.Messages.Welcome,
		"match":    config.Messages.Match,
		"mismatch": config.Messages.Mismatch,
	}
	for _, key := range []string{"welcome", "match", "mismatch"} {
		if strings.TrimSpace(requiredMessages[key]) == "" {
			result.fail("Missing required message: %s", key)
		}
	}

	if !result.Valid {
		return result
	}

	if deckErrs := validateDeck(config.Symbols); len(deckErrs) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, deckErrs...)
		return result
	}

	// Add informational data
	sample := fmt.Sprintf(config.Messages.Victory, len(config.Symbols), engine.FormatElapsed(95))
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Pairs: %d (%d cards)", len(config.Symbols), 2*len(config.Symbols)),
		fmt.Sprintf("✓ Symbols: %s", strings.Join(config.Symbols, " ")),
		fmt.Sprintf("✓ Victory: %s", sample),
	)

	return result
}

// validateDeck deals the symbols a few times and checks every deal is a
// permutation holding each symbol exactly twice
func validateDeck(symbols []string) []string {
	var errs []string
	deck := engine.NewShuffledDeck(rand.New(rand.NewPCG(1, 2)))

	for round := 0; round < 10; round++ {
		cards := deck.Build(symbols)
		if len(cards) != 2*len(symbols) {
			errs = append(errs, fmt.Sprintf("Deal %d: expected %d cards, got %d", round+1, 2*len(symbols), len(cards)))
			continue
		}
		counts := engine.CountSymbols(cards)
		for _, symbol := range symbols {
			if counts[symbol] != 2 {
				errs = append(errs, fmt.Sprintf("Deal %d: symbol %q appears %d times", round+1, symbol, counts[symbol]))
			}
		}
	}
	return errs
}

// main scans the configs directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No theme files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All themes are valid!")
	} else {
		fmt.Println("❌ Some themes have errors")
		os.Exit(1)
	}
}
