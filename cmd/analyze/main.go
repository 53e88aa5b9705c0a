// Command analyze prints quick, human-readable statistics about the themes in
// the project's configs directory. For each theme it plays many simulated
// rounds with two bots, one with perfect memory and one that flips at random,
// and summarizes how many moves a round takes.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// rounds simulated per theme and bot
const rounds = 500

// moveLimit stops a bot that cannot finish
const moveLimit = 100000

// Strategy picks the next card to flip given what is visible on the board
type Strategy interface {
	Name() string
	Next(view engine.GameView) int
}

// AnalysisResult summarizes the rounds one bot played on one theme
type AnalysisResult struct {
	Strategy string
	Rounds   int
	Min      int
	Max      int
	Mean     float64
	Median   int
	Perfect  int // rounds finished in exactly one move per pair
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No theme files found in %s\n", configDir)
		os.Exit(1)
	}

	for i, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeConfig(file, uint64(i+1))
	}
}

func analyzeConfig(path string, seed uint64) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		fmt.Printf("Error loading theme: %v\n", err)
		return
	}

	pairs := len(config.Symbols)
	fmt.Printf("Name: %s\n", config.Name)
	fmt.Printf("Pairs: %d (%d cards)\n", pairs, 2*pairs)
	fmt.Printf("Fewest possible moves: %d\n", pairs)

	rng := rand.New(rand.NewPCG(seed, seed*7+3))
	strategies := []func() Strategy{
		func() Strategy { return newMemoryBot(rng) },
		func() Strategy { return newRandomBot(rng) },
	}

	for _, newStrategy := range strategies {
		result, err := simulate(config, rng, newStrategy, rounds)
		if err != nil {
			fmt.Printf("⚠️  %v\n", err)
			continue
		}
		fmt.Printf("%-8s moves min=%d median=%d mean=%.1f max=%d perfect=%d/%d\n",
			result.Strategy, result.Min, result.Median, result.Mean, result.Max, result.Perfect, result.Rounds)
	}
}

// simulate plays n rounds of config, dealing each with rng
func simulate(config *engine.GameConfig, rng *rand.Rand, newStrategy func() Strategy, n int) (AnalysisResult, error) {
	moves := make([]int, 0, n)
	var name string

	for i := 0; i < n; i++ {
		strategy := newStrategy()
		name = strategy.Name()

		count, err := playRound(config, engine.NewShuffledDeck(rng), strategy)
		if err != nil {
			return AnalysisResult{}, fmt.Errorf("%s: %w", name, err)
		}
		moves = append(moves, count)
	}

	return summarize(name, moves, len(config.Symbols)), nil
}

// playRound runs one round to victory and returns its move count.
// Mismatches are resolved immediately since no real time passes.
func playRound(config *engine.GameConfig, deck engine.DeckBuilder, strategy Strategy) (int, error) {
	game, err := engine.NewEngine(config, deck)
	if err != nil {
		return 0, err
	}

	for flips := 0; game.IsActive(); flips++ {
		if flips > 2*moveLimit {
			return 0, fmt.Errorf("no victory after %d flips", flips)
		}

		result := game.Flip(strategy.Next(game.View()))
		switch result.Outcome {
		case engine.OutcomeRejected:
			return 0, fmt.Errorf("strategy flipped card %d: %s", result.CardID, result.Reason)
		case engine.OutcomeMismatch:
			if observer, ok := strategy.(interface{ Observe(engine.GameView) }); ok {
				observer.Observe(game.View())
			}
			game.ResolveMismatch(result.GameID)
		}
	}

	return game.GetState().Moves, nil
}

func summarize(name string, moves []int, pairs int) AnalysisResult {
	result := AnalysisResult{Strategy: name, Rounds: len(moves)}
	if len(moves) == 0 {
		return result
	}

	sorted := append([]int(nil), moves...)
	sort.Ints(sorted)

	total := 0
	for _, m := range sorted {
		total += m
		if m == pairs {
			result.Perfect++
		}
	}
	result.Min = sorted[0]
	result.Max = sorted[len(sorted)-1]
	result.Median = sorted[len(sorted)/2]
	result.Mean = float64(total) / float64(len(sorted))
	return result
}

// memoryBot remembers every symbol it has seen
type memoryBot struct {
	rng   *rand.Rand
	known map[int]string // card ID -> symbol, unmatched cards only
}

func newMemoryBot(rng *rand.Rand) *memoryBot {
	return &memoryBot{rng: rng, known: make(map[int]string)}
}

func (b *memoryBot) Name() string { return "memory" }

// Observe records both cards of a mismatch before they turn back
func (b *memoryBot) Observe(view engine.GameView) {
	for _, card := range view.Cards {
		if card.State == engine.Flipped {
			b.known[card.ID] = card.Symbol
		}
	}
}

func (b *memoryBot) Next(view engine.GameView) int {
	for _, card := range view.Cards {
		if card.State == engine.Matched {
			delete(b.known, card.ID)
		}
	}

	// Second card of a move: take the known partner if there is one
	for _, card := range view.Cards {
		if card.State != engine.Flipped {
			continue
		}
		b.known[card.ID] = card.Symbol
		for id, symbol := range b.known {
			if id != card.ID && symbol == card.Symbol && view.Cards[id].State == engine.Hidden {
				return id
			}
		}
		return b.unseen(view, card.ID)
	}

	// First card: finish a pair already located
	bySymbol := make(map[string]int)
	for _, id := range sortedIDs(b.known) {
		if other, ok := bySymbol[b.known[id]]; ok {
			return other
		}
		bySymbol[b.known[id]] = id
	}

	return b.unseen(view, -1)
}

// unseen picks a random hidden card the bot knows nothing about
func (b *memoryBot) unseen(view engine.GameView, exclude int) int {
	var candidates []int
	for _, card := range view.Cards {
		if card.State != engine.Hidden || card.ID == exclude {
			continue
		}
		if _, seen := b.known[card.ID]; !seen {
			candidates = append(candidates, card.ID)
		}
	}
	if len(candidates) == 0 {
		// Everything hidden is known; any hidden card will do
		for _, card := range view.Cards {
			if card.State == engine.Hidden && card.ID != exclude {
				return card.ID
			}
		}
	}
	return candidates[b.rng.IntN(len(candidates))]
}

func sortedIDs(m map[int]string) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// randomBot flips any hidden card and remembers nothing
type randomBot struct {
	rng *rand.Rand
}

func newRandomBot(rng *rand.Rand) *randomBot {
	return &randomBot{rng: rng}
}

func (b *randomBot) Name() string { return "random" }

func (b *randomBot) Next(view engine.GameView) int {
	var hidden []int
	for _, card := range view.Cards {
		if card.State == engine.Hidden {
			hidden = append(hidden, card.ID)
		}
	}
	return hidden[b.rng.IntN(len(hidden))]
}
