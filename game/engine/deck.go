package engine

import (
	"math/rand/v2"
)

// RandomSource yields uniform integers in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// DeckBuilder lays out the cards for a new round
type DeckBuilder interface {
	Build(symbols []string) []Card
}

// ShuffledDeck doubles the symbols and shuffles them with Fisher-Yates
type ShuffledDeck struct {
	Rand RandomSource
}

// NewShuffledDeck creates a deck builder backed by the given source, or by
// an unseeded PCG source when src is nil.
func NewShuffledDeck(src RandomSource) *ShuffledDeck {
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ShuffledDeck{Rand: src}
}

// Build returns 2K hidden cards, each symbol appearing exactly twice
func (d *ShuffledDeck) Build(symbols []string) []Card {
	deck := make([]string, 0, len(symbols)*2)
	deck = append(deck, symbols...)
	deck = append(deck, symbols...)

	src := d.Rand
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	Shuffle(deck, src)

	return cardsFromSymbols(deck)
}

// Shuffle permutes symbols in place: for i from the last index down to 1,
// swap with a uniformly chosen index in [0, i].
func Shuffle(symbols []string, src RandomSource) {
	for i := len(symbols) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		symbols[i], symbols[j] = symbols[j], symbols[i]
	}
}

// FixedDeck lays the cards out in exactly the given symbol order.
// It ignores the theme symbols and exists for tests and reproducible runs.
type FixedDeck []string

// Build returns hidden cards in the fixed order
func (d FixedDeck) Build(_ []string) []Card {
	order := make([]string, len(d))
	copy(order, d)
	return cardsFromSymbols(order)
}

// cardsFromSymbols assigns identities 0..N-1 in order
func cardsFromSymbols(symbols []string) []Card {
	cards := make([]Card, len(symbols))
	for i, symbol := range symbols {
		cards[i] = Card{ID: i, Symbol: symbol, State: Hidden}
	}
	return cards
}

// CountSymbols returns how many times each symbol appears in the cards
func CountSymbols(cards []Card) map[string]int {
	counts := make(map[string]int)
	for _, card := range cards {
		counts[card.Symbol]++
	}
	return counts
}
