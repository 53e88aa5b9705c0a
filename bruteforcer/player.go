package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// Result describes one finished round
type Result struct {
	Moves   int
	Flips   int
	Elapsed string
}

// Player finishes rounds over the REST API, remembering every symbol it
// has seen until its pair is matched
type Player struct {
	client   *Client
	known    map[int]string
	maxFlips int
	verbose  bool

	// wait pauses while a mismatched pair is showing
	wait func(ctx context.Context) error
}

func NewPlayer(client *Client, maxFlips int) *Player {
	return &Player{
		client:   client,
		known:    make(map[int]string),
		maxFlips: maxFlips,
		wait:     sleepWait(engine.MismatchDelay / 4),
	}
}

func sleepWait(d time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}
}

// Play flips cards until the current round is won
func (p *Player) Play(ctx context.Context) (*Result, error) {
	view, err := p.client.State(ctx)
	if err != nil {
		return nil, err
	}
	p.known = make(map[int]string)
	gameID := view.GameID

	for flips := 0; ; {
		if view.GameID != gameID {
			return nil, fmt.Errorf("round %s was replaced by %s", gameID, view.GameID)
		}
		if view.Victory {
			return &Result{Moves: view.Moves, Flips: flips, Elapsed: view.Elapsed}, nil
		}
		if !view.Active {
			return nil, fmt.Errorf("round ended without victory")
		}
		if flips >= p.maxFlips {
			return nil, fmt.Errorf("no victory after %d flips", flips)
		}

		if view.Pending {
			if err := p.wait(ctx); err != nil {
				return nil, err
			}
			if view, err = p.client.State(ctx); err != nil {
				return nil, err
			}
			continue
		}

		p.remember(*view)
		cardID := p.pick(*view)

		resp, err := p.client.Flip(ctx, cardID)
		if err != nil {
			return nil, err
		}
		flips++

		result := resp.Result
		if p.verbose {
			log.Printf("flip card=%d outcome=%s moves=%d", cardID, result.Outcome, result.Moves)
		}
		if result.Outcome == engine.OutcomeRejected && result.Reason != engine.RejectResolutionPending {
			return nil, fmt.Errorf("flip of card %d rejected: %s", cardID, result.Reason)
		}

		view = &resp.GameState
		p.remember(*view)
	}
}

// remember records face-up symbols and forgets matched cards
func (p *Player) remember(view engine.GameView) {
	for _, card := range view.Cards {
		switch card.State {
		case engine.Flipped:
			p.known[card.ID] = card.Symbol
		case engine.Matched:
			delete(p.known, card.ID)
		}
	}
}

// pick chooses the next card: a known partner of the face-up card, the
// first card of a pair already located, or the lowest unseen card
func (p *Player) pick(view engine.GameView) int {
	ids := p.knownIDs()

	for _, card := range view.Cards {
		if card.State != engine.Flipped {
			continue
		}
		for _, id := range ids {
			if id != card.ID && p.known[id] == card.Symbol && view.Cards[id].State == engine.Hidden {
				return id
			}
		}
		return p.unseen(view, card.ID)
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[p.known[id]] {
			for _, first := range ids {
				if p.known[first] == p.known[id] {
					return first
				}
			}
		}
		seen[p.known[id]] = true
	}

	return p.unseen(view, -1)
}

func (p *Player) unseen(view engine.GameView, exclude int) int {
	fallback := -1
	for _, card := range view.Cards {
		if card.State != engine.Hidden || card.ID == exclude {
			continue
		}
		if _, ok := p.known[card.ID]; !ok {
			return card.ID
		}
		if fallback < 0 {
			fallback = card.ID
		}
	}
	return fallback
}

func (p *Player) knownIDs() []int {
	ids := make([]int, 0, len(p.known))
	for id := range p.known {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
