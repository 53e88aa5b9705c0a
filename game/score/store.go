package score

import (
	"context"
	"fmt"
)

// Store persists the best (lowest) move count per player key. Get reports
// false when no score is recorded; unreadable values count as unrecorded.
//
// SetIfLower compares and writes in one step, so sessions sharing a key
// never replace a lower best with a higher one. It returns the best score
// after the call and whether moves became the new best.
type Store interface {
	Get(ctx context.Context, key string) (int, bool)
	Set(ctx context.Context, key string, moves int) error
	SetIfLower(ctx context.Context, key string, moves int) (int, bool, error)
}

// Record stores moves as the new best score for key if none exists or moves
// is strictly lower. It returns the best score after the update and whether
// it changed.
func Record(ctx context.Context, store Store, key string, moves int) (int, bool, error) {
	best, changed, err := store.SetIfLower(ctx, key, moves)
	if err != nil {
		return best, changed, fmt.Errorf("failed to save best score: %w", err)
	}
	return best, changed, nil
}

// Key scopes a player's best score to one theme
func Key(player, theme string) string {
	return player + "/" + theme
}

// valid rejects values no finished game can produce
func valid(moves int) bool {
	return moves > 0
}
