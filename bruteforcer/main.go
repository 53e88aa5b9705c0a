// Command bruteforcer plays the memory game against a running server through
// its REST API. It creates (or resumes) a session and wins rounds with a
// perfect-memory strategy, printing moves, time and the player's best score.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bruteforcer",
		Usage: "Play Memory Match rounds against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Theme ID (default theme when empty)"},
			&cli.StringFlag{Name: "player", Value: "bruteforcer", Usage: "Player ID the best score is kept under"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "rounds", Value: 1, Usage: "Rounds to play"},
			&cli.IntFlag{Name: "max-flips", Value: 1000, Usage: "Maximum flips per round"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Connecting to game server at %s", cmd.String("url"))
	client := NewClient(cmd.String("url"))

	if id := cmd.String("continue"); id != "" {
		client.UseSession(id)
		log.Printf("Resuming session %s", id)
	} else {
		info, err := client.CreateSession(ctx, cmd.String("config"), cmd.String("player"))
		if err != nil {
			return err
		}
		log.Printf("Created session %s (theme %s, %d pairs)", info.ID, info.ConfigName, info.GameState.TotalPairs)
	}

	player := NewPlayer(client, int(cmd.Int("max-flips")))
	player.verbose = cmd.Bool("v")

	return playRounds(ctx, client, player, int(cmd.Int("rounds")))
}

// playRounds wins n rounds in a row, restarting between them
func playRounds(ctx context.Context, client *Client, player *Player, n int) error {
	for round := 1; round <= n; round++ {
		if round > 1 {
			if _, err := client.Restart(ctx); err != nil {
				return err
			}
		}

		result, err := player.Play(ctx)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		log.Printf("Round %d won in %d moves (%d flips, %s)", round, result.Moves, result.Flips, result.Elapsed)
	}

	best, err := client.BestScore(ctx)
	if err != nil {
		return err
	}
	if best.BestScore != nil {
		log.Printf("Best score for %s on %s: %d moves", best.PlayerID, best.ConfigName, *best.BestScore)
	}
	return nil
}
