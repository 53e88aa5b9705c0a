package score

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS best_scores (
	player_key TEXT PRIMARY KEY,
	moves      INTEGER NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps best scores in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create score directory: %w", err)
	}

	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	// One connection serializes writers inside the process
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the stored score for key
func (s *SQLiteStore) Get(ctx context.Context, key string) (int, bool) {
	var moves int
	err := s.db.QueryRowContext(ctx,
		`SELECT moves FROM best_scores WHERE player_key = ?`, key,
	).Scan(&moves)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false
	}
	if err != nil {
		log.Printf("Warning: failed to read best score for %q: %v", key, err)
		return 0, false
	}
	if !valid(moves) {
		log.Printf("Warning: ignoring corrupt best score for %q: %d", key, moves)
		return 0, false
	}
	return moves, true
}

// Set upserts the score for key
func (s *SQLiteStore) Set(ctx context.Context, key string, moves int) error {
	if !valid(moves) {
		return fmt.Errorf("invalid score %d", moves)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO best_scores (player_key, moves, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(player_key) DO UPDATE SET moves = excluded.moves, updated_at = excluded.updated_at`,
		key, moves, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save best score: %w", err)
	}
	return nil
}

// SetIfLower upserts moves only when no valid lower or equal score exists.
// The comparison runs inside the statement, so concurrent callers cannot
// raise the stored best.
func (s *SQLiteStore) SetIfLower(ctx context.Context, key string, moves int) (int, bool, error) {
	if !valid(moves) {
		return 0, false, fmt.Errorf("invalid score %d", moves)
	}

	var best int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO best_scores (player_key, moves, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(player_key) DO UPDATE SET moves = excluded.moves, updated_at = excluded.updated_at
		WHERE typeof(best_scores.moves) != 'integer' OR best_scores.moves <= 0 OR excluded.moves < best_scores.moves
		RETURNING moves`,
		key, moves, time.Now().UTC().Format(time.RFC3339Nano),
	).Scan(&best)
	if errors.Is(err, sql.ErrNoRows) {
		// Kept the existing score
		if current, ok := s.Get(ctx, key); ok {
			return current, false, nil
		}
		return moves, false, nil
	}
	if err != nil {
		return moves, true, fmt.Errorf("save best score: %w", err)
	}
	return best, true, nil
}
