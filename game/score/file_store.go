package score

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every best score in one JSON object on disk, keyed by
// player key. Each value is decoded on its own so one bad entry does not
// hide the others.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file store, creating the parent directory if needed
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("score file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create score directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Get returns the stored score for key. A missing file, malformed JSON or
// a non-integer value all read as no score.
func (fs *FileStore) Get(_ context.Context, key string) (int, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.read()
	if err != nil {
		log.Printf("Warning: failed to read best scores from %s: %v", fs.path, err)
		return 0, false
	}

	return lookup(entries, key)
}

// lookup decodes the entry for key, treating a corrupt value as absent
func lookup(entries map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := entries[key]
	if !ok {
		return 0, false
	}

	var moves int
	if err := json.Unmarshal(raw, &moves); err != nil || !valid(moves) {
		log.Printf("Warning: ignoring corrupt best score for %q: %s", key, string(raw))
		return 0, false
	}
	return moves, true
}

// Set writes the score for key, keeping the other entries
func (fs *FileStore) Set(_ context.Context, key string, moves int) error {
	if !valid(moves) {
		return fmt.Errorf("invalid score %d", moves)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.write(fs.readOrReset(), key, moves)
}

// SetIfLower reads and conditionally writes the file under one lock
func (fs *FileStore) SetIfLower(_ context.Context, key string, moves int) (int, bool, error) {
	if !valid(moves) {
		return 0, false, fmt.Errorf("invalid score %d", moves)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries := fs.readOrReset()
	if best, ok := lookup(entries, key); ok && best <= moves {
		return best, false, nil
	}
	if err := fs.write(entries, key, moves); err != nil {
		return moves, true, err
	}
	return moves, true, nil
}

// readOrReset returns the stored entries, or none if the file is unreadable
func (fs *FileStore) readOrReset() map[string]json.RawMessage {
	entries, err := fs.read()
	if err != nil {
		// Start over rather than refuse to record new scores
		log.Printf("Warning: replacing unreadable score file %s: %v", fs.path, err)
		return make(map[string]json.RawMessage)
	}
	return entries
}

// write sets key in entries and replaces the file. Callers hold fs.mu.
func (fs *FileStore) write(entries map[string]json.RawMessage, key string, moves int) error {
	raw, err := json.Marshal(moves)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}
	entries[key] = raw

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write score file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace score file: %w", err)
	}
	return nil
}

func (fs *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, err
	}

	entries := make(map[string]json.RawMessage)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
