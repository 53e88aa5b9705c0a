package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadSettings_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "HOST", "CONFIG_DIR", "SCORE_STORE", "SCORE_PATH", "DEBUG",
		"SESSION_MAX_AGE", "SESSION_CLEANUP_INTERVAL", "NGROK_ENABLED", "NGROK_AUTHTOKEN", "NGROK_DOMAIN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if s.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", s.Port)
	}
	if s.Host != "localhost" {
		t.Errorf("Expected host localhost, got %s", s.Host)
	}
	if s.ConfigDir != "configs" {
		t.Errorf("Expected configs dir, got %s", s.ConfigDir)
	}
	if s.ScoreStore != StoreFile {
		t.Errorf("Expected file store, got %s", s.ScoreStore)
	}
	if s.SessionMaxAge != 24*time.Hour {
		t.Errorf("Expected 24h max age, got %v", s.SessionMaxAge)
	}
	if s.CleanupInterval != time.Hour {
		t.Errorf("Expected 1h cleanup interval, got %v", s.CleanupInterval)
	}
	if s.Addr() != "localhost:8080" {
		t.Errorf("Expected localhost:8080, got %s", s.Addr())
	}
}

func TestLoadSettings_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("SCORE_STORE", "sqlite")
	t.Setenv("SCORE_PATH", "/tmp/scores.db")
	t.Setenv("DEBUG", "true")
	t.Setenv("SESSION_MAX_AGE", "30m")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if s.Port != 9090 || s.Host != "0.0.0.0" {
		t.Errorf("Unexpected address %s", s.Addr())
	}
	if s.ScoreStore != StoreSQLite || s.ScorePath != "/tmp/scores.db" {
		t.Errorf("Unexpected store %s at %s", s.ScoreStore, s.ScorePath)
	}
	if !s.Debug {
		t.Error("Expected debug enabled")
	}
	if s.SessionMaxAge != 30*time.Minute {
		t.Errorf("Expected 30m, got %v", s.SessionMaxAge)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		key, value  string
		errContains string
	}{
		{"port out of range", "PORT", "70000", "Port"},
		{"port not a number", "PORT", "eighty", "parse env"},
		{"unknown store", "SCORE_STORE", "redis", "ScoreStore"},
		{"bad duration", "SESSION_MAX_AGE", "soon", "parse env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadSettings()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Expected error containing %q, got %q", tt.errContains, err.Error())
			}
		})
	}
}

func TestSettings_Validate(t *testing.T) {
	s := Settings{
		Port:            8080,
		Host:            "localhost",
		ConfigDir:       "configs",
		ScoreStore:      StoreMemory,
		SessionMaxAge:   time.Hour,
		CleanupInterval: time.Minute,
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Memory store needs no path, got %v", err)
	}

	s.ScoreStore = StoreFile
	if err := s.Validate(); err == nil {
		t.Error("Expected error for file store without a path")
	}

	s.ScorePath = "scores.json"
	s.Port = 0
	if err := s.Validate(); err == nil {
		t.Error("Expected error for port 0")
	}
}
