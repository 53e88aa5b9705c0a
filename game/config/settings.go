package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Score store backends
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Settings holds the server settings read from the environment. Command
// line flags override them in main.
type Settings struct {
	Port            int           `env:"PORT" envDefault:"8080" validate:"gt=0,lt=65536"`
	Host            string        `env:"HOST" envDefault:"localhost" validate:"required"`
	ConfigDir       string        `env:"CONFIG_DIR" envDefault:"configs" validate:"required"`
	ScoreStore      string        `env:"SCORE_STORE" envDefault:"file" validate:"oneof=memory file sqlite"`
	ScorePath       string        `env:"SCORE_PATH" envDefault:"data/best_scores.json" validate:"required_unless=ScoreStore memory"`
	Debug           bool          `env:"DEBUG" envDefault:"false"`
	SessionMaxAge   time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h" validate:"gt=0"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h" validate:"gt=0"`
	NgrokEnabled    bool          `env:"NGROK_ENABLED" envDefault:"false"`
	NgrokAuthToken  string        `env:"NGROK_AUTHTOKEN"`
	NgrokDomain     string        `env:"NGROK_DOMAIN"`
}

var settingsValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadSettings parses Settings from the environment and validates them
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks ranges and enums, for example after flags were applied
func (s *Settings) Validate() error {
	if err := settingsValidator.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Addr returns host:port
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
