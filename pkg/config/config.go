package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Server configures the log host.
type Server struct {
	LogLevel string `env:"OVERLORD_LOG_LEVEL" envDefault:"info"`
	Port     int    `env:"OVERLORD_PORT" envDefault:"8080"`
	// DatabaseURL is one of memory://, sqlite://<path> or postgresql://...
	DatabaseURL string `env:"OVERLORD_DATABASE_URL" envDefault:"sqlite://overlord.db"`
}

// Client configures a game client.
type Client struct {
	LogLevel     string        `env:"OVERLORD_LOG_LEVEL" envDefault:"info"`
	HostURL      string        `env:"OVERLORD_HOST_URL" envDefault:"http://localhost:8080"`
	Topic        string        `env:"OVERLORD_TOPIC" envDefault:"FORTRESS_OVERLORD_V1"`
	Nickname     string        `env:"OVERLORD_NICKNAME"`
	PublicKeyID  string        `env:"OVERLORD_PUBKEY"`
	PollInterval time.Duration `env:"OVERLORD_POLL_INTERVAL" envDefault:"500ms"`
	TuningFile   string        `env:"OVERLORD_TUNING_FILE"`
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func LoadClient() (Client, error) {
	var cfg Client
	if err := ParseEnv(&cfg); err != nil {
		return Client{}, err
	}
	return cfg, nil
}
