// Package config defines environment configuration structs and loaders.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	ServerEnvConfig
	ClientEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerEnvConfig holds the robustness API server settings.
type ServerEnvConfig struct {
	ServerHost string `env:"RAPID_HOST" envDefault:"0.0.0.0"`
	ServerPort int    `env:"RAPID_PORT" envDefault:"8080"`
}

// ClientEnvConfig holds the robustness API client settings.
type ClientEnvConfig struct {
	APIBaseURL    string        `env:"RAPID_API_URL" envDefault:"http://127.0.0.1:8080"`
	ClientTimeout time.Duration `env:"RAPID_CLIENT_TIMEOUT" envDefault:"30s"`
	ClientRetries int           `env:"RAPID_CLIENT_RETRIES" envDefault:"3"`
}
