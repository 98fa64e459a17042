// Package config loads server configuration from the environment. A
// single Config is built at process start and threaded through
// explicitly; nothing reads the environment after startup.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr  string `env:"OPS_ADDR" envDefault:":8080"`
	AppID string `env:"OPS_APP_ID" envDefault:"syrix-pro-ops"`
	Debug bool   `env:"OPS_DEBUG"`

	// Empty DatabaseURL selects the in-memory store; empty RedisURL
	// selects the in-process change bus.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	GeminiBaseURL string `env:"GEMINI_API_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`

	AssetsBaseURL string `env:"ASSETS_API_URL" envDefault:"https://valorant-api.com/v1"`
}

func Load() (Config, error) {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
