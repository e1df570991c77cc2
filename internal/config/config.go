package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	apperrors "github.com/xcvr48/pixifull/internal/core/errors"
)

// RequiredPlatformVars names the environment variables of which at
// least one must be set to select a chat platform.
const RequiredPlatformVars = "DISCORD_TOKEN or TELEGRAM_TOKEN"

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// Exactly one platform is selected at startup; Discord wins when
	// both tokens are present.
	DiscordToken  string `env:"DISCORD_TOKEN"`
	TelegramToken string `env:"TELEGRAM_TOKEN"`

	RelayBaseURL string `env:"RELAY_BASE_URL" envDefault:"https://pixifull.xcvr48.workers.dev"`

	PixivBaseURL string        `env:"PIXIV_BASE_URL"`
	FetchRPS     float64       `env:"FETCH_RPS" envDefault:"2"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`

	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	// Relay process settings.
	RelayPort      int    `env:"RELAY_PORT" envDefault:"8081"`
	RelayOriginURL string `env:"RELAY_ORIGIN_URL"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Platform names the chat platform selected by the configured
// credentials. Fails when no token is present.
func (c *Config) Platform() (string, error) {
	switch {
	case c.DiscordToken != "":
		return "discord", nil
	case c.TelegramToken != "":
		return "telegram", nil
	default:
		return "", apperrors.ErrNoPlatformConfigured
	}
}
