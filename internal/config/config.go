package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Addr      string `envconfig:"ADDR" default:":8080"`
	DBDSN     string `envconfig:"DB_DSN" validate:"required"`
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// Shared secret Meta echoes back during the webhook verify handshake.
	MetaVerifyToken string `envconfig:"META_VERIFY_TOKEN" validate:"required"`

	SessionSecret string `envconfig:"SESSION_SECRET" validate:"required"`
	SecureCookies bool   `envconfig:"SECURE_COOKIES" default:"false"`

	InstagramClientID     string `envconfig:"INSTAGRAM_CLIENT_ID" validate:"required"`
	InstagramClientSecret string `envconfig:"INSTAGRAM_CLIENT_SECRET" validate:"required"`
	InstagramRedirectURI  string `envconfig:"INSTAGRAM_REDIRECT_URI" validate:"required,url"`

	// HistoryLimit caps how many stored webhook messages are loaded per refresh.
	HistoryLimit int `envconfig:"HISTORY_LIMIT" default:"100"`
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
