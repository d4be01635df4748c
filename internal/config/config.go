package config

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config is the client's environment configuration.
type Config struct {
	APIBaseURL string `env:"ATURMATION_API_URL, default=http://localhost:5000/api"`
	LogLevel   string `env:"ATURMATION_LOG_LEVEL, default=info"`
	LogFile    string `env:"ATURMATION_LOG_FILE"`
	PageSize   int    `env:"ATURMATION_PAGE_SIZE, default=20"`
}

// Load reads configuration from the environment, preloading a .env file
// from the working directory when one exists.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load() // absent .env is fine

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 20
	}
	return &cfg, nil
}
