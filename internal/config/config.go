package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port          int    `envconfig:"PORT" default:"8080"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"http://127.0.0.1:3000"`
	StoreID       string `envconfig:"STORE_ID" default:"main-shop"`

	// DatabaseURL selects the postgres snapshot store; when empty the
	// in-memory store is used, persisted to SnapshotFile if set.
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	SnapshotFile string `envconfig:"SNAPSHOT_FILE"`
	SeedDemo     bool   `envconfig:"SEED_DEMO_DATA" default:"false"`

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET"`
		TokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"8h"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}
