package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is populated from the environment. A .env file in the working
// directory is loaded first when present.
type Config struct {
	Host string `env:"HOST" env-default:"0.0.0.0"`
	Port string `env:"PORT" env-default:"8080"`

	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret string        `env:"JWT_SECRET_KEY" env-default:"dev-secret-key-change-in-production"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" env-default:"24h"`

	ModelPath         string `env:"MODEL_PATH" env-default:"models/brain_efficientnet.onnx"`
	ModelMetadataPath string `env:"MODEL_METADATA_PATH" env-default:"models/brain_efficientnet.json"`
	UsePlaceholder    bool   `env:"USE_PLACEHOLDER_MODEL" env-default:"false"`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" env-default:"16777216"`
}

func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
