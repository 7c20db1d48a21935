package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	CORSOrigin  string

	// Assistant provider
	AssistantAPIKey  string
	AssistantModel   string
	AssistantTimeout time.Duration

	// Redis (assistant rate limiting) — optional
	RedisURL           string
	AssistantRateLimit int

	// Meilisearch — optional
	MeiliURL       string
	MeiliMasterKey string
}

// Load reads configuration from the environment. The signing secret, the
// database connection string, and the assistant credential are required;
// all missing required variables are reported together so startup fails once
// with the full list.
func Load() (Config, error) {
	cfg := Config{
		Addr:               getenv("API_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("TASKAI_JWT_SECRET"),
		CORSOrigin:         getenv("TASKAI_CORS_ORIGIN", "*"),
		AssistantAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AssistantModel:     getenv("TASKAI_ASSISTANT_MODEL", "claude-3-5-haiku-latest"),
		AssistantTimeout:   time.Duration(getenvInt("TASKAI_ASSISTANT_TIMEOUT_SECONDS", 10)) * time.Second,
		RedisURL:           os.Getenv("REDIS_URL"),
		AssistantRateLimit: getenvInt("TASKAI_ASSISTANT_RATE_LIMIT", 10),
		MeiliURL:           os.Getenv("MEILI_URL"),
		MeiliMasterKey:     os.Getenv("MEILI_MASTER_KEY"),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "TASKAI_JWT_SECRET")
	}
	if cfg.AssistantAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
