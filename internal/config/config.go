package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	LogFormat string

	DBDriver    string
	DatabaseURL string
	RedisURL    string
	NatsURL     string
	CatalogPath string

	// RandomSeed pins every new prediction to the same seed when set
	RandomSeed *uint64

	AssistantEndpoint string
	AssistantAPIKey   string
	AssistantModel    string
	MicroserviceURL   string

	AnalysisCacheTTL time.Duration
	ShutdownTimeout  time.Duration
}

// Load reads configuration from the environment, after loading a .env file
// when one is present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		DBDriver:          getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:       getEnv("DATABASE_URL", "agropredict.db"),
		RedisURL:          getEnv("REDIS_URL", ""),
		NatsURL:           getEnv("NATS_URL", ""),
		CatalogPath:       getEnv("CATALOG_PATH", ""),
		AssistantEndpoint: getEnv("ASSISTANT_ENDPOINT", ""),
		AssistantAPIKey:   getEnv("ASSISTANT_API_KEY", ""),
		AssistantModel:    getEnv("ASSISTANT_MODEL", "gpt-4o-mini"),
		MicroserviceURL:   getEnv("MICROSERVICE_URL", "http://localhost:8001"),
	}

	var err error
	if cfg.AnalysisCacheTTL, err = getEnvDuration("ANALYSIS_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if v := os.Getenv("RANDOM_SEED"); v != "" {
		// seeds are stored in signed 64-bit columns
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || seed < 0 {
			return nil, fmt.Errorf("invalid RANDOM_SEED %q: want an integer in [0, %d]", v, int64(math.MaxInt64))
		}
		u := uint64(seed)
		cfg.RandomSeed = &u
	}

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
