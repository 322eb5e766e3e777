package testsupport

import (
	"os"
	"strconv"
	"testing"

	"marketpulse/internal/adapters/config"
)

// DatabaseConfigs bundles config sections required for integration tests.
type DatabaseConfigs struct {
	Postgres config.PostgresConfig
	Redis    config.RedisConfig
}

// LoadDatabaseConfigsFromEnv reads minimal configuration for integration tests.
// Tests are skipped in short mode or when required environment variables are missing.
func LoadDatabaseConfigsFromEnv(t *testing.T, required ...string) DatabaseConfigs {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	missing := make([]string, 0)
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		t.Skipf("integration environment missing, set %v to run", missing)
	}

	return DatabaseConfigs{
		Postgres: config.PostgresConfig{
			Host:     os.Getenv("TEST_POSTGRES_HOST"),
			Port:     intValue("TEST_POSTGRES_PORT", 5432),
			User:     os.Getenv("TEST_POSTGRES_USER"),
			Password: os.Getenv("TEST_POSTGRES_PASSWORD"),
			Database: os.Getenv("TEST_POSTGRES_DB"),
			SSLMode:  valueWithDefault("TEST_POSTGRES_SSL_MODE", "disable"),
			MaxConns: 4,
		},
		Redis: config.RedisConfig{
			Enabled:  true,
			Host:     os.Getenv("TEST_REDIS_HOST"),
			Port:     intValue("TEST_REDIS_PORT", 6379),
			Password: os.Getenv("TEST_REDIS_PASSWORD"),
			DB:       intValue("TEST_REDIS_DB", 15),
		},
	}
}

func valueWithDefault(key string, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func intValue(key string, fallback int) int {
	if parsed, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return parsed
	}
	return fallback
}
