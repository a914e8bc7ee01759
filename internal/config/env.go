package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables overriding the YAML settings.
const (
	EnvPostgresDSN   = "GHC_POSTGRES_DSN"
	EnvRedisAddr     = "GHC_REDIS_ADDR"
	EnvRedisPassword = "GHC_REDIS_PASSWORD"
	EnvRedisDB       = "GHC_REDIS_DB"
	EnvKafkaBrokers  = "GHC_KAFKA_BROKERS"
	EnvLogLevel      = "GHC_LOG_LEVEL"
)

// loadDotEnv loads variables from a .env file if it exists.
// Variables already present in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("stat env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}

// applyEnv overrides settings with non-empty environment variables.
func applyEnv(cfg *Config) {
	cfg.Postgres.DSN = getEnv(EnvPostgresDSN, cfg.Postgres.DSN)
	cfg.Redis.Addr = getEnv(EnvRedisAddr, cfg.Redis.Addr)
	cfg.Redis.Password = getEnv(EnvRedisPassword, cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt(EnvRedisDB, cfg.Redis.DB)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)

	if brokers := getEnv(EnvKafkaBrokers, ""); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}

	return defaultValue
}

// splitList splits a comma separated list dropping empty items.
func splitList(value string) []string {
	var result []string

	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}

	return result
}
