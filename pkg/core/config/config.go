// Package config reads service settings from the environment. godotenv is
// loaded by the entrypoint before this runs.
package config

import (
	"os"
	"strconv"
)

// Config holds the service-level settings.
type Config struct {
	Port string

	// Decision thresholds used by the deterministic engines.
	AutoApprovalThreshold float64
	HighRiskThreshold     float64

	LogLevel string

	// DatabaseURL is optional; without it the API runs without persistence.
	DatabaseURL string

	// ModelConfigPath points at the per-agent provider configuration.
	ModelConfigPath string

	// StrictAgentSplit keeps the premium calculator agent's worked-example
	// split for its known total instead of a proportional distribution.
	StrictAgentSplit bool
}

// Load reads the configuration from environment variables, applying
// defaults for anything unset.
func Load() Config {
	return Config{
		Port:                  envOr("PORT", "8000"),
		AutoApprovalThreshold: envFloat("AUTO_APPROVAL_THRESHOLD", 0.7),
		HighRiskThreshold:     envFloat("HIGH_RISK_THRESHOLD", 0.3),
		LogLevel:              envOr("LOG_LEVEL", "info"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		ModelConfigPath:       envOr("MODEL_CONFIG_PATH", "config/models.yaml"),
		StrictAgentSplit:      envBool("STRICT_AGENT_SPLIT", true),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
