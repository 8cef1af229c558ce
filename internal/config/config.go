// Package config provides configuration for the orchestrator.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the orchestrator configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Notification consumer
	NotifyURL string

	// Provider gateway
	GatewayURL     string
	GatewayAPIKey  string
	CostPerKTokens float64

	// Dialogue defaults
	MaxRounds         int
	TokenBudget       int
	CostBudget        float64
	ContextTokenLimit int
	KeepRecent        int

	// Timeouts
	TurnTimeout time.Duration

	// Roster
	RosterFile string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:       getEnv("DATABASE_URL", "file:roundtable.db?cache=shared&mode=rwc"),
		NotifyURL:         getEnv("NOTIFY_URL", ""),
		GatewayURL:        getEnv("GATEWAY_URL", "http://localhost:4000"),
		GatewayAPIKey:     getEnv("GATEWAY_API_KEY", ""),
		CostPerKTokens:    getEnvFloat("COST_PER_K_TOKENS", 0.002),
		MaxRounds:         getEnvInt("MAX_ROUNDS", 5),
		TokenBudget:       getEnvInt("TOKEN_BUDGET", 50000),
		CostBudget:        getEnvFloat("COST_BUDGET", 1.0),
		ContextTokenLimit: getEnvInt("CONTEXT_TOKEN_LIMIT", 6000),
		KeepRecent:        getEnvInt("KEEP_RECENT_MESSAGES", 4),
		TurnTimeout:       time.Duration(getEnvInt("TURN_TIMEOUT_MS", 60000)) * time.Millisecond,
		RosterFile:        getEnv("ROSTER_FILE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
