package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// Default Gemini generateContent endpoint base
	defaultGeminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel  = "gemini-2.5-flash"
	defaultAddress      = ":8000"
	defaultPollInterval = time.Second
)

// Config holds application configuration
type Config struct {
	Address           string
	GeminiAPIURL      string
	GeminiAPIKey      string
	GeminiModel       string
	DBPath            string
	EventPollInterval time.Duration
}

// globalConfig holds the application configuration instance
var globalConfig *Config

// Initialize sets up the configuration from environment variables
func Initialize() {
	globalConfig = &Config{
		Address:           getEnv("ECOFOOD_ADDR", defaultAddress),
		GeminiAPIURL:      getEnv("GEMINI_API_URL", defaultGeminiAPIURL),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", defaultGeminiModel),
		DBPath:            os.Getenv("ECOFOOD_DB_PATH"),
		EventPollInterval: getDurationEnv("ECOFOOD_EVENT_POLL_MS", defaultPollInterval),
	}
}

// Get returns the global configuration instance
func Get() *Config {
	if globalConfig == nil {
		Initialize()
	}
	return globalConfig
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getDurationEnv reads a millisecond count from the environment
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	ms, err := strconv.Atoi(val)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
