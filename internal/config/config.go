// Package config loads server configuration from the environment, with
// an optional .env file for development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr       string
	DBPath     string
	Protocol   string
	ServerName string
	SigningKey string
	LogLevel   string
	CacheSize  int
}

// Load reads configuration, applying development defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:       getenv("MODVAULT_ADDR", ":8080"),
		DBPath:     getenv("MODVAULT_DB", "dev.db"),
		Protocol:   getenv("MODVAULT_PROTOCOL", "http://"),
		ServerName: getenv("MODVAULT_SERVER_NAME", "localhost:8080"),
		SigningKey: getenv("MODVAULT_SIGNING_KEY", "dev-signing-key"),
		LogLevel:   getenv("MODVAULT_LOG_LEVEL", "info"),
		CacheSize:  getenvInt("MODVAULT_CACHE_SIZE", 256),
	}
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
