package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Auth   AuthConfig
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port int
}

// RedisConfig holds the key-value store configuration. An empty Addr selects
// the in-memory store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds the Telegram bot credentials used to verify init data
type AuthConfig struct {
	BotToken string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			BotToken: getEnv("BOT_TOKEN", ""),
		},
	}
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
