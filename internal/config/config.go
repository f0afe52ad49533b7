package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the main application configuration
type Config struct {
	ServerPort int           `json:"server_port"`
	DataDir    string        `json:"data_dir"`
	Gemini     GeminiConfig  `json:"gemini"`
	History    HistoryConfig `json:"history"`
	Events     EventsConfig  `json:"events"`
	Auth       AuthConfig    `json:"auth"`
}

// GeminiConfig holds credentials and tuning for the Gemini completion backend
type GeminiConfig struct {
	APIKey          string        `json:"api_key"`
	Endpoint        string        `json:"endpoint"`
	Model           string        `json:"model"`
	RequestTimeout  time.Duration `json:"request_timeout"`
	MaxPromptTokens int           `json:"max_prompt_tokens"`
}

// HistoryConfig controls the per-user analysis history window
type HistoryConfig struct {
	DefaultLimit int `json:"default_limit"`
}

// EventsConfig controls the optional Kafka event stream
type EventsConfig struct {
	Enable  bool     `json:"enable"`
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
}

// AuthConfig holds secrets for the identity shim
type AuthConfig struct {
	JWTSecret     string `json:"-"`
	SessionSecret string `json:"-"`
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		DataDir:    getEnv("DATA_DIR", ""),
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Endpoint:        getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta"),
			Model:           getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			RequestTimeout:  time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
			MaxPromptTokens: getEnvInt("PROMPT_TOKEN_LIMIT", 100000),
		},
		History: HistoryConfig{
			DefaultLimit: getEnvInt("HISTORY_LIMIT", 5),
		},
		Events: EventsConfig{
			Enable:  getEnvBool("KAFKA_ENABLE", false),
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "codeclinic-events"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
			SessionSecret: getEnv("SESSION_SECRET", "change-me-too-in-production"),
		},
	}
}

// Validate checks that the configuration is usable before the server starts
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port: %d", c.ServerPort)
	}
	if c.Gemini.RequestTimeout < time.Second {
		return fmt.Errorf("gemini request timeout must be at least 1 second")
	}
	if c.History.DefaultLimit < 1 {
		return fmt.Errorf("history limit must be at least 1")
	}
	if c.Events.Enable && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLE is set")
	}
	return nil
}

// getEnv retrieves environment variable with fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves boolean environment variable with fallback
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvInt retrieves integer environment variable with fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
