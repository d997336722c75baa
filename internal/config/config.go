// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	JWTSecretKey string
	Environment  string
	LogLevel     string

	// AI provider (any OpenAI-compatible endpoint)
	AIAPIKey             string
	AIBaseURL            string
	AIModel              string
	AIMaxTokens          int
	AITemperature        float32
	AITimeout            time.Duration
	AIMaxContextMessages int
	SystemPrompt         string

	// Chat behaviour
	MaxMessageLength int
	SimulateLatency  bool

	// Storage: "sqlite" (default), "redis" or "memory"
	StorageDriver string
	SQLitePath    string
	RedisURL      string
}

const defaultSystemPrompt = "You are a friendly and professional AI assistant. Answer the user's questions concisely and accurately."

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	cfg, err := New()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// New is Load without the fatal exit, for callers that want to handle the error.
func New() (*Config, error) {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}
	return fromEnv(env)
}

func fromEnv(env string) (*Config, error) {
	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		JWTSecretKey: getEnv("JWT_SECRET_KEY", "dev-secret-change-me"),
		Environment:  env,
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		AIAPIKey:             getEnv("AI_API_KEY", ""),
		AIBaseURL:            getEnv("AI_BASE_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
		AIModel:              getEnv("AI_MODEL", "qwen-turbo"),
		AIMaxTokens:          getEnvAsInt("AI_MAX_TOKENS", 2000),
		AITemperature:        getEnvAsFloat("AI_TEMPERATURE", 0.7),
		AITimeout:            getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
		AIMaxContextMessages: getEnvAsInt("AI_MAX_CONTEXT_MESSAGES", 10),
		SystemPrompt:         getEnv("AI_SYSTEM_PROMPT", defaultSystemPrompt),

		MaxMessageLength: getEnvAsInt("CHAT_MAX_MESSAGE_LENGTH", 2000),
		SimulateLatency:  getEnvAsBool("CHAT_SIMULATE_LATENCY", false),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
		SQLitePath:    getEnv("SQLITE_PATH", "aichat.db"),
		RedisURL:      getEnv("REDIS_URL", ""),
	}

	switch cfg.StorageDriver {
	case "":
		cfg.StorageDriver = "sqlite"
	case "sqlite", "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORAGE_DRIVER=redis")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if os.Getenv("JWT_SECRET_KEY") == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.AIAPIKey == "" {
			missing = append(missing, "AI_API_KEY")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("missing required production environment variables: %v", missing)
		}
	}

	return cfg, nil
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float32) float32 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strValue, 32)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as float. Using default value.", key)
		return defaultValue
	}
	return float32(f)
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}

// getEnvAsDuration accepts Go durations ("45s") or a bare number of milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}
