package common

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/lease-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	AppName string
	Server  ServerConfig
	LLM     LLMConfig
	History HistoryConfig
	Log     LogConfig
}

// ServerConfig holds HTTP/gRPC listener configuration
type ServerConfig struct {
	Port            string
	GRPCHealthAddr  string // empty disables the gRPC health listener
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// LLMConfig holds completion-provider configuration
type LLMConfig struct {
	Provider      constants.Provider
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string
	Temperature   float32
	MaxTokens     int
	Timeout       time.Duration
}

// HistoryConfig holds extraction-history storage configuration
type HistoryConfig struct {
	Driver    constants.HistoryDriver
	DSN       string
	Workers   int
	QueueSize int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level         string
	Format        string // "text" (tint) or "json"
	FluentEnabled bool
	FluentHost    string
	FluentPort    int
}

// LoadDotEnv preloads variables from the given .env files (default ".env").
// A missing file is not an error; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return WrapError(err, "load "+p)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	provider, ok := constants.ParseProvider(getEnv("LLM_PROVIDER", string(constants.ProviderOpenAI)))
	if !ok {
		provider = constants.Provider(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	}
	driver, ok := constants.ParseHistoryDriver(os.Getenv("HISTORY_DRIVER"))
	if !ok {
		driver = constants.HistoryDriver(strings.TrimSpace(os.Getenv("HISTORY_DRIVER")))
	}

	return &Config{
		AppName: getEnv("APP_NAME", "address_extractor"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			GRPCHealthAddr:  getEnv("GRPC_HEALTH_ADDR", ""),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		LLM: LLMConfig{
			Provider:      provider,
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			GeminiKey:     getEnv("GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Temperature:   getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 5000),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		},
		History: HistoryConfig{
			Driver:    driver,
			DSN:       getEnv("HISTORY_DSN", ""),
			Workers:   getEnvAsInt("HISTORY_WORKERS", 2),
			QueueSize: getEnvAsInt("HISTORY_QUEUE_SIZE", 128),
		},
		Log: LogConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			Format:        getEnv("LOG_FORMAT", "text"),
			FluentEnabled: getEnvAsBool("FLUENTBIT_ENABLED", false),
			FluentHost:    getEnv("FLUENTBIT_HOST", ""),
			FluentPort:    getEnvAsInt("FLUENTBIT_PORT", 24224),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return NewAppError("CONFIG_ERROR", "PORT is required", ErrInvalidInput)
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return NewAppError("CONFIG_ERROR", "PORT must be numeric", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case constants.ProviderOpenAI:
		if c.LLM.OpenAIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY environment variable is not set", ErrInvalidInput)
		}
	case constants.ProviderGemini:
		if c.LLM.GeminiKey == "" {
			return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY environment variable is not set", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be openai or gemini", ErrInvalidInput)
	}
	if c.LLM.MaxTokens <= 0 {
		return NewAppError("CONFIG_ERROR", "LLM_MAX_TOKENS must be positive", ErrInvalidInput)
	}
	switch c.History.Driver {
	case constants.HistoryNone:
	case constants.HistorySQLite, constants.HistoryPostgres:
		if c.History.DSN == "" {
			return NewAppError("CONFIG_ERROR", "HISTORY_DSN is required when HISTORY_DRIVER is set", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "HISTORY_DRIVER must be none, sqlite or postgres", ErrInvalidInput)
	}
	if c.Log.FluentEnabled && c.Log.FluentHost == "" {
		return NewAppError("CONFIG_ERROR", "FLUENTBIT_HOST is required when FLUENTBIT_ENABLED is true", ErrInvalidInput)
	}
	return nil
}
