package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

const (
	DefaultServerPort     = "8081"
	DefaultTaskQueue      = "optimizer-task-queue"
	DefaultChatModel      = "openai/gpt-4o-mini"
	DefaultChatURL        = "https://openrouter.ai/api/v1/chat/completions"
	DefaultAirtableURL    = "https://api.airtable.com"
	DefaultArticlesTable  = "Articles"
	DefaultStoreCacheSize = 1000
)

type Config struct {
	ServerPort     string `validate:"required,numeric"`
	LogLevel       string `validate:"oneof=debug info warn error"`
	Temporal       TemporalConfig
	ProgressDelay  time.Duration `validate:"gte=0"`
	Chat           ChatConfig
	Articles       ArticlesConfig
	Redis          RedisConfig
	StoreCacheSize int64 `validate:"gt=0"`
}

type TemporalConfig struct {
	HostPort  string `validate:"required,hostname_port"`
	Namespace string
	APIKey    string
	TaskQueue string `validate:"required"`
}

// ChatConfig configures the OpenRouter chat completions client
type ChatConfig struct {
	APIKey  string
	Model   string        `validate:"required"`
	URL     string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// ArticlesConfig configures the Airtable article source
type ArticlesConfig struct {
	Token    string
	BaseID   string
	Table    string        `validate:"required"`
	URL      string        `validate:"required,url"`
	CacheTTL time.Duration `validate:"gt=0"`
}

// RedisConfig is optional; an empty Addr selects the in-process store
type RedisConfig struct {
	Addr     string `validate:"omitempty,hostname_port"`
	Password string
	DB       int `validate:"gte=0"`
}

var validate = validator.New()

// LoadDotEnv loads the first .env file found next to the binary or in the
// project root. The file is optional.
func LoadDotEnv() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
		filepath.Join("..", "..", ".env"),
	}

	for _, envPath := range envPaths {
		if err := godotenv.Load(envPath); err == nil {
			slog.Info("Loaded .env file", "path", envPath)
			return
		}
	}
	slog.Info("No .env file found, using environment variables or defaults")
}

// Load reads the configuration from the environment, applying defaults, and validates it
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		ServerPort: getEnv("SERVER_PORT", DefaultServerPort),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Temporal: TemporalConfig{
			HostPort:  getEnv("TEMPORAL_HOST_PORT", client.DefaultHostPort),
			Namespace: os.Getenv("TEMPORAL_NAMESPACE"),
			APIKey:    os.Getenv("TEMPORAL_API_KEY"),
			TaskQueue: getEnv("TASK_QUEUE", DefaultTaskQueue),
		},
		ProgressDelay: getDurationEnv("PROGRESS_DELAY", 0, &errs),
		Chat: ChatConfig{
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			Model:   getEnv("OPENROUTER_MODEL", DefaultChatModel),
			URL:     getEnv("OPENROUTER_URL", DefaultChatURL),
			Timeout: getDurationEnv("CHAT_TIMEOUT", 30*time.Second, &errs),
		},
		Articles: ArticlesConfig{
			Token:    os.Getenv("AIRTABLE_TOKEN"),
			BaseID:   os.Getenv("AIRTABLE_BASE_ID"),
			Table:    getEnv("AIRTABLE_TABLE", DefaultArticlesTable),
			URL:      getEnv("AIRTABLE_URL", DefaultAirtableURL),
			CacheTTL: getDurationEnv("ARTICLES_CACHE_TTL", time.Hour, &errs),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntEnv("REDIS_DB", 0, &errs),
		},
		StoreCacheSize: int64(getIntEnv("STORE_CACHE_SIZE", DefaultStoreCacheSize, &errs)),
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer: %w", key, err))
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration: %w", key, err))
		return defaultValue
	}
	return value
}
