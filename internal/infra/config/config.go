package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	PracticumToken    string
	PracticumEndpoint string
	TelegramToken     string
	TelegramChatID    int64

	RetryPeriod time.Duration
	HTTPTimeout time.Duration

	LogLevel      string
	Environment   string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int

	DatabaseURL        string // Optional, enables the delivery journal
	HealthAddr         string // Optional, enables /healthz and /stats
	BotCommandsEnabled bool
}

// Load reads configuration from environment variables and .env file (if present).
// Missing required values are reported together in one error.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var missing []string

	cfg.PracticumToken = os.Getenv("PRACTICUM_TOKEN")
	if cfg.PracticumToken == "" {
		cfg.PracticumToken = os.Getenv("PRAKTIKUM_TOKEN")
	}
	if cfg.PracticumToken == "" {
		missing = append(missing, "PRACTICUM_TOKEN")
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}

	chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
	if chatIDStr == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}

	var err error
	cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	cfg.PracticumEndpoint = os.Getenv("PRACTICUM_ENDPOINT") // Empty means practicum.DefaultEndpoint

	if cfg.RetryPeriod, err = secondsEnv("RETRY_PERIOD_SECONDS", 300); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = secondsEnv("HTTP_TIMEOUT_SECONDS", 10); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.LogFile = os.Getenv("LOG_FILE")
	if cfg.LogFile == "" {
		cfg.LogFile = "homework.log"
	}
	if cfg.LogMaxSizeMB, err = intEnv("LOG_MAX_SIZE_MB", 50); err != nil {
		return nil, err
	}
	if cfg.LogMaxBackups, err = intEnv("LOG_MAX_BACKUPS", 5); err != nil {
		return nil, err
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.HealthAddr = os.Getenv("HEALTH_ADDR")

	if v := os.Getenv("BOT_COMMANDS_ENABLED"); v != "" {
		cfg.BotCommandsEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BOT_COMMANDS_ENABLED: %w", err)
		}
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func secondsEnv(key string, def int) (time.Duration, error) {
	n, err := intEnv(key, def)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
