package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the console runtime configuration.
type Config struct {
	APIBaseURL         string        `yaml:"api_base_url"`
	PushURL            string        `yaml:"push_url"`
	OperatorToken      string        `yaml:"operator_token"`
	TokenSecret        string        `yaml:"token_secret"`
	HTTPAddr           string        `yaml:"http_addr"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	PushReconnectDelay time.Duration `yaml:"push_reconnect_delay"`
	LiveEmergencyLimit int           `yaml:"live_emergency_limit"`
	ExportDir          string        `yaml:"export_dir"`
}

// Load builds the configuration from defaults, an optional yaml file
// named by CONSOLE_CONFIG, and env overrides in that order.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:         getenvDefault("CONSOLE_API_BASE_URL", "http://localhost:9090"),
		PushURL:            getenvDefault("CONSOLE_PUSH_URL", "ws://localhost:9090/ws"),
		OperatorToken:      os.Getenv("CONSOLE_OPERATOR_TOKEN"),
		TokenSecret:        getenvDefault("CONSOLE_TOKEN_SECRET", "dev-secret"),
		HTTPAddr:           getenvDefault("CONSOLE_HTTP_ADDR", ":8080"),
		RequestTimeout:     getenvDurationDefault("CONSOLE_REQUEST_TIMEOUT", 10*time.Second),
		PushReconnectDelay: getenvDurationDefault("CONSOLE_PUSH_RECONNECT_DELAY", 3*time.Second),
		LiveEmergencyLimit: getenvIntDefault("CONSOLE_LIVE_EMERGENCY_LIMIT", 4),
		ExportDir:          getenvDefault("CONSOLE_EXPORT_DIR", "var/exports"),
	}

	if path := os.Getenv("CONSOLE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.APIBaseURL == "" {
		return cfg, errors.New("config: api base url required")
	}
	if cfg.PushURL == "" {
		return cfg, errors.New("config: push url required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDurationDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
