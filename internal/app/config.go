package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	BackendBaseURL string        `envconfig:"BACKEND_BASE_URL" default:"https://vedaro.in/api"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	ScanDebounce       time.Duration `envconfig:"SCAN_DEBOUNCE" default:"1s"`
	ScanNoticeTTL      time.Duration `envconfig:"SCAN_NOTICE_TTL" default:"1200ms"`
	ScanSessionIdleTTL time.Duration `envconfig:"SCAN_SESSION_IDLE_TTL" default:"30m"`

	HistoryCacheTTL time.Duration `envconfig:"HISTORY_CACHE_TTL" default:"5m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.BackendBaseURL == "" {
		return nil, errors.New("backend base url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
