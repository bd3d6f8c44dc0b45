// Package config loads environment configuration and the widget file for Knobicon.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "KNOBICON"

const defaultDataDir = "./data"

// Config holds runtime configuration values.
type Config struct {
	ListenAddr      string `envconfig:"LISTEN_ADDR" default:"0.0.0.0:8787"`
	DataDir         string `envconfig:"DATA_DIR" default:"./data"`
	UIPassword      string `envconfig:"UI_PASSWORD"`
	PasswordMode    bool   `envconfig:"PASSWORD_MODE" default:"true"`
	WidgetFile      string `envconfig:"WIDGET_FILE"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string `envconfig:"LOG_FORMAT" default:"text"`
	MJPEGIntervalMs int    `envconfig:"MJPEG_INTERVAL_MS" default:"40"`
	MJPEGQuality    int    `envconfig:"MJPEG_QUALITY" default:"80"`
	WatchAssets     bool   `envconfig:"WATCH_ASSETS" default:"true"`
}

// Load reads <data dir>/.env and then KNOBICON_* environment variables.
// Variables already present in the environment win over the .env file.
func Load() (Config, error) {
	dataDir := strings.TrimSpace(os.Getenv(EnvPrefix + "_DATA_DIR"))
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	cfg.UIPassword = strings.TrimSpace(cfg.UIPassword)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if cfg.WidgetFile == "" {
		cfg.WidgetFile = filepath.Join(cfg.DataDir, "widget.yaml")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and required settings.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if c.PasswordMode && c.UIPassword == "" {
		return errors.New("UI_PASSWORD is required when PASSWORD_MODE is on")
	}
	if c.MJPEGIntervalMs < 0 {
		return fmt.Errorf("MJPEG_INTERVAL_MS must be >= 0")
	}
	if c.MJPEGQuality <= 0 || c.MJPEGQuality > 100 {
		return fmt.Errorf("MJPEG_QUALITY must be 1-100")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}
