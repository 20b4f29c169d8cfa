// Package config loads bot configuration from environment variables.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all bot configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort    int    `envconfig:"HTTP_PORT" default:"8080"`

	// Matrix account
	HomeserverURL string `envconfig:"MATRIX_HOMESERVER_URL" required:"true"`
	AccessToken   string `envconfig:"MATRIX_ACCESS_TOKEN" required:"true"`
	UserID        string `envconfig:"MATRIX_USER_ID" required:"true"`
	DeviceID      string `envconfig:"MATRIX_DEVICE_ID"`

	// Command handling
	Prefix    string `envconfig:"BOT_PREFIX" default:"!"`
	DataDir   string `envconfig:"BOT_DATA_DIR" default:"./data"`
	StorePath string `envconfig:"BOT_STORE_PATH"`
	AliasFile string `envconfig:"BOT_ALIAS_FILE"`

	// Admin API (disabled unless an API key is set)
	AdminListenAddr string `envconfig:"ADMIN_LISTEN_ADDR" default:":8090"`
	AdminAPIKey     string `envconfig:"ADMIN_API_KEY"`
}

// BotStorePath returns the JSON store path, defaulting under DataDir.
func (c *Config) BotStorePath() string {
	if c.StorePath != "" {
		return c.StorePath
	}
	return filepath.Join(c.DataDir, "bot-store.json")
}

// AdminEnabled returns true if the admin API should be served.
func (c *Config) AdminEnabled() bool {
	return c.AdminAPIKey != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}
