// Package config provides host configuration loaded from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/morezero/ipc-bridge/pkg/ipcmain"
)

const logPrefix = "config:LoadConfig"

// Config holds ipc-host configuration.
type Config struct {
	// COMMS: connect to standalone NATS at COMMSURL unless Embedded is set.
	COMMSURL  string `envconfig:"COMMS_URL" default:"nats://127.0.0.1:4222"`
	COMMSName string `envconfig:"SERVICE_NAME" default:"ipc-host"`

	// Embedded runs a NATS server in-process; COMMSURL is then ignored.
	Embedded     bool   `envconfig:"COMMS_EMBEDDED" default:"false"`
	EmbeddedHost string `envconfig:"COMMS_EMBEDDED_HOST" default:"127.0.0.1"`
	EmbeddedPort int    `envconfig:"COMMS_EMBEDDED_PORT" default:"4222"`

	SubjectPrefix string `envconfig:"IPC_SUBJECT_PREFIX" default:"ipc"`

	// Sender trust. A non-empty DevServerURL switches to development mode.
	DevServerURL  string `envconfig:"VITE_DEV_SERVER_URL"`
	AppScheme     string `envconfig:"IPC_APP_SCHEME" default:"app"`
	FailurePolicy string `envconfig:"IPC_FAILURE_POLICY" default:"asymmetric"`

	// Initial settings (empty = config/settings.json, settings.json, then built-in defaults)
	SettingsFile string `envconfig:"IPC_SETTINGS_FILE"`

	// HTTP health endpoint; port 0 disables it.
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Policy returns the parsed IPC_FAILURE_POLICY.
func (c *Config) Policy() (ipcmain.Policy, error) {
	return ipcmain.ParsePolicy(c.FailurePolicy)
}

// Validate checks the config before the host starts serving.
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("%s - IPC_FAILURE_POLICY: %w", logPrefix, err)
	}
	if c.AppScheme == "" || strings.ContainsAny(c.AppScheme, ":/ ") {
		return fmt.Errorf("%s - IPC_APP_SCHEME %q is not a bare scheme", logPrefix, c.AppScheme)
	}
	if c.SubjectPrefix == "" {
		return fmt.Errorf("%s - IPC_SUBJECT_PREFIX must not be empty", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	if c.HTTPPort < 0 {
		return fmt.Errorf("%s - HTTP_PORT must not be negative", logPrefix)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s - LOG_FORMAT %q must be text or json", logPrefix, c.LogFormat)
	}
	return nil
}
