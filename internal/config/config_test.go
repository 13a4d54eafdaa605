package config

import (
	"os"
	"testing"
	"time"

	"github.com/morezero/ipc-bridge/pkg/ipcmain"
)

var configEnvVars = []string{
	"COMMS_URL", "SERVICE_NAME",
	"COMMS_EMBEDDED", "COMMS_EMBEDDED_HOST", "COMMS_EMBEDDED_PORT",
	"IPC_SUBJECT_PREFIX", "VITE_DEV_SERVER_URL", "IPC_APP_SCHEME", "IPC_FAILURE_POLICY",
	"IPC_SETTINGS_FILE", "HTTP_PORT", "HEALTH_CHECK_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, env := range configEnvVars {
		os.Unsetenv(env)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.COMMSURL != "nats://127.0.0.1:4222" {
		t.Errorf("config:config_test - COMMSURL = %q, want %q", cfg.COMMSURL, "nats://127.0.0.1:4222")
	}
	if cfg.COMMSName != "ipc-host" {
		t.Errorf("config:config_test - COMMSName = %q, want %q", cfg.COMMSName, "ipc-host")
	}
	if cfg.Embedded {
		t.Error("config:config_test - expected Embedded=false by default")
	}
	if cfg.EmbeddedHost != "127.0.0.1" || cfg.EmbeddedPort != 4222 {
		t.Errorf("config:config_test - embedded listener = %s:%d, want 127.0.0.1:4222", cfg.EmbeddedHost, cfg.EmbeddedPort)
	}
	if cfg.SubjectPrefix != "ipc" {
		t.Errorf("config:config_test - SubjectPrefix = %q, want ipc", cfg.SubjectPrefix)
	}
	if cfg.DevServerURL != "" {
		t.Errorf("config:config_test - DevServerURL = %q, want empty", cfg.DevServerURL)
	}
	if cfg.AppScheme != "app" {
		t.Errorf("config:config_test - AppScheme = %q, want app", cfg.AppScheme)
	}
	if cfg.SettingsFile != "" {
		t.Errorf("config:config_test - SettingsFile = %q, want empty", cfg.SettingsFile)
	}
	if cfg.FailurePolicy != "asymmetric" {
		t.Errorf("config:config_test - FailurePolicy = %q, want asymmetric", cfg.FailurePolicy)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("config:config_test - HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.HealthCheckTimeout != 5*time.Second {
		t.Errorf("config:config_test - HealthCheckTimeout = %v, want 5s", cfg.HealthCheckTimeout)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("config:config_test - logging = %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config:config_test - defaults should validate: %v", err)
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	overrides := map[string]string{
		"COMMS_URL":            "nats://custom:4222",
		"SERVICE_NAME":         "test-host",
		"COMMS_EMBEDDED":       "true",
		"COMMS_EMBEDDED_PORT":  "14222",
		"IPC_SUBJECT_PREFIX":   "desk",
		"VITE_DEV_SERVER_URL":  "http://localhost:5173",
		"IPC_APP_SCHEME":       "bundle",
		"IPC_FAILURE_POLICY":   "contain-all",
		"IPC_SETTINGS_FILE":    "/tmp/settings.json",
		"HTTP_PORT":            "9090",
		"HEALTH_CHECK_TIMEOUT": "10s",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "json",
	}
	for key, val := range overrides {
		os.Setenv(key, val)
	}
	defer func() {
		for key := range overrides {
			os.Unsetenv(key)
		}
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.COMMSURL != "nats://custom:4222" {
		t.Errorf("config:config_test - COMMSURL = %q, want %q", cfg.COMMSURL, "nats://custom:4222")
	}
	if cfg.COMMSName != "test-host" {
		t.Errorf("config:config_test - COMMSName = %q, want %q", cfg.COMMSName, "test-host")
	}
	if !cfg.Embedded || cfg.EmbeddedPort != 14222 {
		t.Errorf("config:config_test - embedded = %v:%d, want true:14222", cfg.Embedded, cfg.EmbeddedPort)
	}
	if cfg.SubjectPrefix != "desk" {
		t.Errorf("config:config_test - SubjectPrefix = %q, want desk", cfg.SubjectPrefix)
	}
	if cfg.DevServerURL != "http://localhost:5173" {
		t.Errorf("config:config_test - DevServerURL = %q", cfg.DevServerURL)
	}
	if cfg.AppScheme != "bundle" {
		t.Errorf("config:config_test - AppScheme = %q, want bundle", cfg.AppScheme)
	}
	if cfg.SettingsFile != "/tmp/settings.json" {
		t.Errorf("config:config_test - SettingsFile = %q", cfg.SettingsFile)
	}
	p, err := cfg.Policy()
	if err != nil || p != ipcmain.PolicyContainAll {
		t.Errorf("config:config_test - Policy() = %v, %v; want contain-all", p, err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("config:config_test - HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.HealthCheckTimeout != 10*time.Second {
		t.Errorf("config:config_test - HealthCheckTimeout = %v, want 10s", cfg.HealthCheckTimeout)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("config:config_test - logging = %q/%q, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	os.Setenv("HTTP_PORT", "not-a-port")
	defer os.Unsetenv("HTTP_PORT")

	if _, err := LoadConfig(); err == nil {
		t.Error("config:config_test - expected error for non-numeric HTTP_PORT")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SubjectPrefix:      "ipc",
			AppScheme:          "app",
			FailurePolicy:      "asymmetric",
			HTTPPort:           8080,
			HealthCheckTimeout: 5 * time.Second,
			LogFormat:          "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty policy means default", func(c *Config) { c.FailurePolicy = "" }, false},
		{"propagate-all", func(c *Config) { c.FailurePolicy = "propagate-all" }, false},
		{"unknown policy", func(c *Config) { c.FailurePolicy = "strict" }, true},
		{"empty scheme", func(c *Config) { c.AppScheme = "" }, true},
		{"scheme with colon", func(c *Config) { c.AppScheme = "app:" }, true},
		{"empty prefix", func(c *Config) { c.SubjectPrefix = "" }, true},
		{"zero health timeout", func(c *Config) { c.HealthCheckTimeout = 0 }, true},
		{"negative port", func(c *Config) { c.HTTPPort = -1 }, true},
		{"port zero disables http", func(c *Config) { c.HTTPPort = 0 }, false},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("config:config_test - Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
