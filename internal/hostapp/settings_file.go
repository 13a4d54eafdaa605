package hostapp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

const settingsLogPrefix = "hostapp:settings_file"

// SettingsFile is the on-disk form of the initial settings.
type SettingsFile struct {
	Version  string            `json:"version,omitempty"`
	Settings map[string]string `json:"settings"`
}

// LoadSettingsFile returns the initial settings. It tries the given paths in
// order, then the default locations. Unreadable or malformed files are
// skipped; when none load, DefaultSettings is used. The environment is not
// consulted here; callers pass config.Config.SettingsFile.
func LoadSettingsFile(paths ...string) map[string]string {
	all := make([]string, 0, len(paths)+2)
	for _, p := range paths {
		if p != "" {
			all = append(all, p)
		}
	}
	all = append(all, "config/settings.json", "settings.json")

	for _, p := range all {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}

		var f SettingsFile
		if err := json.Unmarshal(data, &f); err != nil {
			slog.Warn(fmt.Sprintf("%s - Failed to parse settings file %s: %v", settingsLogPrefix, p, err))
			continue
		}

		slog.Info(fmt.Sprintf("%s - Loaded %d settings from %s", settingsLogPrefix, len(f.Settings), p))
		return MergeSettings(DefaultSettings(), f.Settings)
	}

	slog.Info(fmt.Sprintf("%s - Using default settings", settingsLogPrefix))
	return DefaultSettings()
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() map[string]string {
	return map[string]string{
		"theme":    "system",
		"language": "en",
	}
}

// MergeSettings returns base with override applied on top. Neither input is modified.
func MergeSettings(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
