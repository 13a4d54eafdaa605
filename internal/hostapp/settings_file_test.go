package hostapp

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsFile_Defaults(t *testing.T) {
	got := LoadSettingsFile(filepath.Join(t.TempDir(), "missing.json"))
	if got["theme"] != "system" || got["language"] != "en" {
		t.Errorf("%s - defaults = %v", hostappTestPrefix, got)
	}
}

func TestLoadSettingsFile_ExplicitPathWins(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "explicit.json")
	os.WriteFile(explicit, []byte(`{"settings":{"theme":"dark"}}`), 0o600)

	got := LoadSettingsFile(explicit)
	if got["theme"] != "dark" {
		t.Errorf("%s - theme = %q, want dark", hostappTestPrefix, got["theme"])
	}
	if got["language"] != "en" {
		t.Errorf("%s - defaults not merged: %v", hostappTestPrefix, got)
	}
}

func TestLoadSettingsFile_IgnoresEnvironment(t *testing.T) {
	fromEnv := filepath.Join(t.TempDir(), "env.json")
	os.WriteFile(fromEnv, []byte(`{"settings":{"theme":"light"}}`), 0o600)
	t.Setenv("IPC_SETTINGS_FILE", fromEnv)

	got := LoadSettingsFile(filepath.Join(t.TempDir(), "missing.json"))
	if got["theme"] != "system" {
		t.Errorf("%s - theme = %q, want built-in default; env must only reach here through config", hostappTestPrefix, got["theme"])
	}
}

func TestLoadSettingsFile_MalformedFallsThrough(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	good := filepath.Join(dir, "good.json")
	os.WriteFile(bad, []byte(`{not json`), 0o600)
	os.WriteFile(good, []byte(`{"version":"1","settings":{"zoom":"125"}}`), 0o600)

	got := LoadSettingsFile(bad, good)
	if got["zoom"] != "125" {
		t.Errorf("%s - expected good file to load, got %v", hostappTestPrefix, got)
	}
}

func TestMergeSettings(t *testing.T) {
	base := map[string]string{"a": "1", "b": "2"}
	override := map[string]string{"b": "3", "c": "4"}
	merged := MergeSettings(base, override)

	if merged["a"] != "1" || merged["b"] != "3" || merged["c"] != "4" {
		t.Errorf("%s - merged = %v", hostappTestPrefix, merged)
	}
	if base["b"] != "2" {
		t.Errorf("%s - base was modified", hostappTestPrefix)
	}
}
