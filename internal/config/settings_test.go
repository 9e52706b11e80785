package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettingsMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := loadSettingsFromPath(path)
	if err != nil {
		t.Fatalf("loadSettingsFromPath error: %v", err)
	}
	if got := cfg.ServiceBaseURL(); got != "http://127.0.0.1:8080" {
		t.Fatalf("ServiceBaseURL = %q", got)
	}
	if got := cfg.ServiceEndpoint(); got != "/api/chat.php" {
		t.Fatalf("ServiceEndpoint = %q", got)
	}
	if got := cfg.SessionListInterval(); got != 15*time.Second {
		t.Fatalf("SessionListInterval = %v", got)
	}
	if got := cfg.MessageInterval(); got != 8*time.Second {
		t.Fatalf("MessageInterval = %v", got)
	}
	if got := cfg.WidgetInterval(); got != 2*time.Second {
		t.Fatalf("WidgetInterval = %v", got)
	}
	if got := cfg.ScrollThreshold(); got != 3 {
		t.Fatalf("ScrollThreshold = %d", got)
	}
}

func TestLoadSettingsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[service]
address = "https://support.example.com/"
endpoint = "chat"

[polling]
session_list_seconds = 30
widget_seconds = 5

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := loadSettingsFromPath(path)
	if err != nil {
		t.Fatalf("loadSettingsFromPath error: %v", err)
	}
	if got := cfg.ServiceAddress(); got != "support.example.com" {
		t.Fatalf("ServiceAddress = %q", got)
	}
	if got := cfg.ServiceEndpoint(); got != "/chat" {
		t.Fatalf("ServiceEndpoint = %q", got)
	}
	if got := cfg.SessionListInterval(); got != 30*time.Second {
		t.Fatalf("SessionListInterval = %v", got)
	}
	if got := cfg.MessageInterval(); got != 8*time.Second {
		t.Fatalf("MessageInterval kept default, got %v", got)
	}
	if got := cfg.WidgetInterval(); got != 5*time.Second {
		t.Fatalf("WidgetInterval = %v", got)
	}
	if got := cfg.LogLevel(); got != "debug" {
		t.Fatalf("LogLevel = %q", got)
	}
}
