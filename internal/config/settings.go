package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultServiceAddress = "127.0.0.1:8080"
	defaultEndpoint       = "/api/chat.php"

	defaultSessionListInterval = 15 * time.Second
	defaultMessageInterval     = 8 * time.Second
	defaultWidgetInterval      = 2 * time.Second

	defaultScrollThresholdLines = 3
)

type Settings struct {
	Service ServiceConfig `toml:"service"`
	Polling PollingConfig `toml:"polling"`
	UI      UISettings    `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
}

type ServiceConfig struct {
	Address   string `toml:"address"`
	Endpoint  string `toml:"endpoint"`
	TokenPath string `toml:"token_path"`
}

type PollingConfig struct {
	SessionListSeconds int `toml:"session_list_seconds"`
	MessageSeconds     int `toml:"message_seconds"`
	WidgetSeconds      int `toml:"widget_seconds"`
}

type UISettings struct {
	ScrollThresholdLines int `toml:"scroll_threshold_lines"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func DefaultSettings() Settings {
	return Settings{
		Service: ServiceConfig{
			Address:  defaultServiceAddress,
			Endpoint: defaultEndpoint,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadSettings reads the settings file, layering it over defaults. A missing
// or empty file yields the defaults.
func LoadSettings() (Settings, error) {
	path, err := ConfigPath()
	if err != nil {
		return Settings{}, err
	}
	return loadSettingsFromPath(path)
}

func loadSettingsFromPath(path string) (Settings, error) {
	cfg := DefaultSettings()
	if err := readTOML(path, &cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

func (s Settings) ServiceAddress() string {
	addr := strings.TrimSpace(s.Service.Address)
	if addr == "" {
		return defaultServiceAddress
	}
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultServiceAddress
	}
	return addr
}

func (s Settings) ServiceBaseURL() string {
	return "http://" + s.ServiceAddress()
}

func (s Settings) ServiceEndpoint() string {
	endpoint := strings.TrimSpace(s.Service.Endpoint)
	if endpoint == "" {
		return defaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return endpoint
}

// ResolveTokenPath honors an override from the settings file and falls back
// to the default token location.
func (s Settings) ResolveTokenPath() (string, error) {
	path := strings.TrimSpace(s.Service.TokenPath)
	if path == "" {
		return TokenPath()
	}
	return path, nil
}

func (s Settings) SessionListInterval() time.Duration {
	return secondsOrDefault(s.Polling.SessionListSeconds, defaultSessionListInterval)
}

func (s Settings) MessageInterval() time.Duration {
	return secondsOrDefault(s.Polling.MessageSeconds, defaultMessageInterval)
}

func (s Settings) WidgetInterval() time.Duration {
	return secondsOrDefault(s.Polling.WidgetSeconds, defaultWidgetInterval)
}

func (s Settings) ScrollThreshold() int {
	if s.UI.ScrollThresholdLines <= 0 {
		return defaultScrollThresholdLines
	}
	return s.UI.ScrollThresholdLines
}

func (s Settings) LogLevel() string {
	level := strings.TrimSpace(s.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func secondsOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
