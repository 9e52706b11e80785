package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".helpdesk"

// DataDir returns the base data directory for Helpdesk.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigPath returns the path to the settings file.
func ConfigPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.toml"), nil
}

// TokenPath returns the path to the bearer token file.
func TokenPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "token"), nil
}

// StatePath returns the path to the persisted client state database.
func StatePath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "state.db"), nil
}

// LogPath returns the path used for UI logging, where stderr is unavailable.
func LogPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "helpdesk.log"), nil
}
