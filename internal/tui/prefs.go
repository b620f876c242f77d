package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// SortBy orders the dependency table.
type SortBy string

const (
	SortByName    SortBy = "name"
	SortByLicense SortBy = "license"
)

// Next cycles through the sort orders.
func (s SortBy) Next() SortBy {
	if s == SortByLicense {
		return SortByName
	}
	return SortByLicense
}

// Prefs holds browser preferences that persist across sessions.
type Prefs struct {
	SortBy      SortBy `json:"sort_by"`
	HidePrivate bool   `json:"hide_private"`
}

// DefaultPrefs returns the default preferences.
func DefaultPrefs() Prefs {
	return Prefs{SortBy: SortByName}
}

// prefsPath returns the path to the preferences file.
func prefsPath() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "licensebanner", "browse.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "licensebanner", "browse.json"), nil
}

// LoadPrefs loads preferences from disk, returning defaults if not found.
func LoadPrefs() Prefs {
	prefs := DefaultPrefs()
	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path) //nolint:gosec // fixed name in config dir
	if err != nil {
		return prefs
	}
	_ = json.Unmarshal(data, &prefs) //nolint:errcheck // fall back to defaults
	if prefs.SortBy != SortByLicense {
		prefs.SortBy = SortByName
	}
	return prefs
}

// SavePrefs persists preferences to disk.
func SavePrefs(prefs Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
