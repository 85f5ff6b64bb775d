// Package prefs persists the coarse UI preferences that survive across runs:
// theme, sidebar state, auto-refresh, and notifications. Everything else
// (loading flags, toasts) is ephemeral and lives with the view.
package prefs

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Preferences is the persisted subset of UI state.
type Preferences struct {
	Theme            string `yaml:"theme"`
	SidebarCollapsed bool   `yaml:"sidebar_collapsed"`
	AutoRefresh      bool   `yaml:"auto_refresh"`
	Notifications    bool   `yaml:"notifications"`
}

// Default returns the preferences used before the user has saved any.
func Default() Preferences {
	return Preferences{
		Theme:         "dark",
		AutoRefresh:   true,
		Notifications: true,
	}
}

// DefaultPath returns the per-user preference file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "meridian", "prefs.yaml"), nil
}

// Load reads preferences from path. A missing file is not an error: the
// defaults are returned so first runs work without setup.
func Load(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), err
	}
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), err
	}
	return p, nil
}

// Save writes preferences to path, creating parent directories as needed.
func Save(path string, p Preferences) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
