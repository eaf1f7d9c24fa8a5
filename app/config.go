package app

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds persisted CLI defaults, loaded once at startup and
// overridden by whatever flags the user actually passes on that
// invocation. Modeled directly on the teacher's config.Config: a plain
// struct with JSON tags, a Default() constructor, and a Load/Save pair
// keyed off a fixed path under the user's config directory.
type Config struct {
	Mode           string  `json:"mode"`
	Symbols        string  `json:"symbols"`
	Dither         string  `json:"dither"`
	WorkFactor     float64 `json:"work_factor"`
	Threads        int     `json:"threads"`
	GridCols       int     `json:"grid_cols"`
	Rotate         int     `json:"rotate"`
	ForegroundOnly bool    `json:"foreground_only"`
	ShowLabels     bool    `json:"show_labels"`
}

func Default() *Config {
	return &Config{
		Mode:       "truecolor",
		Symbols:    "all",
		Dither:     "none",
		WorkFactor: 1.0,
		Threads:    1,
		ShowLabels: true,
	}
}

// ConfigPath returns $XDG_CONFIG_HOME/chafa/settings.json (or the
// platform default via os.UserConfigDir), matching the teacher's
// ConfigPath pattern of a single fixed settings file per user.
func ConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chafa", "settings.json")
}

// LoadConfig reads the persisted settings file, falling back to Default
// when it doesn't exist (or can't be located at all).
func LoadConfig() (*Config, error) {
	path := ConfigPath()
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save() error {
	path := ConfigPath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
