package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are the user-tunable security knobs, loaded from a YAML file so
// they can change without touching the environment.
type Settings struct {
	EnableRateLimiting    bool `yaml:"enableRateLimiting" json:"enableRateLimiting"`
	MaxRequestsPerMinute  int  `yaml:"maxRequestsPerMinute" json:"maxRequestsPerMinute"`
	EnableSessionTimeout  bool `yaml:"enableSessionTimeout" json:"enableSessionTimeout"`
	SessionTimeoutMinutes int  `yaml:"sessionTimeoutMinutes" json:"sessionTimeoutMinutes"`
	StoreSessionHistory   bool `yaml:"storeSessionHistory" json:"storeSessionHistory"`
}

func DefaultSettings() Settings {
	return Settings{
		EnableRateLimiting:    true,
		MaxRequestsPerMinute:  20,
		EnableSessionTimeout:  true,
		SessionTimeoutMinutes: 30,
		StoreSessionHistory:   true,
	}
}

// LoadSettings reads the settings file, overlaying its values on the
// defaults. A missing file is not an error; a malformed one is.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(b, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("parse settings file: %w", err)
	}
	if settings.MaxRequestsPerMinute < 1 {
		settings.MaxRequestsPerMinute = DefaultSettings().MaxRequestsPerMinute
	}
	return settings, nil
}
