package config

import (
	"os"
	"path/filepath"

	"github.com/m4xw311/gemini-collab/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the tunable knobs of the server. The API key is deliberately
// not part of the YAML file; it is resolved from the environment exactly once
// at startup so a config file checked into a repository can never leak it.
type Config struct {
	FlashModel     string `yaml:"flash_model"`
	ProModel       string `yaml:"pro_model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxWorkers     int    `yaml:"max_workers"`

	APIKey string `yaml:"-"`
}

// Defaults returns the built-in configuration matching the public Gemini
// generateContent endpoint.
func Defaults() *Config {
	return &Config{
		FlashModel:     "gemini-1.5-flash",
		ProModel:       "gemini-1.5-pro",
		BaseURL:        "https://generativelanguage.googleapis.com/v1beta/models",
		TimeoutSeconds: 30,
		MaxWorkers:     2,
	}
}

// LoadConfig loads configuration from the user's home directory and the
// current working directory, with the latter taking precedence. A missing
// file is not an error; the defaults stand. The GEMINI_API_KEY environment
// variable is read last. An empty key is allowed: the server starts and
// every tools/call reports the missing configuration.
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	// Load user-level config first
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".gemini-collab", "config.yaml")
		if _, err := os.Stat(userConfigPath); err == nil {
			if err := loadFromFile(userConfigPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	// Load project-level config, overriding user-level
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	projectConfigPath := filepath.Join(wd, ".gemini-collab", "config.yaml")
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := loadFromFile(projectConfigPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading project config")
		}
	}

	cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal overwrites fields present in the YAML, which gives a simple
	// merge where project-level config replaces user-level.
	return yaml.Unmarshal(data, cfg)
}
