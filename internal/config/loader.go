// Package config loads the apiresolve configuration from defaults, an
// optional YAML file and APIRESOLVE_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader reads the configuration file from a base directory.
type Loader struct {
	dir string
}

// NewLoader creates a loader. The directory is resolved in this order:
//  1. APIRESOLVE_CONFIG environment variable.
//  2. ~/.apiresolve.
//  3. No directory: only defaults and environment apply.
func NewLoader() *Loader {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return &Loader{dir: dir}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return &Loader{dir: filepath.Join(home, DefaultDir)}
	}
	return &Loader{}
}

// NewLoaderAt creates a loader reading dir/config.yaml.
func NewLoaderAt(dir string) *Loader {
	return &Loader{dir: dir}
}

// Path returns the configuration file path, or "" when there is none.
func (l *Loader) Path() string {
	if l.dir == "" {
		return ""
	}
	return filepath.Join(l.dir, ConfigFile)
}

// Load returns the defaults overlaid with the file and the environment, and
// validates the result. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if path := l.Path(); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	//nolint:gosec // G304: Path is from trusted config directory.
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}
