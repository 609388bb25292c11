// Package config loads server settings from an optional YAML file,
// with environment variables filling in provider credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything the serve command needs beyond API keys.
type Config struct {
	Addr       string `yaml:"addr"`
	DataDir    string `yaml:"data_dir"`
	DBPath     string `yaml:"db_path"`
	Backend    string `yaml:"backend"`
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	TrialLimit int    `yaml:"trial_limit"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:     ":8080",
		DataDir:  "data",
		Backend:  "generative",
		Provider: "openai",
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Backend {
	case "generative", "pixel":
	default:
		return fmt.Errorf("unknown backend %q, must be generative or pixel", c.Backend)
	}
	switch c.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown provider %q, must be openai or gemini", c.Provider)
	}
	return nil
}

// UploadsDir is where incoming room and furniture photos are stored.
func (c Config) UploadsDir() string { return filepath.Join(c.DataDir, "uploads") }

// ResultsDir is where composition results are stored.
func (c Config) ResultsDir() string { return filepath.Join(c.DataDir, "results") }

// CatalogDir is where catalog item images are stored.
func (c Config) CatalogDir() string { return filepath.Join(c.DataDir, "catalog") }

// DatabasePath resolves the SQLite file, defaulting under the data
// directory.
func (c Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "roomstager.db")
}

// EnsureDirs creates the data directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.UploadsDir(), c.ResultsDir(), c.CatalogDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
