// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var pluginPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Config holds all application configuration.
type Config struct {
	Plugin        string `toml:"plugin"`
	Fallback      bool   `toml:"fallback"`
	PrefsBackend  string `toml:"prefs_backend"`
	PrefsPath     string `toml:"prefs_path"`
	ProvidersFile string `toml:"providers_file"`
	OEmbedTimeout string `toml:"oembed_timeout"`
	Listen        string `toml:"listen"`
	Debug         bool   `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Plugin:        "player",
		Fallback:      true,
		PrefsBackend:  "toml",
		OEmbedTimeout: "30s",
		Listen:        ":8080",
		Debug:         false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "embedder"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "embedder"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if !pluginPattern.MatchString(c.Plugin) {
		return fmt.Errorf("invalid plugin prefix %q (lowercase letters, digits and _ only)", c.Plugin)
	}

	switch strings.ToLower(c.PrefsBackend) {
	case "toml", "sqlite":
	default:
		return fmt.Errorf("unsupported prefs backend %q (valid: toml, sqlite)", c.PrefsBackend)
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	return nil
}

// Timeout parses the oEmbed request timeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.OEmbedTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid oembed_timeout %q: %w", c.OEmbedTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("oembed_timeout must be positive, got %s", d)
	}
	return d, nil
}

// ResolvePrefsPath returns the preference store location: the configured
// path with ~ expanded, or the XDG data default for the backend.
func (c *Config) ResolvePrefsPath() (string, error) {
	if c.PrefsPath != "" {
		return expandHome(c.PrefsPath)
	}

	name := "prefs.toml"
	if strings.ToLower(c.PrefsBackend) == "sqlite" {
		name = "prefs.db"
	}

	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ResolveProvidersFile returns the extra provider profile file, or "" when
// none is configured.
func (c *Config) ResolveProvidersFile() (string, error) {
	if c.ProvidersFile == "" {
		return "", nil
	}
	return expandHome(c.ProvidersFile)
}

func dataDir() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "embedder"), nil
}

func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
