// Package config loads the command line defaults from an optional YAML file.
package config

import (
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfig  = "WIREHTTP_CONFIG"
	EnvTimeout = "WIREHTTP_TIMEOUT"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Timeout  time.Duration     `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers"`
	NoColor  bool              `yaml:"no_color"`
	LogLevel string            `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		LogLevel: "warn",
	}
}

// Load reads path over the defaults. An empty path falls back to
// $WIREHTTP_CONFIG, and to the defaults alone when that is unset too.
// $WIREHTTP_TIMEOUT overrides the timeout either way.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "%s: %s", path, err)
		}
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "%s: %s", EnvTimeout, err)
		}
		cfg.Timeout = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Timeout <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "timeout must be positive, got %s", c.Timeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "log_level %q", c.LogLevel)
	}
	return level, nil
}

// HeaderLines renders the configured headers as field lines, sorted by name.
func (c *Config) HeaderLines() []string {
	names := make([]string, 0, len(c.Headers))
	for name := range c.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+c.Headers[name])
	}
	return lines
}
