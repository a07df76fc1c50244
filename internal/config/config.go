// Package config loads navigator.yaml and locates the position database.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"xqbook/navigator/internal/store"
)

const (
	// FileName is the config file looked up next to the database and in the working directory.
	FileName = "navigator.yaml"
	// DBFileName is the database name found by walking up from the working directory.
	DBFileName = ".xqbook.db"

	EnvDB       = "XQBOOK_DB"
	EnvLogLevel = "XQBOOK_LOG_LEVEL"
	EnvConfig   = "XQBOOK_CONFIG"
)

// ErrNoDatabase means discovery found no database file.
var ErrNoDatabase = errors.New("no database found")

type Config struct {
	Database string        `yaml:"database"`
	Log      LogConfig     `yaml:"log"`
	Session  SessionConfig `yaml:"session"`
	Turn     TurnConfig    `yaml:"turn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SessionConfig struct {
	// Horizon bounds enumeration below the lock point; negative means none.
	Horizon    int    `yaml:"horizon"`
	AutoExtend bool   `yaml:"auto_extend"`
	RandomSeed uint64 `yaml:"random_seed"`
}

type TurnConfig struct {
	// MarkerField is the zero-based whitespace field of a state holding the side to move.
	MarkerField int `yaml:"marker_field"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "auto"},
		Session: SessionConfig{Horizon: -1, AutoExtend: true},
		Turn:    TurnConfig{MarkerField: 1},
	}
}

// Load reads path over the defaults. An empty path tries $XQBOOK_CONFIG and then
// ./navigator.yaml; a missing default file is not an error. Environment overrides
// are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("XQBOOK_HORIZON"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("XQBOOK_HORIZON: %w", err)
		}
		c.Session.Horizon = n
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("log.format %q: want auto, text or json", c.Log.Format)
	}
	if c.Turn.MarkerField < 0 {
		return fmt.Errorf("turn.marker_field %d: must not be negative", c.Turn.MarkerField)
	}
	return nil
}

// TurnFunc derives the side to move using the configured marker field.
func (c *Config) TurnFunc() store.TurnFunc {
	if c.Turn.MarkerField == 1 {
		return store.DefaultTurn
	}
	return store.FieldTurn(c.Turn.MarkerField)
}
