package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiscoverDB finds the database path using priority: env > flag > config > walk-up > XDG fallback.
func DiscoverDB(flagPath string, cfg *Config) (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv(EnvDB); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if flagPath != "" {
		if _, err := os.Stat(flagPath); err == nil {
			return flagPath, nil
		}
		return "", fmt.Errorf("database not found at --db path %s: %w", flagPath, ErrNoDatabase)
	}

	// 3. Config file
	if cfg != nil && cfg.Database != "" {
		if _, err := os.Stat(cfg.Database); err == nil {
			return cfg.Database, nil
		}
	}

	// 4. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, DBFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 5. XDG fallback
	if xdg := XDGPath(); xdg != "" {
		if _, err := os.Stat(xdg); err == nil {
			return xdg, nil
		}
	}

	return "", fmt.Errorf("set %s, use --db, or run from a directory containing %s: %w", EnvDB, DBFileName, ErrNoDatabase)
}

// CreatePath is where a new database goes when discovery finds none: the flag,
// then $XQBOOK_DB, then the config, then ./.xqbook.db.
func CreatePath(flagPath string, cfg *Config) string {
	switch {
	case flagPath != "":
		return flagPath
	case os.Getenv(EnvDB) != "":
		return os.Getenv(EnvDB)
	case cfg != nil && cfg.Database != "":
		return cfg.Database
	}
	return DBFileName
}

// XDGPath is the per-user fallback location, empty when there is no home directory.
func XDGPath() string {
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "xqbook", "xqbook.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "xqbook", "xqbook.db")
}
