package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig is the DTO decoded from a config file. Pointer fields tell an
// absent key apart from a zero value.
type fileConfig struct {
	Home      *string `json:"home" toml:"home"`
	LogLevel  *string `json:"log_level" toml:"log_level"`
	LogFormat *string `json:"log_format" toml:"log_format"`
	NoColor   *bool   `json:"no_color" toml:"no_color"`
}

// parseFile overlays cfg with the values present in the file at path.
func parseFile(cfg *Config, path string) error {
	var fc fileConfig

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if fc.Home != nil {
		cfg.Home = *fc.Home
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.NoColor != nil {
		cfg.NoColor = *fc.NoColor
	}
	return nil
}
