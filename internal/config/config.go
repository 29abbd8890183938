package config

import (
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/trusty/internal/filex"
)

const (
	// DataDirName is the directory under Home that holds the database.
	DataDirName = ".trusty"
	// DBFileName is the database file name inside DataDirName.
	DBFileName = "trusty.db"
)

// Config holds runtime settings for the tru CLI.
type Config struct {
	// Home is the base directory; the database lives in Home/.trusty.
	Home      string
	LogLevel  string
	LogFormat string
	NoColor   bool
}

// LoadDefaults populates c with defaults. Home is left empty and resolved
// to the user's home directory by DataDir.
func (c *Config) LoadDefaults() {
	c.Home = ""
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.NoColor = false
}

// Load builds a Config from defaults, the optional file at path and the
// environment. Later sources take precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg, os.LookupEnv)
	return cfg, nil
}

// DataDir creates (if needed) and returns the data directory.
func (c *Config) DataDir() (string, error) {
	home, err := filex.HomeDir(c.Home)
	if err != nil {
		return "", err
	}
	return filex.EnsureSubDir(home, DataDirName)
}

// DBPath creates the data directory and returns the database file path.
func (c *Config) DBPath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DBFileName), nil
}
