// Package config holds server settings: listen address, storage backend and
// content/data locations. Values come from an optional YAML file with
// environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

type Config struct {
	Addr            string `yaml:"addr" json:"addr"`
	DataDir         string `yaml:"data_dir" json:"data_dir"`
	ContentDir      string `yaml:"content_dir" json:"content_dir"`
	Storage         string `yaml:"storage" json:"storage"`
	SQLitePath      string `yaml:"sqlite_path" json:"sqlite_path"`
	SessionTTLHours int    `yaml:"session_ttl_hours" json:"session_ttl_hours"`
}

func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Storage == "" {
		c.Storage = StorageFile
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/players.db"
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = 168
	}
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageFile, StorageSQLite:
		return nil
	}
	return fmt.Errorf("unknown storage backend %q", c.Storage)
}

func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Missing config file: run on defaults and env overrides.
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, err
			}
		}
	}
	c.ApplyDefaults()
	applyEnv(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
