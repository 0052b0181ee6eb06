package config

import (
	"fmt"
	"time"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timezone == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.SnapshotWidth <= 0 {
		return fmt.Errorf("snapshot_width must be positive, got %d", c.SnapshotWidth)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1-65535, got %d", c.Port)
	}
	return nil
}

// Location resolves the configured timezone. Validate has already
// checked it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
