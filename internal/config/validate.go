package config

import (
	"errors"
	"fmt"

	"splice/internal/storage"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLoad(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	if _, err := storage.ParseKind(c.Storage.Backend); err != nil {
		return fmt.Errorf("storage.backend: %w", err)
	}
	return nil
}

func (c *Config) validateLoad() error {
	if c.Load.Parallelism < 0 {
		return errors.New("load.parallelism must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
