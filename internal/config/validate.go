package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.BaseURL == "" {
		return errors.New("server.base_url must be set (e.g. https://photos.example.com)")
	}
	if c.Server.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/albumsync/config.toml"
		}
		return fmt.Errorf("server.api_key is required. Set IMMICH_API_KEY env var or edit %s (create with 'albumsync config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.CleanUpdate && c.Sync.SkipExisting {
		return errors.New("sync.clean_update and sync.skip_existing are mutually exclusive")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.DatabasePath) == "" {
		return errors.New("history.database_path must be set when history.enabled is true")
	}
	return nil
}
