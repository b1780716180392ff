package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeServer()
	if err := c.normalizeSync(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeNotifications()
	return c.normalizeLogging()
}

func (c *Config) normalizeServer() {
	c.Server.BaseURL = strings.TrimSpace(c.Server.BaseURL)
	c.Server.APIKey = strings.TrimSpace(c.Server.APIKey)
	if c.Server.APIKey == "" {
		if value, ok := os.LookupEnv("IMMICH_API_KEY"); ok {
			c.Server.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeSync() error {
	var err error
	c.Sync.MappingFile = strings.TrimSpace(c.Sync.MappingFile)
	if c.Sync.MappingFile != "" {
		if c.Sync.MappingFile, err = expandPath(c.Sync.MappingFile); err != nil {
			return fmt.Errorf("sync.mapping_file: %w", err)
		}
	}
	if strings.TrimSpace(c.Sync.LockFile) == "" {
		c.Sync.LockFile = defaultLockFile
	}
	if c.Sync.LockFile, err = expandPath(c.Sync.LockFile); err != nil {
		return fmt.Errorf("sync.lock_file: %w", err)
	}
	c.Sync.Libraries = dedupeStrings(c.Sync.Libraries)
	c.Sync.SkipPaths = dedupeStrings(c.Sync.SkipPaths)
	return nil
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.DatabasePath) == "" {
		c.History.DatabasePath = defaultHistoryPath
	}
	if c.History.DatabasePath, err = expandPath(c.History.DatabasePath); err != nil {
		return fmt.Errorf("history.database_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
