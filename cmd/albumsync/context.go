package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"albumsync/internal/config"
	"albumsync/internal/logging"
	"albumsync/internal/services/immich"
)

type commandContext struct {
	configFlag   *string
	jsonFlag     *bool
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		jsonFlag:     jsonFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// JSONMode reports whether the invocation asked for JSON output.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// newRunLogger builds the logger used by commands that do real work. Logs go
// to stderr, keeping stdout clean for command output. The --log-level flag
// wins over the configured level.
func (c *commandContext) newRunLogger(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return logging.NewNop(), nil
	}
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		override := *cfg
		override.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		cfg = &override
	}
	return logging.NewFromConfig(cfg)
}

// remoteService builds the photo server client from the loaded configuration.
func (c *commandContext) remoteService() (immich.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return immich.NewConfiguredService(cfg), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
