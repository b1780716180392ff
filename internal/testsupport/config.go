package testsupport

import (
	"path/filepath"
	"testing"

	"albumsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Server.BaseURL = "https://photos.example.com"
	cfgVal.Server.APIKey = "test"
	cfgVal.Sync.LockFile = filepath.Join(base, "sync.lock")
	cfgVal.History.DatabasePath = filepath.Join(base, "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithServer points the config at a test server URL and key.
func WithServer(baseURL, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.BaseURL = baseURL
		b.cfg.Server.APIKey = apiKey
	}
}

// WithMappingFile points the sync mapping file at a path under the test dir.
func WithMappingFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.MappingFile = filepath.Join(b.baseDir, name)
	}
}

// WithLibraries restricts the sync to the named libraries.
func WithLibraries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.Libraries = names
	}
}

// WithHistoryDisabled turns off run history recording.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.History.DatabasePath)
}
