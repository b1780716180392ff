package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"albumsync/internal/config"
)

func TestLoadDefaultConfigUsesEnvAPIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("IMMICH_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "albumsync.toml")
	if err := os.WriteFile(configPath, []byte("[server]\nbase_url = \"https://photos.example.com\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}

	if cfg.Server.APIKey != "test-key" {
		t.Fatalf("expected API key from env, got %q", cfg.Server.APIKey)
	}
	if cfg.Server.RequestTimeout != 30 {
		t.Fatalf("unexpected request timeout: %d", cfg.Server.RequestTimeout)
	}
	wantLock := filepath.Join(tempHome, ".local", "share", "albumsync", "sync.lock")
	if cfg.Sync.LockFile != wantLock {
		t.Fatalf("unexpected lock file: got %q want %q", cfg.Sync.LockFile, wantLock)
	}
	wantHistory := filepath.Join(tempHome, ".local", "share", "albumsync", "history.db")
	if cfg.History.DatabasePath != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.DatabasePath, wantHistory)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Sync.FolderLayout {
		t.Fatal("expected folder layout disabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q %q", cfg.Logging.Format, cfg.Logging.Level)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{filepath.Dir(cfg.History.DatabasePath), filepath.Dir(cfg.Sync.LockFile)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadWithoutConfigFileFailsValidation(t *testing.T) {
	t.Setenv("IMMICH_API_KEY", "test-key")
	t.Setenv("HOME", t.TempDir())

	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected validation error without server.base_url")
	}
	if !strings.Contains(err.Error(), "server.base_url") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "albumsync.toml")

	type payload struct {
		Server struct {
			BaseURL        string `toml:"base_url"`
			APIKey         string `toml:"api_key"`
			RequestTimeout int    `toml:"request_timeout"`
		} `toml:"server"`
		Sync struct {
			MappingFile  string   `toml:"mapping_file"`
			Libraries    []string `toml:"libraries"`
			FolderLayout bool     `toml:"folder_layout"`
			SkipPaths    []string `toml:"skip_paths"`
		} `toml:"sync"`
	}
	custom := payload{}
	custom.Server.BaseURL = "https://photos.example.com"
	custom.Server.APIKey = "abc123"
	custom.Server.RequestTimeout = 15
	custom.Sync.MappingFile = filepath.Join(tempDir, "albums.json")
	custom.Sync.Libraries = []string{"Photos", "  ", "Photos", "Archive"}
	custom.Sync.FolderLayout = true
	custom.Sync.SkipPaths = []string{"/photos/raw/*"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Server.APIKey != "abc123" {
		t.Fatalf("expected API key from file, got %q", cfg.Server.APIKey)
	}
	if cfg.Server.RequestTimeout != 15 {
		t.Fatalf("expected request timeout 15, got %d", cfg.Server.RequestTimeout)
	}
	if !cfg.Sync.FolderLayout {
		t.Fatal("expected folder layout enabled")
	}
	if cfg.Sync.MappingFile != filepath.Join(tempDir, "albums.json") {
		t.Fatalf("unexpected mapping file: %q", cfg.Sync.MappingFile)
	}
	wantLibraries := []string{"Photos", "Archive"}
	if len(cfg.Sync.Libraries) != len(wantLibraries) {
		t.Fatalf("libraries = %v, want %v", cfg.Sync.Libraries, wantLibraries)
	}
	for i, name := range wantLibraries {
		if cfg.Sync.Libraries[i] != name {
			t.Fatalf("libraries = %v, want %v", cfg.Sync.Libraries, wantLibraries)
		}
	}
}

func TestConfigAPIKeyPrefersFileOverEnv(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "albumsync.toml")

	contents := "[server]\nbase_url = \"https://photos.example.com\"\napi_key = \"file-key\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	t.Setenv("IMMICH_API_KEY", "env-key")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.APIKey != "file-key" {
		t.Errorf("expected file key to win, got %q", cfg.Server.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_api_key_here") {
		t.Fatalf("sample config missing placeholder API key: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Server.RequestTimeout != 30 {
		t.Fatalf("unexpected sample request timeout: %d", cfg.Server.RequestTimeout)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Server.BaseURL = "https://photos.example.com"
		cfg.Server.APIKey = "key"
		return cfg
	}

	cfg := config.Default()
	cfg.Server.APIKey = "key"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing base_url")
	}

	cfg = base()
	cfg.Server.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing api_key")
	}

	cfg = base()
	cfg.Server.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}

	cfg = base()
	cfg.Sync.CleanUpdate = true
	cfg.Sync.SkipExisting = true
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for conflicting update flags")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg = base()
	cfg.History.Enabled = true
	cfg.History.DatabasePath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for history without database path")
	}
}
