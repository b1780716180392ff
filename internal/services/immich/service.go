package immich

import (
	"context"
	"net/http"
	"strings"
	"time"

	"albumsync/internal/config"
)

// Service describes the remote album operations consumed by the sync workflow.
type Service interface {
	// Libraries lists libraries whose assets come from external scans.
	Libraries(ctx context.Context) ([]Library, error)
	// Albums lists all albums visible to the API key.
	Albums(ctx context.Context) ([]Album, error)
	// Assets lists all assets visible to the API key.
	Assets(ctx context.Context) ([]Asset, error)
	// AlbumAssets returns the asset ids currently contained in an album.
	AlbumAssets(ctx context.Context, albumID string) ([]string, error)
	// CreateAlbum creates an album with the given name and initial members,
	// returning the new album id.
	CreateAlbum(ctx context.Context, name string, assetIDs []string) (string, error)
	// AddAssets adds members to an album and returns how many additions the
	// server reported as successful. Re-adding an existing member is a
	// per-member no-op, not an error.
	AddAssets(ctx context.Context, albumID string, assetIDs []string) (int, error)
	// RemoveAssets removes members from an album and returns how many removals
	// the server reported as successful.
	RemoveAssets(ctx context.Context, albumID string, assetIDs []string) (int, error)
}

// NewConfiguredService returns a Service backed by the configured server.
func NewConfiguredService(cfg *config.Config) Service {
	if cfg == nil {
		return NewHTTPService("", "", nil)
	}
	client := &http.Client{Timeout: time.Duration(cfg.Server.RequestTimeout) * time.Second}
	return NewHTTPService(cfg.Server.BaseURL, cfg.Server.APIKey, client)
}

// NormalizeBaseURL applies the server URL convention: trailing slashes are
// trimmed and the API prefix is appended unless the URL already ends in "api".
func NormalizeBaseURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	if !strings.HasSuffix(trimmed, "api") {
		trimmed += "/api"
	}
	return trimmed
}
