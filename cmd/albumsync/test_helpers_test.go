package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"albumsync/internal/services/immich"
)

// fakePhotoServer is an in-memory photo server speaking just enough of the
// album API for CLI tests: library, asset, and album listings plus album
// creation and membership updates.
type fakePhotoServer struct {
	mu        sync.Mutex
	apiKey    string
	libraries []immich.Library
	assets    []immich.Asset
	albums    map[string]*fakeAlbum
	order     []string
	nextID    int
}

type fakeAlbum struct {
	id      string
	name    string
	members map[string]struct{}
}

func newFakePhotoServer(apiKey string) *fakePhotoServer {
	return &fakePhotoServer{
		apiKey: apiKey,
		albums: make(map[string]*fakeAlbum),
	}
}

func (f *fakePhotoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("x-api-key") != f.apiKey {
		writeJSONResponse(w, http.StatusUnauthorized, map[string]any{"message": "invalid API key", "statusCode": 401})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/api/library" && r.Method == http.MethodGet:
		writeJSONResponse(w, http.StatusOK, f.libraries)
	case path == "/api/asset" && r.Method == http.MethodGet:
		writeJSONResponse(w, http.StatusOK, f.assets)
	case path == "/api/album" && r.Method == http.MethodGet:
		summaries := make([]map[string]any, 0, len(f.order))
		for _, id := range f.order {
			album := f.albums[id]
			summaries = append(summaries, map[string]any{
				"id":         album.id,
				"albumName":  album.name,
				"assetCount": len(album.members),
			})
		}
		writeJSONResponse(w, http.StatusOK, summaries)
	case path == "/api/album" && r.Method == http.MethodPost:
		f.handleCreate(w, r)
	case strings.HasPrefix(path, "/api/album/"):
		f.handleAlbum(w, r, strings.TrimPrefix(path, "/api/album/"))
	default:
		writeJSONResponse(w, http.StatusNotFound, map[string]any{"message": "not found", "statusCode": 404})
	}
}

func (f *fakePhotoServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AlbumName string   `json:"albumName"`
		AssetIDs  []string `json:"assetIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, map[string]any{"message": err.Error(), "statusCode": 400})
		return
	}

	f.nextID++
	album := &fakeAlbum{
		id:      fmt.Sprintf("album-%d", f.nextID),
		name:    req.AlbumName,
		members: make(map[string]struct{}),
	}
	for _, assetID := range req.AssetIDs {
		album.members[assetID] = struct{}{}
	}
	f.albums[album.id] = album
	f.order = append(f.order, album.id)
	writeJSONResponse(w, http.StatusCreated, map[string]any{"id": album.id})
}

func (f *fakePhotoServer) handleAlbum(w http.ResponseWriter, r *http.Request, rest string) {
	if id, ok := strings.CutSuffix(rest, "/assets"); ok {
		album := f.albums[id]
		if album == nil {
			writeJSONResponse(w, http.StatusNotFound, map[string]any{"message": "album not found", "statusCode": 404})
			return
		}
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, map[string]any{"message": err.Error(), "statusCode": 400})
			return
		}

		results := make([]map[string]any, 0, len(req.IDs))
		switch r.Method {
		case http.MethodPut:
			for _, assetID := range req.IDs {
				_, duplicate := album.members[assetID]
				album.members[assetID] = struct{}{}
				result := map[string]any{"id": assetID, "success": !duplicate}
				if duplicate {
					result["error"] = "duplicate"
				}
				results = append(results, result)
			}
		case http.MethodDelete:
			for _, assetID := range req.IDs {
				_, present := album.members[assetID]
				delete(album.members, assetID)
				results = append(results, map[string]any{"id": assetID, "success": present})
			}
		default:
			writeJSONResponse(w, http.StatusMethodNotAllowed, map[string]any{"message": "method not allowed", "statusCode": 405})
			return
		}
		writeJSONResponse(w, http.StatusOK, results)
		return
	}

	album := f.albums[rest]
	if album == nil || r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusNotFound, map[string]any{"message": "album not found", "statusCode": 404})
		return
	}
	members := make([]map[string]any, 0, len(album.members))
	for assetID := range album.members {
		members = append(members, map[string]any{"id": assetID})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"id":        album.id,
		"albumName": album.name,
		"assets":    members,
	})
}

func (f *fakePhotoServer) albumNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.order))
	for _, id := range f.order {
		names = append(names, f.albums[id].name)
	}
	return names
}

func (f *fakePhotoServer) albumCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.albums)
}

func (f *fakePhotoServer) seedAlbum(name string, memberIDs ...string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	album := &fakeAlbum{
		id:      fmt.Sprintf("album-%d", f.nextID),
		name:    name,
		members: make(map[string]struct{}),
	}
	for _, id := range memberIDs {
		album.members[id] = struct{}{}
	}
	f.albums[album.id] = album
	f.order = append(f.order, album.id)
	return album.id
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type cmdTestEnv struct {
	server      *fakePhotoServer
	configPath  string
	mappingPath string
	lockPath    string
	baseDir     string
}

func setupCLITestEnv(t *testing.T) *cmdTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("IMMICH_API_KEY", "")

	fake := newFakePhotoServer("test-key")
	fake.libraries = []immich.Library{
		{ID: "lib-1", Name: "Photos", Type: "EXTERNAL"},
		{ID: "lib-2", Name: "Archive", Type: "EXTERNAL"},
	}
	fake.assets = []immich.Asset{
		{ID: "asset-1", LibraryID: "lib-1", OriginalPath: "/photos/2024/Rome/a.jpg"},
		{ID: "asset-2", LibraryID: "lib-1", OriginalPath: "/photos/2024/Rome/b.jpg"},
		{ID: "asset-3", LibraryID: "lib-1", OriginalPath: "/photos/2024/Paris/c.jpg"},
		{ID: "asset-4", LibraryID: "lib-2", OriginalPath: "/archive/d.jpg"},
	}
	httpSrv := httptest.NewServer(fake)
	t.Cleanup(httpSrv.Close)

	env := &cmdTestEnv{
		server:      fake,
		configPath:  filepath.Join(homeDir, ".config", "albumsync", "config.toml"),
		mappingPath: filepath.Join(base, "albums.json"),
		lockPath:    filepath.Join(base, "sync.lock"),
		baseDir:     base,
	}
	if err := os.MkdirAll(filepath.Dir(env.configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, env, httpSrv.URL)
	return env
}

func writeTestConfig(t *testing.T, env *cmdTestEnv, baseURL string) {
	t.Helper()
	content := fmt.Sprintf(`[server]
base_url = %q
api_key = "test-key"

[sync]
mapping_file = %q
lock_file = %q

[history]
enabled = true
database_path = %q

[logging]
level = "error"
format = "console"
`, baseURL, env.mappingPath, env.lockPath, filepath.Join(env.baseDir, "history.db"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
