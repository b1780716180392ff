package immich

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare host", "http://photos.local:2283", "http://photos.local:2283/api"},
		{"trailing slash", "http://photos.local:2283/", "http://photos.local:2283/api"},
		{"already api", "http://photos.local:2283/api", "http://photos.local:2283/api"},
		{"api with slash", "http://photos.local:2283/api/", "http://photos.local:2283/api"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeBaseURL(tc.in); got != tc.want {
				t.Fatalf("NormalizeBaseURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestLibrariesRequestsExternalOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/library" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("type"); got != "EXTERNAL" {
			t.Fatalf("type query = %q, want EXTERNAL", got)
		}
		if got := r.Header.Get("x-api-key"); got != "key-123" {
			t.Fatalf("x-api-key = %q, want key-123", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"L1","name":"Library One","type":"EXTERNAL"}]`))
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, "key-123", server.Client())
	libraries, err := svc.Libraries(context.Background())
	if err != nil {
		t.Fatalf("Libraries returned error: %v", err)
	}
	if len(libraries) != 1 || libraries[0].ID != "L1" || libraries[0].Name != "Library One" {
		t.Fatalf("unexpected libraries: %+v", libraries)
	}
}

func TestCreateAlbumSendsNameAndMembers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/album" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("Content-Type = %q", got)
		}
		var body struct {
			AlbumName string   `json:"albumName"`
			AssetIDs  []string `json:"assetIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if body.AlbumName != "Trip" {
			t.Fatalf("albumName = %q, want Trip", body.AlbumName)
		}
		if len(body.AssetIDs) != 2 {
			t.Fatalf("assetIds = %v, want 2 entries", body.AssetIDs)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"A1"}`))
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, "key", server.Client())
	id, err := svc.CreateAlbum(context.Background(), "Trip", []string{"a1", "a2"})
	if err != nil {
		t.Fatalf("CreateAlbum returned error: %v", err)
	}
	if id != "A1" {
		t.Fatalf("album id = %q, want A1", id)
	}
}

func TestCreateAlbumErrorCarriesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":["albumName should not be empty"],"error":"Bad Request","statusCode":400}`))
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, "key", server.Client())
	_, err := svc.CreateAlbum(context.Background(), "", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message() != "albumName should not be empty" {
		t.Fatalf("message = %q", apiErr.Message())
	}
}

func TestAPIErrorScalarMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Album not found","error":"Not Found","statusCode":404}`))
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, "key", server.Client())
	_, err := svc.AlbumAssets(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message() != "Album not found" {
		t.Fatalf("message = %q", apiErr.Message())
	}
}

func TestAddAssetsCountsSuccesses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/album/A1/assets" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if len(body.IDs) != 3 {
			t.Fatalf("ids = %v, want 3 entries", body.IDs)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a1","success":true},{"id":"a2","success":false,"error":"duplicate"},{"id":"a3","success":true}]`))
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, "key", server.Client())
	added, err := svc.AddAssets(context.Background(), "A1", []string{"a1", "a2", "a3"})
	if err != nil {
		t.Fatalf("AddAssets returned error: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
}

func TestRemoveAssetsCountsSuccesses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/album/A1/assets" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a9","success":true}]`))
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, "key", server.Client())
	removed, err := svc.RemoveAssets(context.Background(), "A1", []string{"a9"})
	if err != nil {
		t.Fatalf("RemoveAssets returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}

func TestAlbumAssetsReturnsMemberIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/album/A1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"A1","albumName":"Trip","assets":[{"id":"a1"},{"id":"a2"}]}`))
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, "key", server.Client())
	ids, err := svc.AlbumAssets(context.Background(), "A1")
	if err != nil {
		t.Fatalf("AlbumAssets returned error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a1" || ids[1] != "a2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
