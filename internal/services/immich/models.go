package immich

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Library describes a remote asset library.
type Library struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Album describes a remote album as returned by the album listing.
type Album struct {
	ID         string `json:"id"`
	Name       string `json:"albumName"`
	AssetCount int    `json:"assetCount"`
}

// Asset describes a remote media asset.
type Asset struct {
	ID           string `json:"id"`
	LibraryID    string `json:"libraryId"`
	OriginalPath string `json:"originalPath"`
}

// albumDetail is the album fetch payload; only the member list matters here.
type albumDetail struct {
	ID     string `json:"id"`
	Name   string `json:"albumName"`
	Assets []struct {
		ID string `json:"id"`
	} `json:"assets"`
}

type createAlbumRequest struct {
	AlbumName string   `json:"albumName"`
	AssetIDs  []string `json:"assetIds"`
}

type createAlbumResponse struct {
	ID string `json:"id"`
}

type bulkIDsRequest struct {
	IDs []string `json:"ids"`
}

// BulkResult reports the per-member outcome of an add or remove request.
type BulkResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// apiErrorBody mirrors the server's error payload. The message field arrives as
// either a single string or a list of strings depending on the endpoint.
type apiErrorBody struct {
	Message    apiMessage `json:"message"`
	Error      string     `json:"error"`
	StatusCode int        `json:"statusCode"`
}

type apiMessage []string

func (m *apiMessage) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = apiMessage{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*m = apiMessage(many)
	return nil
}

// APIError is a non-2xx response from the server, carrying the HTTP status and
// the first line of the server-provided message.
type APIError struct {
	StatusCode int
	Operation  string
	Messages   []string
}

func (e *APIError) Error() string {
	reason := http.StatusText(e.StatusCode)
	if reason == "" {
		reason = "error"
	}
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("%s returned %d %s", e.Operation, e.StatusCode, reason)
	}
	return fmt.Sprintf("%s returned %d %s: %s", e.Operation, e.StatusCode, reason, msg)
}

// Message returns the first server-provided message line, if any.
func (e *APIError) Message() string {
	for _, m := range e.Messages {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
