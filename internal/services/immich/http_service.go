package immich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type httpService struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewHTTPService constructs an HTTP-backed Service. The base URL is normalized
// per NormalizeBaseURL before use.
func NewHTTPService(baseURL, apiKey string, client HTTPDoer) Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpService{
		baseURL: NormalizeBaseURL(baseURL),
		apiKey:  strings.TrimSpace(apiKey),
		client:  client,
	}
}

func (s *httpService) Libraries(ctx context.Context) ([]Library, error) {
	var libraries []Library
	query := url.Values{"type": []string{"EXTERNAL"}}
	if err := s.doJSON(ctx, http.MethodGet, "/library", query, nil, &libraries); err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	return libraries, nil
}

func (s *httpService) Albums(ctx context.Context) ([]Album, error) {
	var albums []Album
	if err := s.doJSON(ctx, http.MethodGet, "/album", nil, nil, &albums); err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	return albums, nil
}

func (s *httpService) Assets(ctx context.Context) ([]Asset, error) {
	var assets []Asset
	if err := s.doJSON(ctx, http.MethodGet, "/asset", nil, nil, &assets); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

func (s *httpService) AlbumAssets(ctx context.Context, albumID string) ([]string, error) {
	var detail albumDetail
	if err := s.doJSON(ctx, http.MethodGet, "/album/"+url.PathEscape(albumID), nil, nil, &detail); err != nil {
		return nil, fmt.Errorf("fetch album %s: %w", albumID, err)
	}
	ids := make([]string, 0, len(detail.Assets))
	for _, asset := range detail.Assets {
		ids = append(ids, asset.ID)
	}
	return ids, nil
}

func (s *httpService) CreateAlbum(ctx context.Context, name string, assetIDs []string) (string, error) {
	body := createAlbumRequest{AlbumName: name, AssetIDs: emptyWhenNil(assetIDs)}
	var resp createAlbumResponse
	if err := s.doJSON(ctx, http.MethodPost, "/album", nil, body, &resp); err != nil {
		return "", fmt.Errorf("create album %q: %w", name, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create album %q: missing id in response", name)
	}
	return resp.ID, nil
}

func (s *httpService) AddAssets(ctx context.Context, albumID string, assetIDs []string) (int, error) {
	var results []BulkResult
	body := bulkIDsRequest{IDs: emptyWhenNil(assetIDs)}
	if err := s.doJSON(ctx, http.MethodPut, "/album/"+url.PathEscape(albumID)+"/assets", nil, body, &results); err != nil {
		return 0, fmt.Errorf("add assets to album %s: %w", albumID, err)
	}
	return countSuccesses(results), nil
}

func (s *httpService) RemoveAssets(ctx context.Context, albumID string, assetIDs []string) (int, error) {
	var results []BulkResult
	body := bulkIDsRequest{IDs: emptyWhenNil(assetIDs)}
	if err := s.doJSON(ctx, http.MethodDelete, "/album/"+url.PathEscape(albumID)+"/assets", nil, body, &results); err != nil {
		return 0, fmt.Errorf("remove assets from album %s: %w", albumID, err)
	}
	return countSuccesses(results), nil
}

func (s *httpService) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp, method, path)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response, method, path string) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Operation:  method + " " + path,
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Messages = []string(body.Message)
		if len(apiErr.Messages) == 0 && strings.TrimSpace(body.Error) != "" {
			apiErr.Messages = []string{body.Error}
		}
	} else if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
		apiErr.Messages = []string{trimmed}
	}
	return apiErr
}

func countSuccesses(results []BulkResult) int {
	count := 0
	for _, result := range results {
		if result.Success {
			count++
		}
	}
	return count
}

// emptyWhenNil keeps request bodies as JSON arrays rather than null.
func emptyWhenNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
