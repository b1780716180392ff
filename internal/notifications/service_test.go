package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"albumsync/internal/config"
	"albumsync/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifySyncCompleted(context.Background(), 1, 2, 0, 0, time.Second); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := svc.NotifySyncFailed(context.Background(), errors.New("boom"), "fetch"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "sync completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifySyncCompleted(context.Background(), 2, 3, 1, 0, 4*time.Second)
			},
			expectTitle:   "Album Sync - Complete",
			expectMessage: "✅ Albums in sync: 2 created, 3 updated, 1 skipped in 4s",
			expectTags:    "albumsync,sync,completed",
		},
		{
			name: "sync completed with errors",
			notify: func(svc notifications.Service) error {
				return svc.NotifySyncCompleted(context.Background(), 1, 0, 0, 2, 90*time.Second)
			},
			expectTitle:    "Album Sync - Complete (with errors)",
			expectMessage:  "Albums synced with errors: 1 created, 0 updated, 2 failed in 1m30s",
			expectTags:     "albumsync,sync,completed",
			expectPriority: "high",
		},
		{
			name: "sync failed",
			notify: func(svc notifications.Service) error {
				return svc.NotifySyncFailed(context.Background(), errors.New("503 Service Unavailable"), "fetch albums")
			},
			expectTitle:    "Album Sync - Failed",
			expectMessage:  "❌ Sync failed during fetch albums: 503 Service Unavailable",
			expectTags:     "albumsync,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	err := svc.NotifySyncCompleted(context.Background(), 1, 0, 0, 0, time.Second)
	if err == nil {
		t.Fatal("expected error from failing ntfy endpoint")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("unexpected error: %v", err)
	}
}
