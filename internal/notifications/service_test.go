package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"spool/internal/config"
	"spool/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventJobCompleted, notifications.Payload{"title": "Benchy"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "job queued",
			event: notifications.EventJobQueued,
			payload: notifications.Payload{
				"title": "Benchy",
			},
			expectTitle:   "Spool - Queued",
			expectMessage: "Queued for printing: Benchy",
			expectTags:    "spool,queue,added",
		},
		{
			name:  "slice completed",
			event: notifications.EventSliceCompleted,
			payload: notifications.Payload{
				"title":    "Benchy",
				"estimate": "1h24m",
			},
			expectTitle:   "Spool - Sliced",
			expectMessage: "Sliced: Benchy\nEstimated print time: 1h24m",
			expectTags:    "spool,slice,completed",
		},
		{
			name:  "print started",
			event: notifications.EventPrintStarted,
			payload: notifications.Payload{
				"title": "Voron Panel",
			},
			expectTitle:   "Spool - Printing",
			expectMessage: "Print started: Voron Panel",
			expectTags:    "spool,print,started",
		},
		{
			name:  "job completed",
			event: notifications.EventJobCompleted,
			payload: notifications.Payload{
				"title": "Voron Panel",
			},
			expectTitle:    "Spool - Complete",
			expectMessage:  "Print job handed to printer: Voron Panel",
			expectTags:     "spool,print,completed",
			expectPriority: "high",
		},
		{
			name:  "job review",
			event: notifications.EventJobReview,
			payload: notifications.Payload{
				"title":  "Multicolor Sign",
				"reason": "no compatible filament loaded",
			},
			expectTitle:    "Spool - Review",
			expectMessage:  "Needs attention: Multicolor Sign\nno compatible filament loaded",
			expectTags:     "spool,review,warning",
			expectPriority: "high",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"context": "slice",
				"error":   "slicer exited with status 1",
			},
			expectTitle:    "Spool - Error",
			expectMessage:  "Error with slice: slicer exited with status 1",
			expectTags:     "spool,error,alert",
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
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
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

func TestNtfyServiceIgnoresSuppressedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventDownloadCompleted, notifications.Payload{"title": "ignored"}); err != nil {
		t.Fatalf("expected no error for suppressed event, got %v", err)
	}
}

func TestNtfyServiceHonorsConfigToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call with notifications disabled: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Jobs = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	for _, event := range []notifications.Event{notifications.EventJobCompleted, notifications.EventError} {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"title": "muted"}); err != nil {
			t.Fatalf("expected no error for disabled event %s, got %v", event, err)
		}
	}
}
